package models

import (
	"fmt"
	"time"
)

// Role представляет роль пользователя (студент, учитель, родитель, администратор)
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null;size:50" json:"name"`
}

// User представляет учетную запись пользователя
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null;size:50" json:"username"`
	Email        string    `gorm:"unique;not null;size:100" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	FirstName    string    `gorm:"size:100" json:"first_name,omitempty"`
	LastName     string    `gorm:"size:100" json:"last_name,omitempty"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	ImageURL     string    `gorm:"size:500" json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Связи
	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// FullName возвращает имя и фамилию, либо username если они не заполнены
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	}
	return u.Username
}

// Group представляет учебную группу
type Group struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"unique;not null;size:100" json:"name"`
	Course int    `gorm:"not null" json:"course"`
}

// Subject представляет учебный предмет
type Subject struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null;size:100" json:"name"`
}

// Student представляет профиль студента, привязанный к пользователю
type Student struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"not null;uniqueIndex" json:"user_id"`
	GroupID uint `gorm:"not null;index" json:"group_id"`

	// Связи
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// Teacher представляет профиль преподавателя: основная группа,
// дополнительные группы и предметы, которые он ведет
type Teacher struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	UserID      uint `gorm:"not null;uniqueIndex" json:"user_id"`
	MainGroupID uint `gorm:"not null;index" json:"main_group_id"`

	// Связи
	User             User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MainGroup        Group     `gorm:"foreignKey:MainGroupID" json:"main_group,omitempty"`
	AdditionalGroups []Group   `gorm:"many2many:teacher_additional_groups;" json:"additional_groups,omitempty"`
	Subjects         []Subject `gorm:"many2many:teacher_subjects;" json:"subjects,omitempty"`
}

// Parent представляет профиль родителя с привязанными детьми
type Parent struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	ParentType string `gorm:"size:20;default:other" json:"parent_type"` // mother, father, grandmother, grandfather, other

	// Связи
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Children []Student `gorm:"many2many:parent_children;" json:"children,omitempty"`
}

// Schedule представляет шаблон расписания: повторяющееся занятие по дням недели.
// Дни недели: 0=понедельник .. 6=воскресенье. Время в формате "HH:MM".
type Schedule struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	GroupID   uint   `gorm:"not null;uniqueIndex:idx_schedule_slot" json:"group_id"`
	SubjectID uint   `gorm:"not null;index" json:"subject_id"`
	TeacherID uint   `gorm:"not null;index" json:"teacher_id"`
	Weekday   int    `gorm:"not null;uniqueIndex:idx_schedule_slot" json:"weekday"`
	StartTime string `gorm:"size:5;not null;uniqueIndex:idx_schedule_slot" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
	Classroom string `gorm:"size:50" json:"classroom,omitempty"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	// Связи
	Group   Group   `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Subject Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// TimeRange возвращает диапазон времени занятия
func (s *Schedule) TimeRange() string {
	return fmt.Sprintf("%s - %s", s.StartTime, s.EndTime)
}

// Lesson представляет конкретное занятие на определенную дату.
// Поля урока, созданного из расписания, копируются в момент создания:
// последующие правки расписания не меняют уже проведенные уроки.
type Lesson struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScheduleID *uint     `gorm:"index" json:"schedule_id,omitempty"`
	SubjectID  uint      `gorm:"not null;uniqueIndex:idx_lesson_slot" json:"subject_id"`
	Date       time.Time `gorm:"not null;type:date;uniqueIndex:idx_lesson_slot;index" json:"date"`
	GroupID    uint      `gorm:"not null;uniqueIndex:idx_lesson_slot" json:"group_id"`
	TeacherID  *uint     `gorm:"index" json:"teacher_id,omitempty"`
	Classroom  string    `gorm:"size:50" json:"classroom,omitempty"`
	StartTime  string    `gorm:"size:5;uniqueIndex:idx_lesson_slot" json:"start_time,omitempty"`
	EndTime    string    `gorm:"size:5" json:"end_time,omitempty"`

	IsFromSchedule bool      `gorm:"default:false" json:"is_from_schedule"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Связи
	Schedule *Schedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
	Subject  Subject   `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Group    Group     `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Teacher  *Teacher  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

// TimeRange возвращает диапазон времени урока
func (l *Lesson) TimeRange() string {
	if l.StartTime != "" && l.EndTime != "" {
		return fmt.Sprintf("%s - %s", l.StartTime, l.EndTime)
	}
	return "Время не указано"
}

// Attendance представляет отметку посещаемости студента на уроке.
// Оценка необязательна и лежит в диапазоне [2,5].
type Attendance struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	LessonID  uint `gorm:"not null;uniqueIndex:idx_lesson_student" json:"lesson_id"`
	StudentID uint `gorm:"not null;uniqueIndex:idx_lesson_student" json:"student_id"`
	Attended  bool `gorm:"default:false" json:"attended"`
	Late      bool `gorm:"default:false" json:"late"`
	Grade     *int `json:"grade,omitempty"`

	// Связи
	Lesson  Lesson  `gorm:"foreignKey:LessonID" json:"lesson,omitempty"`
	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// Status возвращает статус посещения
func (a *Attendance) Status() string {
	if !a.Attended {
		return "absent"
	}
	if a.Late {
		return "late"
	}
	return "present"
}

// WeekdayNames содержит названия дней недели в нумерации 0=понедельник
var WeekdayNames = []string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}
