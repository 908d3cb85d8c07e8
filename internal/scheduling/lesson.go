package scheduling

import (
	"fmt"
	"time"

	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// FromScheduleInput содержит параметры создания урока из расписания.
// Teacher — вызывающий преподаватель, nil для администратора.
type FromScheduleInput struct {
	ScheduleID uint
	Date       time.Time
	Classroom  string
	Notes      string
	Teacher    *models.Teacher
}

// ManualLessonInput содержит параметры ручного создания урока
type ManualLessonInput struct {
	SubjectID uint
	GroupID   uint
	Date      time.Time
	StartTime string
	EndTime   string
	Classroom string
	Notes     string
	Teacher   *models.Teacher
}

// CreateLessonFromSchedule материализует урок из слота расписания на дату.
// Поля копируются из расписания в момент создания (снимок): последующие
// правки расписания не трогают уже созданные уроки. Для каждого студента
// группы создается ровно одна запись посещаемости.
func CreateLessonFromSchedule(db *gorm.DB, in FromScheduleInput) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := db.Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, in.ScheduleID).Error; err != nil {
			return err
		}

		if in.Teacher != nil {
			ok, err := TeacherWorksWithGroup(tx, in.Teacher, schedule.GroupID)
			if err != nil {
				return err
			}
			if !ok {
				return newError(CodeTeacherNotAssignedToGroup,
					"У вас нет прав для создания урока для этой группы")
			}
		}

		date := DateOnly(in.Date)

		// Дата должна попадать на день недели расписания
		if WeekdayIndex(date) != schedule.Weekday {
			return newError(CodeWeekdayMismatch,
				fmt.Sprintf("Дата %s не соответствует дню расписания (%s)",
					date.Format("02.01.2006"), models.WeekdayNames[schedule.Weekday]))
		}

		// Из одного слота расписания на одну дату — не больше одного урока
		var existing models.Lesson
		err := tx.Where("schedule_id = ? AND date = ?", schedule.ID, date).
			First(&existing).Error
		if err == nil {
			return conflictError(CodeDuplicateLesson,
				fmt.Sprintf("Урок из этого расписания на %s уже существует",
					date.Format("02.01.2006")),
				existing)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		classroom := schedule.Classroom
		if in.Classroom != "" {
			classroom = in.Classroom
		}

		scheduleID := schedule.ID
		teacherID := schedule.TeacherID
		lesson = &models.Lesson{
			ScheduleID:     &scheduleID,
			SubjectID:      schedule.SubjectID,
			Date:           date,
			GroupID:        schedule.GroupID,
			TeacherID:      &teacherID,
			Classroom:      classroom,
			StartTime:      schedule.StartTime,
			EndTime:        schedule.EndTime,
			IsFromSchedule: true,
			Notes:          in.Notes,
		}
		if err := tx.Create(lesson).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(CodeDuplicateLesson,
					"Такой урок уже существует")
			}
			return err
		}

		_, err = ensureAttendance(tx, lesson)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// CreateManualLesson создает урок с полями, заданными вручную
func CreateManualLesson(db *gorm.DB, in ManualLessonInput) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := db.Transaction(func(tx *gorm.DB) error {
		if in.SubjectID == 0 || in.GroupID == 0 {
			return fmt.Errorf("subject and group are required")
		}

		var subject models.Subject
		if err := tx.First(&subject, in.SubjectID).Error; err != nil {
			return err
		}
		var group models.Group
		if err := tx.First(&group, in.GroupID).Error; err != nil {
			return err
		}

		if in.Teacher != nil {
			ok, err := TeacherWorksWithGroup(tx, in.Teacher, group.ID)
			if err != nil {
				return err
			}
			if !ok {
				return newError(CodeTeacherNotAssignedToGroup,
					"У вас нет прав для создания урока для этой группы")
			}
		}

		if in.StartTime != "" || in.EndTime != "" {
			if !validTime(in.StartTime) || !validTime(in.EndTime) {
				return newError(CodeInvalidTimeRange,
					"Время должно быть в формате HH:MM")
			}
			if in.StartTime >= in.EndTime {
				return newError(CodeInvalidTimeRange,
					"Время окончания должно быть больше времени начала")
			}
		}

		date := DateOnly(in.Date)

		var existing models.Lesson
		err := tx.Where("subject_id = ? AND group_id = ? AND date = ? AND start_time = ?",
			subject.ID, group.ID, date, in.StartTime).
			First(&existing).Error
		if err == nil {
			return conflictError(CodeDuplicateLesson,
				fmt.Sprintf("Урок %s для группы %s на %s уже существует",
					subject.Name, group.Name, date.Format("02.01.2006")),
				existing)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		lesson = &models.Lesson{
			SubjectID:      subject.ID,
			Date:           date,
			GroupID:        group.ID,
			Classroom:      in.Classroom,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			IsFromSchedule: false,
			Notes:          in.Notes,
		}
		if in.Teacher != nil {
			teacherID := in.Teacher.ID
			lesson.TeacherID = &teacherID
		}
		if err := tx.Create(lesson).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(CodeDuplicateLesson,
					"Такой урок уже существует")
			}
			return err
		}

		_, err = ensureAttendance(tx, lesson)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// DeleteLesson удаляет урок вместе с записями посещаемости
func DeleteLesson(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, id).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ?", id).
			Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lesson).Error
	})
}

// ensureAttendance создает недостающие записи посещаемости для текущего
// состава группы урока. Идемпотентна: существующие записи не трогаются,
// дубликаты не создаются.
func ensureAttendance(tx *gorm.DB, lesson *models.Lesson) (int, error) {
	var students []models.Student
	if err := tx.Where("group_id = ?", lesson.GroupID).Find(&students).Error; err != nil {
		return 0, err
	}

	var existingIDs []uint
	if err := tx.Model(&models.Attendance{}).
		Where("lesson_id = ?", lesson.ID).
		Pluck("student_id", &existingIDs).Error; err != nil {
		return 0, err
	}
	seen := make(map[uint]bool, len(existingIDs))
	for _, id := range existingIDs {
		seen[id] = true
	}

	var records []models.Attendance
	for _, student := range students {
		if seen[student.ID] {
			continue
		}
		records = append(records, models.Attendance{
			LessonID:  lesson.ID,
			StudentID: student.ID,
			Attended:  false,
			Late:      false,
			Grade:     nil,
		})
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := tx.Create(&records).Error; err != nil {
		return 0, err
	}
	return len(records), nil
}
