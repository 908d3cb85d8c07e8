package roles

import (
	"errors"
	"fmt"

	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// Имена ролей
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// Коды отказов назначения ролей
const (
	CodeProfileConflict  = "profile_conflict"
	CodeNoGroupAvailable = "no_group_available"
	CodeUnknownRole      = "unknown_role"
)

// Error представляет типизированный отказ назначения или снятия роли
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// AsError возвращает типизированный отказ, если err им является
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ProfileChangeResult описывает прямой результат назначения или снятия
// роли: какой профиль был создан либо удален. Побочных каналов нет —
// вызывающий получает весь эффект в возвращаемом значении.
type ProfileChangeResult struct {
	Role    string          `json:"role"`
	Created bool            `json:"created"`
	Removed bool            `json:"removed"`
	Student *models.Student `json:"student,omitempty"`
	Teacher *models.Teacher `json:"teacher,omitempty"`
	Parent  *models.Parent  `json:"parent,omitempty"`
}

// AssignRole добавляет пользователю роль и создает соответствующий
// профиль. Пользователь не может одновременно быть студентом, учителем
// и родителем. Студент и учитель по умолчанию привязываются к первой
// доступной группе. Повторное назначение роли ничего не меняет.
func AssignRole(db *gorm.DB, userID uint, roleName string) (*ProfileChangeResult, error) {
	result := &ProfileChangeResult{Role: roleName}
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		role, err := getOrCreateRole(tx, roleName)
		if err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Roles").Append(role); err != nil {
			return err
		}

		switch roleName {
		case RoleStudent:
			var existing models.Student
			err := tx.Where("user_id = ?", user.ID).First(&existing).Error
			if err == nil {
				result.Student = &existing
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := checkExclusive(tx, user.ID, RoleStudent); err != nil {
				return err
			}
			group, err := firstGroup(tx)
			if err != nil {
				return err
			}
			student := models.Student{UserID: user.ID, GroupID: group.ID}
			if err := tx.Create(&student).Error; err != nil {
				return err
			}
			result.Created = true
			result.Student = &student

		case RoleTeacher:
			var existing models.Teacher
			err := tx.Where("user_id = ?", user.ID).First(&existing).Error
			if err == nil {
				result.Teacher = &existing
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := checkExclusive(tx, user.ID, RoleTeacher); err != nil {
				return err
			}
			group, err := firstGroup(tx)
			if err != nil {
				return err
			}
			teacher := models.Teacher{UserID: user.ID, MainGroupID: group.ID}
			if err := tx.Create(&teacher).Error; err != nil {
				return err
			}
			result.Created = true
			result.Teacher = &teacher

		case RoleParent:
			var existing models.Parent
			err := tx.Where("user_id = ?", user.ID).First(&existing).Error
			if err == nil {
				result.Parent = &existing
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
			if err := checkExclusive(tx, user.ID, RoleParent); err != nil {
				return err
			}
			parent := models.Parent{UserID: user.ID, ParentType: "other"}
			if err := tx.Create(&parent).Error; err != nil {
				return err
			}
			result.Created = true
			result.Parent = &parent

		case RoleAdmin:
			if !user.IsAdmin {
				result.Created = true
			}
			return tx.Model(&user).Update("is_admin", true).Error

		default:
			return &Error{Code: CodeUnknownRole,
				Message: fmt.Sprintf("Неизвестная роль: %s", roleName)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveRole снимает роль и удаляет профиль вместе с зависимыми от него
// записями: у студента — отметки посещаемости и родительские связи,
// у преподавателя — слоты расписания и привязки к предметам и группам
func RemoveRole(db *gorm.DB, userID uint, roleName string) (*ProfileChangeResult, error) {
	result := &ProfileChangeResult{Role: roleName}
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err == nil {
			if err := tx.Model(&user).Association("Roles").Delete(&role); err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		switch roleName {
		case RoleStudent:
			var student models.Student
			err := tx.Where("user_id = ?", user.ID).First(&student).Error
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			// Отметки и связи с родителями уходят вместе со студентом
			if err := tx.Where("student_id = ?", student.ID).
				Delete(&models.Attendance{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM parent_children WHERE student_id = ?",
				student.ID).Error; err != nil {
				return err
			}
			if err := tx.Delete(&student).Error; err != nil {
				return err
			}
			result.Removed = true

		case RoleTeacher:
			var teacher models.Teacher
			err := tx.Where("user_id = ?", user.ID).First(&teacher).Error
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			// Расписания преподавателя удаляются; уже созданные уроки
			// остаются со снимком полей, их ссылки обнуляются
			var scheduleIDs []uint
			if err := tx.Model(&models.Schedule{}).
				Where("teacher_id = ?", teacher.ID).
				Pluck("id", &scheduleIDs).Error; err != nil {
				return err
			}
			if len(scheduleIDs) > 0 {
				if err := tx.Model(&models.Lesson{}).
					Where("schedule_id IN ?", scheduleIDs).
					Update("schedule_id", nil).Error; err != nil {
					return err
				}
				if err := tx.Where("teacher_id = ?", teacher.ID).
					Delete(&models.Schedule{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&models.Lesson{}).
				Where("teacher_id = ?", teacher.ID).
				Update("teacher_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Model(&teacher).Association("Subjects").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&teacher).Association("AdditionalGroups").Clear(); err != nil {
				return err
			}
			if err := tx.Delete(&teacher).Error; err != nil {
				return err
			}
			result.Removed = true

		case RoleParent:
			var parent models.Parent
			err := tx.Where("user_id = ?", user.ID).First(&parent).Error
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&parent).Association("Children").Clear(); err != nil {
				return err
			}
			if err := tx.Delete(&parent).Error; err != nil {
				return err
			}
			result.Removed = true

		case RoleAdmin:
			if user.IsAdmin {
				result.Removed = true
			}
			return tx.Model(&user).Update("is_admin", false).Error

		default:
			return &Error{Code: CodeUnknownRole,
				Message: fmt.Sprintf("Неизвестная роль: %s", roleName)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkExclusive проверяет, что у пользователя нет другого профиля:
// студент, учитель и родитель взаимоисключающие
func checkExclusive(tx *gorm.DB, userID uint, target string) error {
	if target != RoleStudent {
		var count int64
		if err := tx.Model(&models.Student{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &Error{Code: CodeProfileConflict,
				Message: "Пользователь уже назначен как студент"}
		}
	}
	if target != RoleTeacher {
		var count int64
		if err := tx.Model(&models.Teacher{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &Error{Code: CodeProfileConflict,
				Message: "Пользователь уже назначен как преподаватель"}
		}
	}
	if target != RoleParent {
		var count int64
		if err := tx.Model(&models.Parent{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &Error{Code: CodeProfileConflict,
				Message: "Пользователь уже назначен как родитель"}
		}
	}
	return nil
}

func firstGroup(tx *gorm.DB) (*models.Group, error) {
	var group models.Group
	if err := tx.Order("id").First(&group).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &Error{Code: CodeNoGroupAvailable,
				Message: "Нет доступных групп для привязки профиля"}
		}
		return nil, err
	}
	return &group, nil
}

func getOrCreateRole(tx *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	err := tx.Where("name = ?", name).First(&role).Error
	if err == gorm.ErrRecordNotFound {
		role = models.Role{Name: name}
		err = tx.Create(&role).Error
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
