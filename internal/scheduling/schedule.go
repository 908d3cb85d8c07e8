package scheduling

import (
	"fmt"

	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// ScheduleInput содержит кандидата на слот расписания
type ScheduleInput struct {
	GroupID   uint
	SubjectID uint
	TeacherID uint
	Weekday   int
	StartTime string
	EndTime   string
	Classroom string
}

// CreateSchedule проверяет кандидата и сохраняет слот расписания.
// Проверки идут строго по порядку: корректность времени, квалификация
// преподавателя, привязка преподавателя к группе, конфликт по группе,
// конфликт по преподавателю.
func CreateSchedule(db *gorm.DB, in ScheduleInput) (*models.Schedule, error) {
	var schedule *models.Schedule
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := validateSlot(tx, in, 0); err != nil {
			return err
		}

		schedule = &models.Schedule{
			GroupID:   in.GroupID,
			SubjectID: in.SubjectID,
			TeacherID: in.TeacherID,
			Weekday:   in.Weekday,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Classroom: in.Classroom,
			IsActive:  true,
		}
		if err := tx.Create(schedule).Error; err != nil {
			if isUniqueViolation(err) {
				// Конкурирующая вставка успела занять слот
				return newError(CodeGroupTimeConflict,
					"У группы уже есть занятие в это время")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// UpdateSchedule перепроверяет и сохраняет измененный слот.
// Собственная запись исключается из проверок на конфликт.
func UpdateSchedule(db *gorm.DB, id uint, in ScheduleInput) (*models.Schedule, error) {
	var schedule *models.Schedule
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Schedule
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}

		if err := validateSlot(tx, in, id); err != nil {
			return err
		}

		existing.GroupID = in.GroupID
		existing.SubjectID = in.SubjectID
		existing.TeacherID = in.TeacherID
		existing.Weekday = in.Weekday
		existing.StartTime = in.StartTime
		existing.EndTime = in.EndTime
		existing.Classroom = in.Classroom

		if err := tx.Save(&existing).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(CodeGroupTimeConflict,
					"У группы уже есть занятие в это время")
			}
			return err
		}
		schedule = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// DeleteSchedule удаляет слот расписания. Уже созданные из него уроки
// остаются: они хранят копию полей, ссылка на расписание обнуляется.
func DeleteSchedule(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.First(&schedule, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Lesson{}).
			Where("schedule_id = ?", id).
			Update("schedule_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&schedule).Error
	})
}

// validateSlot выполняет пять проверок кандидата. excludeID исключает
// собственную запись при обновлении (0 — создание).
func validateSlot(tx *gorm.DB, in ScheduleInput, excludeID uint) error {
	if in.Weekday < 0 || in.Weekday > 6 {
		return newError(CodeInvalidTimeRange,
			fmt.Sprintf("День недели должен быть от 0 до 6, получено %d", in.Weekday))
	}
	if !validTime(in.StartTime) || !validTime(in.EndTime) {
		return newError(CodeInvalidTimeRange,
			"Время должно быть в формате HH:MM")
	}

	// 1. Начало раньше окончания
	if in.StartTime >= in.EndTime {
		return newError(CodeInvalidTimeRange,
			"Время окончания должно быть больше времени начала")
	}

	var group models.Group
	if err := tx.First(&group, in.GroupID).Error; err != nil {
		return err
	}
	var subject models.Subject
	if err := tx.First(&subject, in.SubjectID).Error; err != nil {
		return err
	}
	var teacher models.Teacher
	if err := tx.Preload("User").First(&teacher, in.TeacherID).Error; err != nil {
		return err
	}

	// 2. Преподаватель ведет этот предмет
	qualified, err := teacherTeachesSubject(tx, teacher.ID, subject.ID)
	if err != nil {
		return err
	}
	if !qualified {
		return newError(CodeTeacherNotQualified,
			fmt.Sprintf("Преподаватель %s не ведет предмет %s", teacher.User.FullName(), subject.Name))
	}

	// 3. Преподаватель работает с этой группой
	assigned, err := TeacherWorksWithGroup(tx, &teacher, group.ID)
	if err != nil {
		return err
	}
	if !assigned {
		return newError(CodeTeacherNotAssignedToGroup,
			fmt.Sprintf("Преподаватель %s не работает с группой %s", teacher.User.FullName(), group.Name))
	}

	// 4. Пересечение по времени у группы. Полуоткрытые интервалы
	// [s1,e1) и [s2,e2) пересекаются когда s1 < e2 и s2 < e1.
	var groupConflict models.Schedule
	err = overlapQuery(tx, in, excludeID).
		Where("group_id = ?", in.GroupID).
		Preload("Subject").
		First(&groupConflict).Error
	if err == nil {
		return conflictError(CodeGroupTimeConflict,
			fmt.Sprintf("Конфликт времени: у группы %s уже есть занятие %s (%s)",
				group.Name, groupConflict.Subject.Name, groupConflict.TimeRange()),
			groupConflict)
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	// 5. Пересечение по времени у преподавателя
	var teacherConflict models.Schedule
	err = overlapQuery(tx, in, excludeID).
		Where("teacher_id = ?", in.TeacherID).
		Preload("Subject").
		Preload("Group").
		First(&teacherConflict).Error
	if err == nil {
		return conflictError(CodeTeacherTimeConflict,
			fmt.Sprintf("Конфликт времени: у преподавателя %s уже есть занятие %s (%s) с группой %s",
				teacher.User.FullName(), teacherConflict.Subject.Name,
				teacherConflict.TimeRange(), teacherConflict.Group.Name),
			teacherConflict)
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return nil
}

func overlapQuery(tx *gorm.DB, in ScheduleInput, excludeID uint) *gorm.DB {
	q := tx.Model(&models.Schedule{}).
		Where("weekday = ? AND is_active = ?", in.Weekday, true).
		Where("start_time < ? AND end_time > ?", in.EndTime, in.StartTime)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

// teacherTeachesSubject проверяет квалификацию через таблицу связей
func teacherTeachesSubject(tx *gorm.DB, teacherID, subjectID uint) (bool, error) {
	var count int64
	err := tx.Table("teacher_subjects").
		Where("teacher_id = ? AND subject_id = ?", teacherID, subjectID).
		Count(&count).Error
	return count > 0, err
}

// TeacherWorksWithGroup проверяет, что группа основная или дополнительная
// для преподавателя
func TeacherWorksWithGroup(tx *gorm.DB, teacher *models.Teacher, groupID uint) (bool, error) {
	if teacher.MainGroupID == groupID {
		return true, nil
	}
	var count int64
	err := tx.Table("teacher_additional_groups").
		Where("teacher_id = ? AND group_id = ?", teacher.ID, groupID).
		Count(&count).Error
	return count > 0, err
}
