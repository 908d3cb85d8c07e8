package scheduling

import (
	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// ReconcileReport описывает урок с неполным набором отметок
type ReconcileReport struct {
	LessonID int `json:"lesson_id"`
	Students int `json:"students"`
	Records  int `json:"records"`
	Missing  int `json:"missing"`
}

// ReconcileAttendance досоздает недостающие отметки посещаемости по всем
// урокам: студенты, зачисленные в группу после создания урока, получают
// запись со значениями по умолчанию. Повторный запуск ничего не меняет.
func ReconcileAttendance(db *gorm.DB) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var lessons []models.Lesson
		if err := tx.Find(&lessons).Error; err != nil {
			return err
		}
		for i := range lessons {
			n, err := ensureAttendance(tx, &lessons[i])
			if err != nil {
				return err
			}
			created += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// MissingAttendance возвращает уроки, у которых отметок меньше, чем
// студентов в группе
func MissingAttendance(db *gorm.DB) ([]ReconcileReport, error) {
	var lessons []models.Lesson
	if err := db.Find(&lessons).Error; err != nil {
		return nil, err
	}

	var reports []ReconcileReport
	for _, lesson := range lessons {
		var students int64
		if err := db.Model(&models.Student{}).
			Where("group_id = ?", lesson.GroupID).
			Count(&students).Error; err != nil {
			return nil, err
		}
		var records int64
		if err := db.Model(&models.Attendance{}).
			Where("lesson_id = ?", lesson.ID).
			Count(&records).Error; err != nil {
			return nil, err
		}
		// Избыток записей (студент переведен в другую группу) дефицитом
		// не считается
		if students > records {
			reports = append(reports, ReconcileReport{
				LessonID: int(lesson.ID),
				Students: int(students),
				Records:  int(records),
				Missing:  int(students - records),
			})
		}
	}
	return reports, nil
}
