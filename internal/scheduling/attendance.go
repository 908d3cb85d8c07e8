package scheduling

import (
	"fmt"

	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// AttendanceUpdate содержит новые значения отметки посещаемости
type AttendanceUpdate struct {
	Attended bool
	Late     bool
	Grade    *int
}

// applyUpdate проверяет и нормализует отметку. Оценка вне [2,5]
// отклоняется. Отсутствовавший студент не может быть опоздавшим:
// late принудительно сбрасывается при каждой записи, а не отклоняется.
func applyUpdate(rec *models.Attendance, upd AttendanceUpdate) error {
	if upd.Grade != nil && (*upd.Grade < 2 || *upd.Grade > 5) {
		return newError(CodeGradeOutOfRange,
			fmt.Sprintf("Оценка должна быть от 2 до 5, получено %d", *upd.Grade))
	}

	rec.Attended = upd.Attended
	rec.Late = upd.Late
	if !rec.Attended {
		rec.Late = false
	}
	rec.Grade = upd.Grade
	return nil
}

// UpdateAttendance изменяет существующую отметку посещаемости
func UpdateAttendance(db *gorm.DB, id uint, upd AttendanceUpdate) (*models.Attendance, error) {
	var record models.Attendance
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, id).Error; err != nil {
			return err
		}
		if err := applyUpdate(&record, upd); err != nil {
			return err
		}
		// Save не затирает false-поля, как это сделал бы Updates со структурой
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RecordAttendance изменяет отметку по паре (урок, студент), создавая
// запись если ее еще нет (например студент зачислен после создания урока)
func RecordAttendance(db *gorm.DB, lessonID, studentID uint, upd AttendanceUpdate) (*models.Attendance, error) {
	var record models.Attendance
	err := db.Transaction(func(tx *gorm.DB) error {
		var lesson models.Lesson
		if err := tx.First(&lesson, lessonID).Error; err != nil {
			return err
		}
		var student models.Student
		if err := tx.First(&student, studentID).Error; err != nil {
			return err
		}

		err := tx.Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
			First(&record).Error
		switch err {
		case nil:
			if err := applyUpdate(&record, upd); err != nil {
				return err
			}
			return tx.Save(&record).Error
		case gorm.ErrRecordNotFound:
			record = models.Attendance{LessonID: lessonID, StudentID: studentID}
			if err := applyUpdate(&record, upd); err != nil {
				return err
			}
			if err := tx.Create(&record).Error; err != nil {
				if isUniqueViolation(err) {
					return newError(CodeDuplicateLesson,
						"Отметка для этой пары урок-студент уже существует")
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
