package scheduling

import (
	"testing"

	"gradekeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Полный путь журнала: слот расписания -> урок на дату -> отметки ->
// зачисление нового студента -> сверка -> выставление оценки.
func TestJournalFlow(t *testing.T) {
	f := newFixture(t)
	first := createStudent(t, f.db, f.group)
	second := createStudent(t, f.db, f.group)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
		Teacher:    f.teacher,
	})
	require.NoError(t, err)

	var records []models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ?", lesson.ID).Find(&records).Error)
	require.Len(t, records, 2)

	// Первый присутствовал и получил оценку, второй опоздал
	_, err = RecordAttendance(f.db, lesson.ID, first.ID, AttendanceUpdate{
		Attended: true,
		Grade:    intPtr(5),
	})
	require.NoError(t, err)
	_, err = RecordAttendance(f.db, lesson.ID, second.ID, AttendanceUpdate{
		Attended: true,
		Late:     true,
	})
	require.NoError(t, err)

	// Третий студент зачислен задним числом
	third := createStudent(t, f.db, f.group)
	created, err := ReconcileAttendance(f.db)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	var thirdRecord models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ? AND student_id = ?",
		lesson.ID, third.ID).First(&thirdRecord).Error)
	assert.Equal(t, "absent", thirdRecord.Status())

	// Третьему тоже можно выставить отметку через ту же операцию
	_, err = RecordAttendance(f.db, lesson.ID, third.ID, AttendanceUpdate{
		Attended: true,
		Grade:    intPtr(3),
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Where("lesson_id = ?", lesson.ID).Find(&records).Error)
	require.Len(t, records, 3)
	attended := 0
	for _, r := range records {
		if r.Attended {
			attended++
		}
	}
	assert.Equal(t, 3, attended)
}
