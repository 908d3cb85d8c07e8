package scheduling

import (
	"testing"

	"gradekeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func createLessonWithStudents(t *testing.T, f *fixture, n int) (*models.Lesson, []*models.Student) {
	t.Helper()
	students := make([]*models.Student, n)
	for i := range students {
		students[i] = createStudent(t, f.db, f.group)
	}
	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)
	return lesson, students
}

func TestUpdateAttendance(t *testing.T) {
	f := newFixture(t)
	lesson, students := createLessonWithStudents(t, f, 1)

	var record models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ? AND student_id = ?",
		lesson.ID, students[0].ID).First(&record).Error)

	updated, err := UpdateAttendance(f.db, record.ID, AttendanceUpdate{
		Attended: true,
		Late:     true,
		Grade:    intPtr(4),
	})
	require.NoError(t, err)
	assert.True(t, updated.Attended)
	assert.True(t, updated.Late)
	require.NotNil(t, updated.Grade)
	assert.Equal(t, 4, *updated.Grade)
	assert.Equal(t, "late", updated.Status())

	// Сброс отметки: false-поля должны сохраниться
	updated, err = UpdateAttendance(f.db, record.ID, AttendanceUpdate{})
	require.NoError(t, err)
	assert.False(t, updated.Attended)
	assert.False(t, updated.Late)
	assert.Nil(t, updated.Grade)
}

func TestLateCoercedWhenAbsent(t *testing.T) {
	f := newFixture(t)
	lesson, students := createLessonWithStudents(t, f, 1)

	var record models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ? AND student_id = ?",
		lesson.ID, students[0].ID).First(&record).Error)

	// Отсутствовал и опоздал одновременно — late молча сбрасывается
	updated, err := UpdateAttendance(f.db, record.ID, AttendanceUpdate{
		Attended: false,
		Late:     true,
	})
	require.NoError(t, err)
	assert.False(t, updated.Late)
	assert.Equal(t, "absent", updated.Status())

	// Сброс attended на уже опоздавшей записи тоже чистит late
	_, err = UpdateAttendance(f.db, record.ID, AttendanceUpdate{Attended: true, Late: true})
	require.NoError(t, err)
	updated, err = UpdateAttendance(f.db, record.ID, AttendanceUpdate{Attended: false, Late: true})
	require.NoError(t, err)
	assert.False(t, updated.Late)
}

func TestGradeBounds(t *testing.T) {
	f := newFixture(t)
	lesson, students := createLessonWithStudents(t, f, 1)

	var record models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ? AND student_id = ?",
		lesson.ID, students[0].ID).First(&record).Error)

	for _, grade := range []int{1, 6, 0, -1} {
		_, err := UpdateAttendance(f.db, record.ID, AttendanceUpdate{
			Attended: true,
			Grade:    intPtr(grade),
		})
		requireCode(t, err, CodeGradeOutOfRange)
	}

	for _, grade := range []int{2, 5} {
		updated, err := UpdateAttendance(f.db, record.ID, AttendanceUpdate{
			Attended: true,
			Grade:    intPtr(grade),
		})
		require.NoError(t, err)
		assert.Equal(t, grade, *updated.Grade)
	}

	// Отклоненная оценка не затирает сохраненную
	var kept models.Attendance
	require.NoError(t, f.db.First(&kept, record.ID).Error)
	require.NotNil(t, kept.Grade)
	assert.Equal(t, 5, *kept.Grade)
}

func TestRecordAttendanceCreatesMissing(t *testing.T) {
	f := newFixture(t)
	lesson, _ := createLessonWithStudents(t, f, 1)

	// Студент зачислен после создания урока: записи нет
	late := createStudent(t, f.db, f.group)

	record, err := RecordAttendance(f.db, lesson.ID, late.ID, AttendanceUpdate{
		Attended: true,
		Grade:    intPtr(5),
	})
	require.NoError(t, err)
	assert.True(t, record.Attended)

	// Повторный вызов обновляет ту же запись
	again, err := RecordAttendance(f.db, lesson.ID, late.ID, AttendanceUpdate{Attended: false})
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
	assert.False(t, again.Attended)

	var count int64
	f.db.Model(&models.Attendance{}).
		Where("lesson_id = ? AND student_id = ?", lesson.ID, late.ID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestReconcileAttendance(t *testing.T) {
	f := newFixture(t)
	lesson, _ := createLessonWithStudents(t, f, 2)

	// Два студента зачислены после создания урока
	createStudent(t, f.db, f.group)
	createStudent(t, f.db, f.group)

	reports, err := MissingAttendance(f.db)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int(lesson.ID), reports[0].LessonID)
	assert.Equal(t, 4, reports[0].Students)
	assert.Equal(t, 2, reports[0].Records)
	assert.Equal(t, 2, reports[0].Missing)

	created, err := ReconcileAttendance(f.db)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var count int64
	f.db.Model(&models.Attendance{}).Where("lesson_id = ?", lesson.ID).Count(&count)
	assert.EqualValues(t, 4, count)

	// Повторный запуск ничего не меняет
	created, err = ReconcileAttendance(f.db)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	reports, err = MissingAttendance(f.db)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestMissingAttendanceIgnoresSurplus(t *testing.T) {
	f := newFixture(t)
	_, students := createLessonWithStudents(t, f, 1)

	// Студент переведен в другую группу: его отметка остается, но урок
	// дефицитным не становится
	other := createGroup(t, f.db, "ПО-11")
	require.NoError(t, f.db.Model(students[0]).Update("group_id", other.ID).Error)

	reports, err := MissingAttendance(f.db)
	require.NoError(t, err)
	assert.Empty(t, reports)

	created, err := ReconcileAttendance(f.db)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestReconcileKeepsExistingMarks(t *testing.T) {
	f := newFixture(t)
	lesson, students := createLessonWithStudents(t, f, 1)

	var record models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ? AND student_id = ?",
		lesson.ID, students[0].ID).First(&record).Error)
	_, err := UpdateAttendance(f.db, record.ID, AttendanceUpdate{
		Attended: true,
		Grade:    intPtr(5),
	})
	require.NoError(t, err)

	createStudent(t, f.db, f.group)
	_, err = ReconcileAttendance(f.db)
	require.NoError(t, err)

	// Выставленная отметка не перезаписана значениями по умолчанию
	var kept models.Attendance
	require.NoError(t, f.db.First(&kept, record.ID).Error)
	assert.True(t, kept.Attended)
	require.NotNil(t, kept.Grade)
	assert.Equal(t, 5, *kept.Grade)
}
