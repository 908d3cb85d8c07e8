package scheduling

import (
	"testing"
	"time"

	"gradekeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondayDate — понедельник, совпадает с Weekday=0 слота из newFixture
func mondayDate() time.Time {
	return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex(mondayDate()))
	assert.Equal(t, 6, WeekdayIndex(mondayDate().AddDate(0, 0, 6))) // воскресенье
	assert.Equal(t, 0, WeekdayIndex(mondayDate().AddDate(0, 0, 7)))
}

func TestCreateLessonFromSchedule(t *testing.T) {
	f := newFixture(t)
	createStudent(t, f.db, f.group)
	createStudent(t, f.db, f.group)
	createStudent(t, f.db, f.group)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)

	// Поля скопированы из расписания
	assert.Equal(t, f.subject.ID, lesson.SubjectID)
	assert.Equal(t, f.group.ID, lesson.GroupID)
	assert.Equal(t, "09:00", lesson.StartTime)
	assert.Equal(t, "10:30", lesson.EndTime)
	assert.Equal(t, "101", lesson.Classroom)
	assert.True(t, lesson.IsFromSchedule)
	require.NotNil(t, lesson.TeacherID)
	assert.Equal(t, f.teacher.ID, *lesson.TeacherID)

	// По одной отметке на каждого студента группы
	var records []models.Attendance
	require.NoError(t, f.db.Where("lesson_id = ?", lesson.ID).Find(&records).Error)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.False(t, r.Attended)
		assert.False(t, r.Late)
		assert.Nil(t, r.Grade)
	}
}

func TestLessonSnapshotSurvivesScheduleEdit(t *testing.T) {
	f := newFixture(t)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)

	_, err = UpdateSchedule(f.db, f.schedule.ID, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   0,
		StartTime: "12:00",
		EndTime:   "13:30",
		Classroom: "305",
	})
	require.NoError(t, err)

	var kept models.Lesson
	require.NoError(t, f.db.First(&kept, lesson.ID).Error)
	assert.Equal(t, "09:00", kept.StartTime)
	assert.Equal(t, "101", kept.Classroom)
}

func TestCreateLessonClassroomOverride(t *testing.T) {
	f := newFixture(t)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
		Classroom:  "Актовый зал",
	})
	require.NoError(t, err)
	assert.Equal(t, "Актовый зал", lesson.Classroom)
}

func TestCreateLessonWeekdayMismatch(t *testing.T) {
	f := newFixture(t)

	// Вторник не совпадает с понедельничным слотом
	_, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate().AddDate(0, 0, 1),
	})
	requireCode(t, err, CodeWeekdayMismatch)
}

func TestCreateLessonDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)

	_, err = CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	e := requireCode(t, err, CodeDuplicateLesson)
	assert.NotNil(t, e.Conflict)

	// Следующая неделя — отдельный урок
	_, err = CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
}

func TestCreateLessonTeacherAuthorization(t *testing.T) {
	f := newFixture(t)
	otherGroup := createGroup(t, f.db, "ПО-11")
	outsider := createTeacher(t, f.db, otherGroup, f.subject)

	// Преподаватель чужой группы не может создать урок
	_, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
		Teacher:    outsider,
	})
	requireCode(t, err, CodeTeacherNotAssignedToGroup)

	// Владелец слота — может
	_, err = CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
		Teacher:    f.teacher,
	})
	require.NoError(t, err)
}

func TestCreateManualLesson(t *testing.T) {
	f := newFixture(t)
	createStudent(t, f.db, f.group)

	lesson, err := CreateManualLesson(f.db, ManualLessonInput{
		SubjectID: f.subject.ID,
		GroupID:   f.group.ID,
		Date:      mondayDate().AddDate(0, 0, 1),
		StartTime: "14:00",
		EndTime:   "15:30",
		Teacher:   f.teacher,
	})
	require.NoError(t, err)
	assert.False(t, lesson.IsFromSchedule)
	assert.Nil(t, lesson.ScheduleID)

	var records int64
	f.db.Model(&models.Attendance{}).Where("lesson_id = ?", lesson.ID).Count(&records)
	assert.EqualValues(t, 1, records)

	// Повтор того же слота отклоняется
	_, err = CreateManualLesson(f.db, ManualLessonInput{
		SubjectID: f.subject.ID,
		GroupID:   f.group.ID,
		Date:      mondayDate().AddDate(0, 0, 1),
		StartTime: "14:00",
		EndTime:   "15:30",
		Teacher:   f.teacher,
	})
	requireCode(t, err, CodeDuplicateLesson)
}

func TestCreateManualLessonInvalidTime(t *testing.T) {
	f := newFixture(t)

	_, err := CreateManualLesson(f.db, ManualLessonInput{
		SubjectID: f.subject.ID,
		GroupID:   f.group.ID,
		Date:      mondayDate(),
		StartTime: "15:00",
		EndTime:   "14:00",
	})
	requireCode(t, err, CodeInvalidTimeRange)
}

func TestDeleteLessonRemovesAttendance(t *testing.T) {
	f := newFixture(t)
	createStudent(t, f.db, f.group)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteLesson(f.db, lesson.ID))

	var lessons, records int64
	f.db.Model(&models.Lesson{}).Count(&lessons)
	f.db.Model(&models.Attendance{}).Count(&records)
	assert.EqualValues(t, 0, lessons)
	assert.EqualValues(t, 0, records)
}
