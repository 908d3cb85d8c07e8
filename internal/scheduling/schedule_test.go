package scheduling

import (
	"testing"

	"gradekeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateSchedule(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "09:00", f.schedule.StartTime)
	assert.True(t, f.schedule.IsActive)

	var count int64
	f.db.Model(&models.Schedule{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateScheduleInvalidTimeRange(t *testing.T) {
	f := newFixture(t)

	in := ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   1,
		StartTime: "10:00",
		EndTime:   "09:00",
	}
	_, err := CreateSchedule(f.db, in)
	requireCode(t, err, CodeInvalidTimeRange)

	// Нулевая длительность тоже отклоняется
	in.EndTime = "10:00"
	_, err = CreateSchedule(f.db, in)
	requireCode(t, err, CodeInvalidTimeRange)

	// Неверный формат времени
	in.StartTime = "9:00"
	in.EndTime = "10:00"
	_, err = CreateSchedule(f.db, in)
	requireCode(t, err, CodeInvalidTimeRange)
}

func TestCreateScheduleInvalidWeekday(t *testing.T) {
	f := newFixture(t)

	in := ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   7,
		StartTime: "09:00",
		EndTime:   "10:30",
	}
	// Отказ типизированный, а не общая ошибка
	_, err := CreateSchedule(f.db, in)
	requireCode(t, err, CodeInvalidTimeRange)

	in.Weekday = -1
	_, err = CreateSchedule(f.db, in)
	requireCode(t, err, CodeInvalidTimeRange)
}

func TestCreateScheduleTeacherNotQualified(t *testing.T) {
	f := newFixture(t)
	other := createSubject(t, f.db, "Физика")

	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: other.ID,
		TeacherID: f.teacher.ID,
		Weekday:   1,
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	requireCode(t, err, CodeTeacherNotQualified)
}

func TestCreateScheduleTeacherNotAssignedToGroup(t *testing.T) {
	f := newFixture(t)
	other := createGroup(t, f.db, "ПО-11")

	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   other.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   1,
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	requireCode(t, err, CodeTeacherNotAssignedToGroup)
}

func TestCreateScheduleAdditionalGroupAllowed(t *testing.T) {
	f := newFixture(t)
	other := createGroup(t, f.db, "ПО-11")
	require.NoError(t, f.db.Model(f.teacher).Association("AdditionalGroups").Append(other))

	schedule, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   other.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   1,
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, schedule.GroupID)
}

func TestGroupTimeConflict(t *testing.T) {
	f := newFixture(t)
	physics := createSubject(t, f.db, "Физика")
	second := createTeacher(t, f.db, f.group, physics)

	// 09:30-10:30 пересекается с существующим 09:00-10:30
	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: physics.ID,
		TeacherID: second.ID,
		Weekday:   0,
		StartTime: "09:30",
		EndTime:   "10:30",
	})
	e := requireCode(t, err, CodeGroupTimeConflict)
	assert.NotNil(t, e.Conflict)
}

func TestAdjacentSlotsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	physics := createSubject(t, f.db, "Физика")
	second := createTeacher(t, f.db, f.group, physics)

	// Интервалы полуоткрытые: 10:30-11:30 впритык к 09:00-10:30 не конфликтует
	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: physics.ID,
		TeacherID: second.ID,
		Weekday:   0,
		StartTime: "10:30",
		EndTime:   "11:30",
	})
	require.NoError(t, err)
}

func TestOtherWeekdayDoesNotConflict(t *testing.T) {
	f := newFixture(t)

	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   1,
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	require.NoError(t, err)
}

func TestTeacherTimeConflict(t *testing.T) {
	f := newFixture(t)
	other := createGroup(t, f.db, "ПО-11")
	require.NoError(t, f.db.Model(f.teacher).Association("AdditionalGroups").Append(other))

	// Тот же преподаватель, другая группа, пересекающееся время
	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   other.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   0,
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	requireCode(t, err, CodeTeacherTimeConflict)
}

func TestInactiveScheduleDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(f.schedule).Update("is_active", false).Error)

	_, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   0,
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	require.NoError(t, err)
}

func TestUpdateScheduleExcludesSelf(t *testing.T) {
	f := newFixture(t)

	// Сдвиг собственного слота внутри своего же времени не конфликтует
	updated, err := UpdateSchedule(f.db, f.schedule.ID, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: f.subject.ID,
		TeacherID: f.teacher.ID,
		Weekday:   0,
		StartTime: "09:15",
		EndTime:   "10:45",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:15", updated.StartTime)
}

func TestUpdateScheduleRevalidates(t *testing.T) {
	f := newFixture(t)
	physics := createSubject(t, f.db, "Физика")
	second := createTeacher(t, f.db, f.group, physics)
	slot, err := CreateSchedule(f.db, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: physics.ID,
		TeacherID: second.ID,
		Weekday:   0,
		StartTime: "11:00",
		EndTime:   "12:00",
	})
	require.NoError(t, err)

	// Попытка сдвинуть второй слот на занятое время отклоняется
	_, err = UpdateSchedule(f.db, slot.ID, ScheduleInput{
		GroupID:   f.group.ID,
		SubjectID: physics.ID,
		TeacherID: second.ID,
		Weekday:   0,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	requireCode(t, err, CodeGroupTimeConflict)
}

func TestDeleteScheduleKeepsLessons(t *testing.T) {
	f := newFixture(t)
	createStudent(t, f.db, f.group)

	lesson, err := CreateLessonFromSchedule(f.db, FromScheduleInput{
		ScheduleID: f.schedule.ID,
		Date:       mondayDate(),
	})
	require.NoError(t, err)

	require.NoError(t, DeleteSchedule(f.db, f.schedule.ID))

	var kept models.Lesson
	require.NoError(t, f.db.First(&kept, lesson.ID).Error)
	assert.Nil(t, kept.ScheduleID)
	// Снимок полей расписания сохраняется
	assert.Equal(t, "09:00", kept.StartTime)

	var count int64
	f.db.Model(&models.Schedule{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteScheduleNotFound(t *testing.T) {
	f := newFixture(t)
	err := DeleteSchedule(f.db, 9999)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
