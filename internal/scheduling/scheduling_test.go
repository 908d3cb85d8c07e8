package scheduling

import (
	"fmt"
	"testing"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB открывает in-memory базу. Пул ограничен одним соединением:
// каждое соединение sqlite :memory: видит собственную базу.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		Username:     fmt.Sprintf("%s%d", name, userSeq),
		Email:        fmt.Sprintf("%s%d@test.local", name, userSeq),
		PasswordHash: "x",
		FirstName:    name,
		LastName:     "Тестов",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createGroup(t *testing.T, db *gorm.DB, name string) *models.Group {
	t.Helper()
	group := models.Group{Name: name, Course: 1}
	require.NoError(t, db.Create(&group).Error)
	return &group
}

func createSubject(t *testing.T, db *gorm.DB, name string) *models.Subject {
	t.Helper()
	subject := models.Subject{Name: name}
	require.NoError(t, db.Create(&subject).Error)
	return &subject
}

// createTeacher создает преподавателя с основной группой и предметами
func createTeacher(t *testing.T, db *gorm.DB, group *models.Group, subjects ...*models.Subject) *models.Teacher {
	t.Helper()
	user := createUser(t, db, "teacher")
	teacher := models.Teacher{UserID: user.ID, MainGroupID: group.ID}
	require.NoError(t, db.Create(&teacher).Error)
	for _, subject := range subjects {
		require.NoError(t, db.Model(&teacher).Association("Subjects").Append(subject))
	}
	return &teacher
}

func createStudent(t *testing.T, db *gorm.DB, group *models.Group) *models.Student {
	t.Helper()
	user := createUser(t, db, "student")
	student := models.Student{UserID: user.ID, GroupID: group.ID}
	require.NoError(t, db.Create(&student).Error)
	return &student
}

// fixture — минимальный набор: группа, предмет, квалифицированный
// преподаватель и активный слот расписания на понедельник 09:00-10:30
type fixture struct {
	db       *gorm.DB
	group    *models.Group
	subject  *models.Subject
	teacher  *models.Teacher
	schedule *models.Schedule
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	group := createGroup(t, db, "ИС-21")
	subject := createSubject(t, db, "Математика")
	teacher := createTeacher(t, db, group, subject)

	schedule, err := CreateSchedule(db, ScheduleInput{
		GroupID:   group.ID,
		SubjectID: subject.ID,
		TeacherID: teacher.ID,
		Weekday:   0,
		StartTime: "09:00",
		EndTime:   "10:30",
		Classroom: "101",
	})
	require.NoError(t, err)

	return &fixture{db: db, group: group, subject: subject, teacher: teacher, schedule: schedule}
}

// requireCode проверяет, что err — типизированный отказ с нужным кодом
func requireCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok, "expected typed error, got %v", err)
	require.Equal(t, code, e.Code)
	return e
}
