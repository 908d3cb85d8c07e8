// Скрипт наполнения базы тестовыми данными.
// Запуск: go run scripts/seed.go
package main

import (
	"fmt"
	"log"

	"gradekeeper/internal/config"
	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	db := database.DB

	// Группы должны существовать до назначения ролей: профили студентов
	// и преподавателей привязываются к первой доступной группе
	groups := []models.Group{
		{Name: "ИС-21", Course: 2},
		{Name: "ИС-31", Course: 3},
		{Name: "ПО-11", Course: 1},
	}
	for i := range groups {
		if err := db.Where("name = ?", groups[i].Name).FirstOrCreate(&groups[i]).Error; err != nil {
			log.Fatalf("Failed to create group: %v", err)
		}
	}

	subjects := []models.Subject{
		{Name: "Математика"},
		{Name: "Физика"},
		{Name: "Информатика"},
		{Name: "История"},
	}
	for i := range subjects {
		if err := db.Where("name = ?", subjects[i].Name).FirstOrCreate(&subjects[i]).Error; err != nil {
			log.Fatalf("Failed to create subject: %v", err)
		}
	}

	admin := createUser(db, "admin", "admin@gradekeeper.local", "admin123", "Админ", "Админов")
	if _, err := roles.AssignRole(db, admin.ID, roles.RoleAdmin); err != nil {
		log.Fatalf("Failed to assign admin role: %v", err)
	}

	teacherUser := createUser(db, "teacher1", "teacher1@gradekeeper.local", "teacher123", "Мария", "Иванова")
	teacherProfile, err := roles.AssignRole(db, teacherUser.ID, roles.RoleTeacher)
	if err != nil {
		log.Fatalf("Failed to assign teacher role: %v", err)
	}
	if teacherProfile.Teacher != nil {
		db.Model(teacherProfile.Teacher).Association("Subjects").Append(&subjects[0], &subjects[2])
		db.Model(teacherProfile.Teacher).Association("AdditionalGroups").Append(&groups[1])
	}

	studentNames := [][2]string{
		{"Алексей", "Петров"},
		{"Ольга", "Сидорова"},
		{"Дмитрий", "Кузнецов"},
	}
	var students []*roles.ProfileChangeResult
	for i, name := range studentNames {
		user := createUser(db,
			fmt.Sprintf("student%d", i+1),
			fmt.Sprintf("student%d@gradekeeper.local", i+1),
			"student123", name[0], name[1])
		profile, err := roles.AssignRole(db, user.ID, roles.RoleStudent)
		if err != nil {
			log.Fatalf("Failed to assign student role: %v", err)
		}
		students = append(students, profile)
	}

	parentUser := createUser(db, "parent1", "parent1@gradekeeper.local", "parent123", "Елена", "Петрова")
	parentProfile, err := roles.AssignRole(db, parentUser.ID, roles.RoleParent)
	if err != nil {
		log.Fatalf("Failed to assign parent role: %v", err)
	}
	if parentProfile.Parent != nil && len(students) > 0 && students[0].Student != nil {
		db.Model(parentProfile.Parent).Association("Children").Append(students[0].Student)
		db.Model(parentProfile.Parent).Update("parent_type", "mother")
	}

	// Расписание: математика и информатика у первой группы
	if teacherProfile.Teacher != nil {
		slots := []models.Schedule{
			{GroupID: groups[0].ID, SubjectID: subjects[0].ID, TeacherID: teacherProfile.Teacher.ID,
				Weekday: 0, StartTime: "09:00", EndTime: "10:30", Classroom: "101", IsActive: true},
			{GroupID: groups[0].ID, SubjectID: subjects[2].ID, TeacherID: teacherProfile.Teacher.ID,
				Weekday: 2, StartTime: "10:45", EndTime: "12:15", Classroom: "205", IsActive: true},
		}
		for i := range slots {
			db.Where("group_id = ? AND weekday = ? AND start_time = ?",
				slots[i].GroupID, slots[i].Weekday, slots[i].StartTime).
				FirstOrCreate(&slots[i])
		}
	}

	log.Println("Database seeded successfully")
	log.Println("Admin credentials: admin / admin123")
}

func createUser(db *gorm.DB, username, email, password, firstName, lastName string) *models.User {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err == nil {
		return &user
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up user %s: %v", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user = models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}
