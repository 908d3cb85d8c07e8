package roles

import (
	"gradekeeper/internal/models"

	"gorm.io/gorm"
)

// Виды вызывающих. Роль разрешается один раз на запрос и передается
// дальше, вместо повторных проверок наличия профилей по месту.
const (
	ViewerAdmin   = "admin"
	ViewerStudent = "student"
	ViewerTeacher = "teacher"
	ViewerParent  = "parent"
	ViewerNone    = "none"
)

// Viewer — вызывающий с разрешенной ролью. Заполнено ровно одно из
// профильных полей в соответствии с Kind (у администратора — ни одного).
type Viewer struct {
	Kind    string          `json:"kind"`
	User    *models.User    `json:"user"`
	Student *models.Student `json:"student,omitempty"`
	Teacher *models.Teacher `json:"teacher,omitempty"`
	Parent  *models.Parent  `json:"parent,omitempty"`
}

// Resolve определяет роль пользователя по его профилям
func Resolve(db *gorm.DB, user *models.User) (*Viewer, error) {
	viewer := &Viewer{User: user}

	if user.IsAdmin {
		viewer.Kind = ViewerAdmin
		return viewer, nil
	}

	var student models.Student
	err := db.Preload("Group").Where("user_id = ?", user.ID).First(&student).Error
	if err == nil {
		viewer.Kind = ViewerStudent
		viewer.Student = &student
		return viewer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var teacher models.Teacher
	err = db.Preload("MainGroup").
		Preload("AdditionalGroups").
		Preload("Subjects").
		Where("user_id = ?", user.ID).First(&teacher).Error
	if err == nil {
		viewer.Kind = ViewerTeacher
		viewer.Teacher = &teacher
		return viewer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var parent models.Parent
	err = db.Preload("Children.User").
		Preload("Children.Group").
		Where("user_id = ?", user.ID).First(&parent).Error
	if err == nil {
		viewer.Kind = ViewerParent
		viewer.Parent = &parent
		return viewer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	viewer.Kind = ViewerNone
	return viewer, nil
}

// Groups возвращает группы, с которыми работает преподаватель:
// основная первой, затем дополнительные
func TeacherGroups(teacher *models.Teacher) []models.Group {
	groups := []models.Group{teacher.MainGroup}
	groups = append(groups, teacher.AdditionalGroups...)
	return groups
}
