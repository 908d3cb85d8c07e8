package handlers

import (
	"log"
	"net/http"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"
	"gradekeeper/internal/scheduling"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentUser загружает пользователя из контекста запроса
func currentUser(c *gin.Context) (*models.User, error) {
	userID, _ := c.Get("user_id")
	var user models.User
	if err := database.DB.Preload("Roles").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// currentViewer разрешает роль вызывающего один раз на запрос
func currentViewer(c *gin.Context) (*roles.Viewer, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}
	return roles.Resolve(database.DB, user)
}

// currentTeacher возвращает профиль преподавателя вызывающего или nil
func currentTeacher(c *gin.Context) (*models.Teacher, error) {
	userID, _ := c.Get("user_id")
	var teacher models.Teacher
	err := database.DB.Where("user_id = ?", userID).First(&teacher).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// respondError переводит типизированные отказы в HTTP статусы.
// Все, что не распознано, отдается как общая ошибка операции.
func respondError(c *gin.Context, err error) {
	if e, ok := scheduling.AsError(err); ok {
		status := http.StatusBadRequest
		switch e.Code {
		case scheduling.CodeGroupTimeConflict,
			scheduling.CodeTeacherTimeConflict,
			scheduling.CodeDuplicateLesson:
			status = http.StatusConflict
		case scheduling.CodeTeacherNotAssignedToGroup:
			status = http.StatusForbidden
		}
		body := gin.H{"error": e.Message, "code": e.Code}
		if e.Conflict != nil {
			body["conflict"] = e.Conflict
		}
		c.JSON(status, body)
		return
	}

	if e, ok := roles.AsError(err); ok {
		status := http.StatusBadRequest
		if e.Code == roles.CodeProfileConflict {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": e.Message, "code": e.Code})
		return
	}

	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	log.Printf("operation failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
}

// canEditStudent проверяет права редактирования посещаемости студента:
// администратор, преподаватель его группы, его родитель или он сам
func canEditStudent(viewer *roles.Viewer, student *models.Student) bool {
	switch viewer.Kind {
	case roles.ViewerAdmin:
		return true
	case roles.ViewerTeacher:
		ok, err := scheduling.TeacherWorksWithGroup(database.DB, viewer.Teacher, student.GroupID)
		return err == nil && ok
	case roles.ViewerParent:
		for _, child := range viewer.Parent.Children {
			if child.ID == student.ID {
				return true
			}
		}
		return false
	case roles.ViewerStudent:
		return viewer.Student.ID == student.ID
	}
	return false
}
