package handlers

import (
	"net/http"
	"strconv"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"

	"github.com/gin-gonic/gin"
)

type SubjectHandler struct{}

func NewSubjectHandler() *SubjectHandler {
	return &SubjectHandler{}
}

// SubjectRequest структура для создания и обновления предмета
type SubjectRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateSubject создает новый предмет
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject := models.Subject{Name: req.Name}
	if err := database.DB.Create(&subject).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Subject with this name already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subject": subject})
}

// ListSubjects возвращает список предметов
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var subjects []models.Subject
	if err := database.DB.Order("name").Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subjects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// GetSubject возвращает предмет с преподавателями, которые его ведут
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	var teachers []models.Teacher
	if err := database.DB.Preload("User").
		Joins("JOIN teacher_subjects ON teacher_subjects.teacher_id = teachers.id").
		Where("teacher_subjects.subject_id = ?", subject.ID).
		Find(&teachers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch teachers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject, "teachers": teachers})
}

// UpdateSubject обновляет предмет
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	subject.Name = req.Name
	if err := database.DB.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subject": subject})
}

// DeleteSubject удаляет предмет
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	var subject models.Subject
	if err := database.DB.First(&subject, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	var schedules int64
	database.DB.Model(&models.Schedule{}).Where("subject_id = ?", subject.ID).Count(&schedules)
	if schedules > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Subject is used in schedule"})
		return
	}

	if err := database.DB.Delete(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted successfully"})
}
