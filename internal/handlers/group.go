package handlers

import (
	"net/http"
	"strconv"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct{}

func NewGroupHandler() *GroupHandler {
	return &GroupHandler{}
}

// GroupRequest структура для создания и обновления группы
type GroupRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Course int    `json:"course" binding:"required,min=1"`
}

// CreateGroup создает новую группу
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.Group{Name: req.Name, Course: req.Course}
	if err := database.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Group with this name already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// ListGroups возвращает список групп
func (h *GroupHandler) ListGroups(c *gin.Context) {
	var groups []models.Group
	if err := database.DB.Order("name").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup возвращает группу со списком студентов
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var students []models.Student
	if err := database.DB.Preload("User").
		Where("group_id = ?", group.ID).
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group, "students": students})
}

// UpdateGroup обновляет группу
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	group.Name = req.Name
	group.Course = req.Course
	if err := database.DB.Save(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// DeleteGroup удаляет группу
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var students int64
	database.DB.Model(&models.Student{}).Where("group_id = ?", group.ID).Count(&students)
	if students > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Group still has students"})
		return
	}

	if err := database.DB.Delete(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// MoveStudentRequest структура для перевода студента
type MoveStudentRequest struct {
	GroupID uint `json:"group_id" binding:"required"`
}

// MoveStudent переводит студента в другую группу. Отметки посещаемости
// на уже созданных уроках старой группы сохраняются; на уроках новой
// группы недостающие записи добавит сверка посещаемости.
func (h *GroupHandler) MoveStudent(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var req MoveStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, req.GroupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if err := database.DB.Model(&student).Update("group_id", group.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move student"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"student": student})
}
