package handlers

import (
	"net/http"
	"strconv"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"

	"github.com/gin-gonic/gin"
)

type ParentHandler struct{}

func NewParentHandler() *ParentHandler {
	return &ParentHandler{}
}

// LinkChildRequest структура для привязки ребенка
type LinkChildRequest struct {
	StudentID  uint   `json:"student_id" binding:"required"`
	ParentType string `json:"parent_type"` // mother, father, grandmother, grandfather, other
}

// LinkChild привязывает студента к родителю
func (h *ParentHandler) LinkChild(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent ID"})
		return
	}

	var req LinkChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var parent models.Parent
	if err := database.DB.First(&parent, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parent not found"})
		return
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := database.DB.Model(&parent).Association("Children").Append(&student); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link child"})
		return
	}

	if req.ParentType != "" {
		database.DB.Model(&parent).Update("parent_type", req.ParentType)
	}

	database.DB.Preload("Children.User").Preload("Children.Group").First(&parent, parent.ID)
	c.JSON(http.StatusOK, gin.H{"parent": parent})
}

// UnlinkChild отвязывает студента от родителя
func (h *ParentHandler) UnlinkChild(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent ID"})
		return
	}
	studentID, err := strconv.Atoi(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var parent models.Parent
	if err := database.DB.First(&parent, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parent not found"})
		return
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if err := database.DB.Model(&parent).Association("Children").Delete(&student); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlink child"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Child unlinked successfully"})
}

// MyChildren возвращает детей вызывающего родителя
func (h *ParentHandler) MyChildren(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if viewer.Kind != roles.ViewerParent {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only parents have children lists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"children": viewer.Parent.Children})
}

// GetChildren возвращает детей родителя по ID (для администратора)
func (h *ParentHandler) GetChildren(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent ID"})
		return
	}

	var parent models.Parent
	if err := database.DB.Preload("Children.User").
		Preload("Children.Group").
		First(&parent, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Parent not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"children": parent.Children})
}
