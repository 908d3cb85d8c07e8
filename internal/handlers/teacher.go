package handlers

import (
	"net/http"
	"strconv"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"

	"github.com/gin-gonic/gin"
)

type TeacherHandler struct{}

func NewTeacherHandler() *TeacherHandler {
	return &TeacherHandler{}
}

// ListTeachers возвращает преподавателей с группами и предметами
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var teachers []models.Teacher
	if err := database.DB.Preload("User").
		Preload("MainGroup").
		Preload("AdditionalGroups").
		Preload("Subjects").
		Find(&teachers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch teachers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"teachers": teachers})
}

// GetTeacher возвращает преподавателя по ID
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}

	var teacher models.Teacher
	if err := database.DB.Preload("User").
		Preload("MainGroup").
		Preload("AdditionalGroups").
		Preload("Subjects").
		First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"teacher": teacher})
}

// AssignSubjectsRequest структура для назначения предметов
type AssignSubjectsRequest struct {
	SubjectIDs []uint `json:"subject_ids" binding:"required"`
}

// AssignSubjects добавляет преподавателю предметы, которые он ведет
func (h *TeacherHandler) AssignSubjects(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}

	var req AssignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var subjects []models.Subject
	if err := database.DB.Find(&subjects, req.SubjectIDs).Error; err != nil || len(subjects) != len(req.SubjectIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Some subjects not found"})
		return
	}

	if err := database.DB.Model(&teacher).Association("Subjects").Append(&subjects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign subjects"})
		return
	}

	database.DB.Preload("Subjects").First(&teacher, teacher.ID)
	c.JSON(http.StatusOK, gin.H{"teacher": teacher})
}

// RemoveSubject убирает предмет у преподавателя
func (h *TeacherHandler) RemoveSubject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}
	subjectID, err := strconv.Atoi(c.Param("subject_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var subject models.Subject
	if err := database.DB.First(&subject, subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	if err := database.DB.Model(&teacher).Association("Subjects").Delete(&subject); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subject"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subject removed successfully"})
}

// AssignGroupsRequest структура для назначения дополнительных групп
type AssignGroupsRequest struct {
	GroupIDs []uint `json:"group_ids" binding:"required"`
}

// AssignGroups добавляет преподавателю дополнительные группы
func (h *TeacherHandler) AssignGroups(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}

	var req AssignGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var groups []models.Group
	if err := database.DB.Find(&groups, req.GroupIDs).Error; err != nil || len(groups) != len(req.GroupIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Some groups not found"})
		return
	}

	if err := database.DB.Model(&teacher).Association("AdditionalGroups").Append(&groups); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign groups"})
		return
	}

	database.DB.Preload("MainGroup").Preload("AdditionalGroups").First(&teacher, teacher.ID)
	c.JSON(http.StatusOK, gin.H{"teacher": teacher})
}

// RemoveGroup убирает дополнительную группу у преподавателя
func (h *TeacherHandler) RemoveGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if err := database.DB.Model(&teacher).Association("AdditionalGroups").Delete(&group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group removed successfully"})
}

// SetMainGroupRequest структура для смены основной группы
type SetMainGroupRequest struct {
	GroupID uint `json:"group_id" binding:"required"`
}

// SetMainGroup меняет основную группу преподавателя
func (h *TeacherHandler) SetMainGroup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher ID"})
		return
	}

	var req SetMainGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Teacher not found"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, req.GroupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if err := database.DB.Model(&teacher).Update("main_group_id", group.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set main group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"teacher": teacher})
}
