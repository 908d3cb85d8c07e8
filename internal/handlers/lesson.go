package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/scheduling"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct{}

func NewLessonHandler() *LessonHandler {
	return &LessonHandler{}
}

// CreateFromScheduleRequest структура для создания урока из расписания
type CreateFromScheduleRequest struct {
	ScheduleID uint   `json:"schedule_id" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Classroom  string `json:"classroom"`
	Notes      string `json:"notes"`
}

// CreateFromSchedule создает урок из слота расписания на дату
func (h *LessonHandler) CreateFromSchedule(c *gin.Context) {
	var req CreateFromScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Дата должна быть в формате YYYY-MM-DD"})
		return
	}

	teacher, ok := h.callerTeacher(c)
	if !ok {
		return
	}

	lesson, err := scheduling.CreateLessonFromSchedule(database.DB, scheduling.FromScheduleInput{
		ScheduleID: req.ScheduleID,
		Date:       date,
		Classroom:  req.Classroom,
		Notes:      req.Notes,
		Teacher:    teacher,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	database.DB.Preload("Subject").Preload("Group").Preload("Teacher.User").
		First(lesson, lesson.ID)
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

// CreateManualRequest структура для ручного создания урока
type CreateManualRequest struct {
	SubjectID uint   `json:"subject_id" binding:"required"`
	GroupID   uint   `json:"group_id" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Classroom string `json:"classroom"`
	Notes     string `json:"notes"`
}

// CreateManual создает урок вне расписания
func (h *LessonHandler) CreateManual(c *gin.Context) {
	var req CreateManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Дата должна быть в формате YYYY-MM-DD"})
		return
	}

	teacher, ok := h.callerTeacher(c)
	if !ok {
		return
	}

	lesson, err := scheduling.CreateManualLesson(database.DB, scheduling.ManualLessonInput{
		SubjectID: req.SubjectID,
		GroupID:   req.GroupID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Classroom: req.Classroom,
		Notes:     req.Notes,
		Teacher:   teacher,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	database.DB.Preload("Subject").Preload("Group").Preload("Teacher.User").
		First(lesson, lesson.ID)
	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

// ListLessons возвращает уроки с фильтрами по группе, предмету и датам
func (h *LessonHandler) ListLessons(c *gin.Context) {
	query := database.DB.Preload("Subject").Preload("Group").Preload("Teacher.User")

	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if from := c.Query("from"); from != "" {
		date, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Параметр from должен быть в формате YYYY-MM-DD"})
			return
		}
		query = query.Where("date >= ?", scheduling.DateOnly(date))
	}
	if to := c.Query("to"); to != "" {
		date, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Параметр to должен быть в формате YYYY-MM-DD"})
			return
		}
		query = query.Where("date <= ?", scheduling.DateOnly(date))
	}

	var lessons []models.Lesson
	if err := query.Order("date desc, start_time").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lessons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lessons": lessons, "total": len(lessons)})
}

// GetLesson возвращает урок с записями посещаемости
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID"})
		return
	}

	var lesson models.Lesson
	if err := database.DB.Preload("Subject").Preload("Group").Preload("Teacher.User").
		First(&lesson, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}

	var records []models.Attendance
	if err := database.DB.Preload("Student.User").
		Where("lesson_id = ?", lesson.ID).
		Order("student_id").
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lesson": lesson, "attendance": records})
}

// DeleteLesson удаляет урок вместе с отметками посещаемости
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID"})
		return
	}

	if err := scheduling.DeleteLesson(database.DB, uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}

// callerTeacher возвращает профиль преподавателя вызывающего.
// Для администратора возвращается nil: проверка группы пропускается.
func (h *LessonHandler) callerTeacher(c *gin.Context) (*models.Teacher, bool) {
	isAdmin, _ := c.Get("is_admin")
	if admin, _ := isAdmin.(bool); admin {
		return nil, true
	}

	teacher, err := currentTeacher(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if teacher == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can create lessons"})
		return nil, false
	}
	return teacher, true
}
