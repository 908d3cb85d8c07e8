package handlers

import (
	"net/http"
	"strconv"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"
	"gradekeeper/internal/scheduling"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct{}

func NewAttendanceHandler() *AttendanceHandler {
	return &AttendanceHandler{}
}

// AttendanceRequest структура для изменения отметки посещаемости
type AttendanceRequest struct {
	Attended bool `json:"attended"`
	Late     bool `json:"late"`
	Grade    *int `json:"grade"`
}

// LessonAttendance возвращает отметки посещаемости урока
func (h *AttendanceHandler) LessonAttendance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson ID"})
		return
	}

	var lesson models.Lesson
	if err := database.DB.Preload("Subject").Preload("Group").First(&lesson, id).Error; err != nil {
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

// UpdateAttendance изменяет отметку посещаемости по ее ID
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attendance ID"})
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var record models.Attendance
	if err := database.DB.Preload("Student").First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendance record not found"})
		return
	}

	if !h.authorize(c, &record.Student) {
		return
	}

	updated, err := scheduling.UpdateAttendance(database.DB, uint(id), scheduling.AttendanceUpdate{
		Attended: req.Attended,
		Late:     req.Late,
		Grade:    req.Grade,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attendance": updated})
}

// RecordRequest отметка по паре урок-студент
type RecordRequest struct {
	LessonID uint `json:"lesson_id" binding:"required"`
	Attended bool `json:"attended"`
	Late     bool `json:"late"`
	Grade    *int `json:"grade"`
}

// BulkRecordRequest пакет отметок одного студента по нескольким урокам
type BulkRecordRequest struct {
	Records []RecordRequest `json:"records" binding:"required,min=1,dive"`
}

// RecordForStudent ставит студенту отметки по урокам, создавая записи
// если их еще нет (студент зачислен после создания уроков)
func (h *AttendanceHandler) RecordForStudent(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var req BulkRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var student models.Student
	if err := database.DB.First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	if !h.authorize(c, &student) {
		return
	}

	records := make([]*models.Attendance, 0, len(req.Records))
	for _, item := range req.Records {
		record, err := scheduling.RecordAttendance(database.DB, item.LessonID, student.ID,
			scheduling.AttendanceUpdate{
				Attended: item.Attended,
				Late:     item.Late,
				Grade:    item.Grade,
			})
		if err != nil {
			respondError(c, err)
			return
		}
		records = append(records, record)
	}

	c.JSON(http.StatusOK, gin.H{"attendance": records, "updated": len(records)})
}

// StudentAttendance возвращает отметки студента со сводной статистикой
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student ID"})
		return
	}

	var student models.Student
	if err := database.DB.Preload("User").Preload("Group").First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditStudent(viewer, &student) {
		c.JSON(http.StatusForbidden, gin.H{"error": "У вас нет доступа к этому студенту"})
		return
	}

	query := database.DB.Preload("Lesson.Subject").
		Where("student_id = ?", student.ID)
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Joins("JOIN lessons ON lessons.id = attendances.lesson_id").
			Where("lessons.subject_id = ?", subjectID)
	}

	var records []models.Attendance
	if err := query.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student":    student,
		"attendance": records,
		"stats":      attendanceStats(records),
	})
}

// Reconcile досоздает недостающие отметки по всем урокам
func (h *AttendanceHandler) Reconcile(c *gin.Context) {
	created, err := scheduling.ReconcileAttendance(database.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reconciliation completed",
		"created": created,
	})
}

// Missing возвращает уроки, где отметок меньше, чем студентов в группе
func (h *AttendanceHandler) Missing(c *gin.Context) {
	reports, err := scheduling.MissingAttendance(database.DB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lessons": reports, "total": len(reports)})
}

// authorize проверяет право вызывающего менять отметки студента
func (h *AttendanceHandler) authorize(c *gin.Context, student *models.Student) bool {
	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return false
	}
	// Студенты и родители отметки не редактируют
	editor := viewer.Kind == roles.ViewerAdmin || viewer.Kind == roles.ViewerTeacher
	if !editor || !canEditStudent(viewer, student) {
		c.JSON(http.StatusForbidden, gin.H{"error": "У вас нет прав для изменения посещаемости"})
		return false
	}
	return true
}

// AttendanceStats сводная статистика по набору отметок
type AttendanceStats struct {
	Total        int     `json:"total"`
	Attended     int     `json:"attended"`
	Late         int     `json:"late"`
	Missed       int     `json:"missed"`
	AttendedRate float64 `json:"attended_rate"`
	LateRate     float64 `json:"late_rate"`
	Grades       int     `json:"grades"`
	AverageGrade float64 `json:"average_grade"`
}

func attendanceStats(records []models.Attendance) AttendanceStats {
	stats := AttendanceStats{Total: len(records)}
	gradeSum := 0
	for _, r := range records {
		if r.Attended {
			stats.Attended++
			if r.Late {
				stats.Late++
			}
		} else {
			stats.Missed++
		}
		if r.Grade != nil {
			stats.Grades++
			gradeSum += *r.Grade
		}
	}
	if stats.Total > 0 {
		stats.AttendedRate = float64(stats.Attended) / float64(stats.Total) * 100
		stats.LateRate = float64(stats.Late) / float64(stats.Total) * 100
	}
	if stats.Grades > 0 {
		stats.AverageGrade = float64(gradeSum) / float64(stats.Grades)
	}
	return stats
}
