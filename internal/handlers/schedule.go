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

type ScheduleHandler struct{}

func NewScheduleHandler() *ScheduleHandler {
	return &ScheduleHandler{}
}

// ScheduleRequest структура для создания и обновления слота расписания
type ScheduleRequest struct {
	GroupID   uint   `json:"group_id" binding:"required"`
	SubjectID uint   `json:"subject_id" binding:"required"`
	TeacherID uint   `json:"teacher_id"` // необязательно для учителя: берется его профиль
	Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,len=5"` // HH:MM
	EndTime   string `json:"end_time" binding:"required,len=5"`   // HH:MM
	Classroom string `json:"classroom"`
}

// CreateSchedule создает слот расписания. Учитель может создавать
// расписание только для себя, администратор — для любого преподавателя.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, ok := h.resolveInput(c, &req)
	if !ok {
		return
	}

	schedule, err := scheduling.CreateSchedule(database.DB, *in)
	if err != nil {
		respondError(c, err)
		return
	}

	database.DB.Preload("Group").Preload("Subject").Preload("Teacher.User").
		First(schedule, schedule.ID)
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

// UpdateSchedule обновляет слот расписания с повторной проверкой конфликтов
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.canManage(c, uint(id)) {
		return
	}

	in, ok := h.resolveInput(c, &req)
	if !ok {
		return
	}

	schedule, err := scheduling.UpdateSchedule(database.DB, uint(id), *in)
	if err != nil {
		respondError(c, err)
		return
	}

	database.DB.Preload("Group").Preload("Subject").Preload("Teacher.User").
		First(schedule, schedule.ID)
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// DeleteSchedule удаляет слот расписания. Уроки, уже созданные из него,
// не удаляются.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	if !h.canManage(c, uint(id)) {
		return
	}

	if err := scheduling.DeleteSchedule(database.DB, uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

// GetSchedule возвращает слот расписания
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var schedule models.Schedule
	if err := database.DB.Preload("Group").Preload("Subject").Preload("Teacher.User").
		First(&schedule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// WeeklySchedule возвращает активное расписание, сгруппированное по дням
// недели и отфильтрованное по роли вызывающего: студент видит свою
// группу, учитель — свои занятия, родитель — группы детей, админ — все.
func (h *ScheduleHandler) WeeklySchedule(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return
	}

	query := database.DB.Where("is_active = ?", true).
		Preload("Group").Preload("Subject").Preload("Teacher.User")

	switch viewer.Kind {
	case roles.ViewerStudent:
		query = query.Where("group_id = ?", viewer.Student.GroupID)
	case roles.ViewerTeacher:
		query = query.Where("teacher_id = ?", viewer.Teacher.ID)
	case roles.ViewerParent:
		groupIDs := make([]uint, 0, len(viewer.Parent.Children))
		for _, child := range viewer.Parent.Children {
			groupIDs = append(groupIDs, child.GroupID)
		}
		query = query.Where("group_id IN ?", groupIDs)
	case roles.ViewerAdmin:
		// Администратор видит все
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "No profile assigned"})
		return
	}

	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var schedules []models.Schedule
	if err := query.Order("weekday, start_time").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch schedules"})
		return
	}

	// Группируем по дням недели, все семь дней присутствуют в ответе
	byDay := make(map[int][]models.Schedule, 7)
	for day := 0; day < 7; day++ {
		byDay[day] = []models.Schedule{}
	}
	for _, s := range schedules {
		byDay[s.Weekday] = append(byDay[s.Weekday], s)
	}

	c.JSON(http.StatusOK, gin.H{
		"role":     viewer.Kind,
		"weekdays": models.WeekdayNames,
		"schedule": byDay,
		"total":    len(schedules),
	})
}

// resolveInput собирает вход валидатора с учетом роли вызывающего
func (h *ScheduleHandler) resolveInput(c *gin.Context, req *ScheduleRequest) (*scheduling.ScheduleInput, bool) {
	teacherID := req.TeacherID

	isAdmin, _ := c.Get("is_admin")
	if admin, _ := isAdmin.(bool); !admin {
		own, err := currentTeacher(c)
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		if own == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only teachers can manage schedule"})
			return nil, false
		}
		if teacherID != 0 && teacherID != own.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Вы можете создавать расписание только для себя"})
			return nil, false
		}
		teacherID = own.ID
	}

	if teacherID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id is required"})
		return nil, false
	}

	return &scheduling.ScheduleInput{
		GroupID:   req.GroupID,
		SubjectID: req.SubjectID,
		TeacherID: teacherID,
		Weekday:   *req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Classroom: req.Classroom,
	}, true
}

// canManage проверяет право изменять слот: администратор или его владелец
func (h *ScheduleHandler) canManage(c *gin.Context, scheduleID uint) bool {
	var schedule models.Schedule
	if err := database.DB.First(&schedule, scheduleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return false
	}

	isAdmin, _ := c.Get("is_admin")
	if admin, _ := isAdmin.(bool); admin {
		return true
	}

	own, err := currentTeacher(c)
	if err != nil {
		respondError(c, err)
		return false
	}
	if own == nil || own.ID != schedule.TeacherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "У вас нет прав для изменения этого расписания"})
		return false
	}
	return true
}
