package handlers

import (
	"net/http"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/roles"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard возвращает сводку в зависимости от роли вызывающего
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	viewer, err := currentViewer(c)
	if err != nil {
		respondError(c, err)
		return
	}

	switch viewer.Kind {
	case roles.ViewerAdmin:
		h.adminDashboard(c)
	case roles.ViewerStudent:
		h.studentDashboard(c, viewer)
	case roles.ViewerTeacher:
		h.teacherDashboard(c, viewer)
	case roles.ViewerParent:
		h.parentDashboard(c, viewer)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "No profile assigned"})
	}
}

// adminDashboard общие счетчики по системе
func (h *DashboardHandler) adminDashboard(c *gin.Context) {
	var users, students, teachers, parents, groups, subjects, lessons, schedules int64
	database.DB.Model(&models.User{}).Count(&users)
	database.DB.Model(&models.Student{}).Count(&students)
	database.DB.Model(&models.Teacher{}).Count(&teachers)
	database.DB.Model(&models.Parent{}).Count(&parents)
	database.DB.Model(&models.Group{}).Count(&groups)
	database.DB.Model(&models.Subject{}).Count(&subjects)
	database.DB.Model(&models.Lesson{}).Count(&lessons)
	database.DB.Model(&models.Schedule{}).Where("is_active = ?", true).Count(&schedules)

	c.JSON(http.StatusOK, gin.H{
		"role": roles.ViewerAdmin,
		"counts": gin.H{
			"users":     users,
			"students":  students,
			"teachers":  teachers,
			"parents":   parents,
			"groups":    groups,
			"subjects":  subjects,
			"lessons":   lessons,
			"schedules": schedules,
		},
	})
}

// studentDashboard статистика посещаемости и оценок студента
func (h *DashboardHandler) studentDashboard(c *gin.Context, viewer *roles.Viewer) {
	summary, err := h.studentSummary(viewer.Student)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":    roles.ViewerStudent,
		"student": viewer.Student,
		"summary": summary,
	})
}

// teacherDashboard группы преподавателя со студентами
func (h *DashboardHandler) teacherDashboard(c *gin.Context, viewer *roles.Viewer) {
	groups := roles.TeacherGroups(viewer.Teacher)

	type groupEntry struct {
		Group    models.Group     `json:"group"`
		Students []models.Student `json:"students"`
	}
	entries := make([]groupEntry, 0, len(groups))
	for _, group := range groups {
		var students []models.Student
		if err := database.DB.Preload("User").
			Where("group_id = ?", group.ID).
			Find(&students).Error; err != nil {
			respondError(c, err)
			return
		}
		entries = append(entries, groupEntry{Group: group, Students: students})
	}

	var lessons int64
	database.DB.Model(&models.Lesson{}).Where("teacher_id = ?", viewer.Teacher.ID).Count(&lessons)

	c.JSON(http.StatusOK, gin.H{
		"role":     roles.ViewerTeacher,
		"teacher":  viewer.Teacher,
		"groups":   entries,
		"lessons":  lessons,
		"subjects": viewer.Teacher.Subjects,
	})
}

// parentDashboard сводка по каждому ребенку родителя
func (h *DashboardHandler) parentDashboard(c *gin.Context, viewer *roles.Viewer) {
	type childEntry struct {
		Student models.Student `json:"student"`
		Summary gin.H          `json:"summary"`
	}
	children := make([]childEntry, 0, len(viewer.Parent.Children))
	for i := range viewer.Parent.Children {
		child := viewer.Parent.Children[i]
		summary, err := h.studentSummary(&child)
		if err != nil {
			respondError(c, err)
			return
		}
		children = append(children, childEntry{Student: child, Summary: summary})
	}

	c.JSON(http.StatusOK, gin.H{
		"role":     roles.ViewerParent,
		"parent":   viewer.Parent,
		"children": children,
	})
}

// studentSummary собирает статистику студента: общая посещаемость
// и разбивка оценок по предметам
func (h *DashboardHandler) studentSummary(student *models.Student) (gin.H, error) {
	var records []models.Attendance
	if err := database.DB.Preload("Lesson.Subject").
		Where("student_id = ?", student.ID).
		Find(&records).Error; err != nil {
		return nil, err
	}

	type subjectStats struct {
		Subject      string  `json:"subject"`
		Grades       int     `json:"grades"`
		AverageGrade float64 `json:"average_grade"`
	}
	sums := make(map[uint]*subjectStats)
	counts := make(map[uint]int)
	for _, r := range records {
		if r.Grade == nil {
			continue
		}
		s, ok := sums[r.Lesson.SubjectID]
		if !ok {
			s = &subjectStats{Subject: r.Lesson.Subject.Name}
			sums[r.Lesson.SubjectID] = s
		}
		s.Grades++
		counts[r.Lesson.SubjectID] += *r.Grade
	}
	bySubject := make([]subjectStats, 0, len(sums))
	for id, s := range sums {
		s.AverageGrade = float64(counts[id]) / float64(s.Grades)
		bySubject = append(bySubject, *s)
	}

	return gin.H{
		"attendance": attendanceStats(records),
		"by_subject": bySubject,
	}, nil
}
