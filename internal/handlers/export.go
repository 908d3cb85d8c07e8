package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gradekeeper/internal/database"
	"gradekeeper/internal/models"
	"gradekeeper/internal/scheduling"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// journalRow строка журнала: студент и его отметки по урокам группы
type journalRow struct {
	Student models.Student
	Cells   []string
}

// journal собирает журнал группы: уроки по датам и отметки студентов.
// Ячейка содержит статус посещения и оценку, если она выставлена.
func (h *ExportHandler) journal(c *gin.Context) (*models.Group, []models.Lesson, []journalRow, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return nil, nil, nil, false
	}

	var group models.Group
	if err := database.DB.First(&group, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return nil, nil, nil, false
	}

	query := database.DB.Preload("Subject").Where("group_id = ?", group.ID)
	if from := c.Query("from"); from != "" {
		date, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Параметр from должен быть в формате YYYY-MM-DD"})
			return nil, nil, nil, false
		}
		query = query.Where("date >= ?", scheduling.DateOnly(date))
	}
	if to := c.Query("to"); to != "" {
		date, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Параметр to должен быть в формате YYYY-MM-DD"})
			return nil, nil, nil, false
		}
		query = query.Where("date <= ?", scheduling.DateOnly(date))
	}

	var lessons []models.Lesson
	if err := query.Order("date, start_time").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lessons"})
		return nil, nil, nil, false
	}

	var students []models.Student
	if err := database.DB.Preload("User").
		Where("group_id = ?", group.ID).
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return nil, nil, nil, false
	}

	lessonIDs := make([]uint, len(lessons))
	for i, lesson := range lessons {
		lessonIDs[i] = lesson.ID
	}

	var records []models.Attendance
	if len(lessonIDs) > 0 {
		if err := database.DB.Where("lesson_id IN ?", lessonIDs).
			Find(&records).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendance"})
			return nil, nil, nil, false
		}
	}

	type key struct{ lesson, student uint }
	byKey := make(map[key]models.Attendance, len(records))
	for _, r := range records {
		byKey[key{r.LessonID, r.StudentID}] = r
	}

	rows := make([]journalRow, 0, len(students))
	for _, student := range students {
		cells := make([]string, len(lessons))
		for i, lesson := range lessons {
			r, ok := byKey[key{lesson.ID, student.ID}]
			if !ok {
				cells[i] = ""
				continue
			}
			cells[i] = cellMark(r)
		}
		rows = append(rows, journalRow{Student: student, Cells: cells})
	}

	return &group, lessons, rows, true
}

// cellMark переводит отметку в текст ячейки журнала
func cellMark(r models.Attendance) string {
	mark := "н"
	if r.Attended {
		mark = "+"
		if r.Late {
			mark = "о"
		}
	}
	if r.Grade != nil {
		mark = fmt.Sprintf("%s/%d", mark, *r.Grade)
	}
	return mark
}

// lessonHeader формирует заголовок колонки урока
func lessonHeader(lesson models.Lesson) string {
	return fmt.Sprintf("%s %s", lesson.Date.Format("02.01"), lesson.Subject.Name)
}

// ExportCSV выгружает журнал группы в CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	group, lessons, rows, ok := h.journal(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("journal_%s.csv", group.Name)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	header := []string{"Студент"}
	for _, lesson := range lessons {
		header = append(header, lessonHeader(lesson))
	}
	w.Write(header)

	for _, row := range rows {
		record := append([]string{row.Student.User.FullName()}, row.Cells...)
		w.Write(record)
	}
	w.Flush()
}

// ExportXLSX выгружает журнал группы в XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	group, lessons, rows, ok := h.journal(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A1", "Студент")
	for i, lesson := range lessons {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheet, cell, lessonHeader(lesson))
	}

	for rowIdx, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		f.SetCellValue(sheet, cell, row.Student.User.FullName())
		for colIdx, mark := range row.Cells {
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			f.SetCellValue(sheet, cell, mark)
		}
	}

	filename := fmt.Sprintf("journal_%s.xlsx", group.Name)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write file"})
	}
}
