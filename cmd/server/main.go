package main

import (
	"log"

	"gradekeeper/internal/config"
	"gradekeeper/internal/database"
	"gradekeeper/internal/handlers"
	"gradekeeper/internal/middleware"
	"gradekeeper/internal/roles"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	router := setupRouter(cfg)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	router.Static("/uploads/profile_images", cfg.Upload.Dir)

	authHandler := handlers.NewAuthHandler(cfg)
	userHandler := handlers.NewUserHandler()
	groupHandler := handlers.NewGroupHandler()
	subjectHandler := handlers.NewSubjectHandler()
	teacherHandler := handlers.NewTeacherHandler()
	parentHandler := handlers.NewParentHandler()
	scheduleHandler := handlers.NewScheduleHandler()
	lessonHandler := handlers.NewLessonHandler()
	attendanceHandler := handlers.NewAttendanceHandler()
	dashboardHandler := handlers.NewDashboardHandler()
	profileHandler := handlers.NewProfileHandler(cfg)
	exportHandler := handlers.NewExportHandler()

	api := router.Group("/api")

	// Публичные маршруты
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/check", authHandler.Check)
	}

	// Маршруты, требующие авторизации
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/dashboard", dashboardHandler.Dashboard)

		protected.POST("/profile/image", profileHandler.UploadImage)
		protected.DELETE("/profile/image", profileHandler.DeleteImage)

		// Расписание
		schedule := protected.Group("/schedule")
		{
			schedule.GET("", scheduleHandler.WeeklySchedule)
			schedule.GET("/:id", scheduleHandler.GetSchedule)
			schedule.POST("", middleware.RequireRole(roles.RoleTeacher), scheduleHandler.CreateSchedule)
			schedule.PUT("/:id", middleware.RequireRole(roles.RoleTeacher), scheduleHandler.UpdateSchedule)
			schedule.DELETE("/:id", middleware.RequireRole(roles.RoleTeacher), scheduleHandler.DeleteSchedule)
		}

		// Уроки
		lessons := protected.Group("/lessons")
		{
			lessons.GET("", lessonHandler.ListLessons)
			lessons.GET("/:id", lessonHandler.GetLesson)
			lessons.GET("/:id/attendance", attendanceHandler.LessonAttendance)
			lessons.POST("/from-schedule", middleware.RequireRole(roles.RoleTeacher), lessonHandler.CreateFromSchedule)
			lessons.POST("", middleware.RequireRole(roles.RoleTeacher), lessonHandler.CreateManual)
			lessons.DELETE("/:id", middleware.RequireAdmin(), lessonHandler.DeleteLesson)
		}

		// Посещаемость
		attendance := protected.Group("/attendance")
		{
			attendance.PUT("/:id", middleware.RequireRole(roles.RoleTeacher), attendanceHandler.UpdateAttendance)
			attendance.POST("/reconcile", middleware.RequireAdmin(), attendanceHandler.Reconcile)
			attendance.GET("/missing", middleware.RequireAdmin(), attendanceHandler.Missing)
		}

		// Студенты
		students := protected.Group("/students")
		{
			students.GET("/:id/attendance", attendanceHandler.StudentAttendance)
			students.POST("/:id/attendance", middleware.RequireRole(roles.RoleTeacher), attendanceHandler.RecordForStudent)
			students.PUT("/:id/group", middleware.RequireAdmin(), groupHandler.MoveStudent)
		}

		// Группы
		groups := protected.Group("/groups")
		{
			groups.GET("", groupHandler.ListGroups)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.POST("", middleware.RequireAdmin(), groupHandler.CreateGroup)
			groups.PUT("/:id", middleware.RequireAdmin(), groupHandler.UpdateGroup)
			groups.DELETE("/:id", middleware.RequireAdmin(), groupHandler.DeleteGroup)
			groups.GET("/:id/export/csv", middleware.RequireRole(roles.RoleTeacher), exportHandler.ExportCSV)
			groups.GET("/:id/export/xlsx", middleware.RequireRole(roles.RoleTeacher), exportHandler.ExportXLSX)
		}

		// Предметы
		subjects := protected.Group("/subjects")
		{
			subjects.GET("", subjectHandler.ListSubjects)
			subjects.GET("/:id", subjectHandler.GetSubject)
			subjects.POST("", middleware.RequireAdmin(), subjectHandler.CreateSubject)
			subjects.PUT("/:id", middleware.RequireAdmin(), subjectHandler.UpdateSubject)
			subjects.DELETE("/:id", middleware.RequireAdmin(), subjectHandler.DeleteSubject)
		}

		// Преподаватели
		teachers := protected.Group("/teachers")
		{
			teachers.GET("", teacherHandler.ListTeachers)
			teachers.GET("/:id", teacherHandler.GetTeacher)
			teachers.POST("/:id/subjects", middleware.RequireAdmin(), teacherHandler.AssignSubjects)
			teachers.DELETE("/:id/subjects/:subject_id", middleware.RequireAdmin(), teacherHandler.RemoveSubject)
			teachers.POST("/:id/groups", middleware.RequireAdmin(), teacherHandler.AssignGroups)
			teachers.DELETE("/:id/groups/:group_id", middleware.RequireAdmin(), teacherHandler.RemoveGroup)
			teachers.PUT("/:id/main-group", middleware.RequireAdmin(), teacherHandler.SetMainGroup)
		}

		// Родители
		parents := protected.Group("/parents")
		{
			parents.GET("/me/children", parentHandler.MyChildren)
			parents.GET("/:id/children", middleware.RequireAdmin(), parentHandler.GetChildren)
			parents.POST("/:id/children", middleware.RequireAdmin(), parentHandler.LinkChild)
			parents.DELETE("/:id/children/:student_id", middleware.RequireAdmin(), parentHandler.UnlinkChild)
		}

		// Управление пользователями
		users := protected.Group("/users", middleware.RequireAdmin())
		{
			users.POST("", userHandler.Register)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.PUT("/:id/password", userHandler.ChangePassword)
			users.POST("/:id/roles", userHandler.AssignRole)
			users.DELETE("/:id/roles/:name", userHandler.RemoveRole)
		}
	}

	return router
}
