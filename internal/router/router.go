package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", handlers.WebSocket)

		api.POST("/form/submit", handlers.SubmitForm)

		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
		api.POST("/password-reset/check", handlers.PasswordResetCheck)
		api.POST("/password-reset/confirm", handlers.PasswordResetConfirm)
		api.GET("/me", middleware.AuthMiddleware(), handlers.Me)

		twofa := api.Group("/2fa", middleware.AuthMiddleware())
		{
			twofa.GET("/setup", handlers.TwoFASetup)
			twofa.POST("/enable", handlers.TwoFAEnable)
			twofa.POST("/disable", handlers.TwoFADisable)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.PUT("/sort", handlers.UpdateProjectSorting)
			projects.GET("/statistics", handlers.GetProjectStatistics)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PUT("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)
			projects.POST("/:project_id/leave", handlers.LeaveProject)
			projects.POST("/:project_id/invites", handlers.CreateInvite)
			projects.GET("/:project_id/invites", handlers.ListProjectInvites)
			projects.GET("/:project_id/todos", handlers.ListTodos)
		}

		invites := api.Group("/invites")
		{
			invites.GET("/:invite_id", handlers.GetInvite)
			invites.POST("/:invite_id/join", middleware.AuthMiddleware(), handlers.JoinInvite)
			invites.PATCH("/:invite_id", middleware.AuthMiddleware(), handlers.UpdateInvite)
			invites.DELETE("/:invite_id", middleware.AuthMiddleware(), handlers.DeleteInvite)
		}

		todos := api.Group("/todos", middleware.AuthMiddleware())
		{
			todos.POST("", handlers.CreateTodo)
			todos.PUT("/:todo_id", handlers.UpdateTodo)
			todos.DELETE("/:todo_id", handlers.DeleteTodo)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("/read-all", handlers.MarkAllNotificationsRead)
			notifications.POST("/:notification_id/read", handlers.MarkNotificationRead)
		}
	}

	return r
}
