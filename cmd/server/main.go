package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/soundcollective/collective-api/internal/config"
	"github.com/soundcollective/collective-api/internal/constants"
	"github.com/soundcollective/collective-api/internal/database"
	"github.com/soundcollective/collective-api/internal/handlers"
	"github.com/soundcollective/collective-api/internal/jobs"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/repository"
	"github.com/soundcollective/collective-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Cookie sessions carry the calendar OAuth state and tokens
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	db := database.GetDB()
	projectRepo := repository.NewProjectRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	spotlightRepo := repository.NewSpotlightRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Optional integrations
	var calendarService *services.CalendarService
	if cfg.CalendarClientID != "" {
		calendarService = services.NewCalendarService(cfg.CalendarClientID, cfg.CalendarClientSecret, cfg.CalendarRedirectURL)
	}
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)

	// Services
	projectService := services.NewProjectService(projectRepo, userRepo, mailer)
	communityService := services.NewCommunityService(communityRepo, engagementRepo, userRepo, calendarService)
	engagementService := services.NewEngagementService(engagementRepo, communityRepo, spotlightRepo)
	spotlightService := services.NewSpotlightService(spotlightRepo)

	// Maintenance jobs
	manager := jobs.NewManager(db, mailer)
	if err := manager.Start(); err != nil {
		log.Fatalf("Failed to start maintenance jobs: %v", err)
	}
	defer manager.Stop()

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(projectService)
	resourceHandler := handlers.NewResourceHandler(projectService)
	eventHandler := handlers.NewEventHandler(communityService, calendarService)
	pollHandler := handlers.NewPollHandler(communityService)
	feedHandler := handlers.NewFeedHandler(communityService)
	spotlightHandler := handlers.NewSpotlightHandler(spotlightService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	userHandler := handlers.NewUserHandler(userRepo)
	maintenanceHandler := handlers.NewMaintenanceHandler(manager)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Collective API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireAuth(cfg.IdentitySecret, userRepo))
	{
		// Projects
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.POST("/draft", projectHandler.SaveDraft)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.GetProject)
			projects.PATCH("/:id", middleware.RequireProjectAccess(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireProjectAccess(), middleware.RequireProjectAdmin(), projectHandler.DeleteProject)
			projects.GET("/:id/activities", middleware.RequireProjectAccess(), projectHandler.ListActivities)
			projects.POST("/:id/activities", middleware.RequireProjectAccess(), projectHandler.LogActivity)
			projects.POST("/:id/tasks", middleware.RequireProjectAccess(), projectHandler.CreateTask)
			projects.POST("/:id/resources", middleware.RequireProjectAccess(), resourceHandler.CreateResource)
			projects.GET("/:id/members", middleware.RequireProjectAccess(), projectHandler.ListMembers)
			projects.POST("/:id/members", middleware.RequireProjectAccess(), middleware.RequireProjectAdmin(), projectHandler.InviteMember)
			projects.PATCH("/:id/members/:userId", middleware.RequireProjectAccess(), middleware.RequireProjectAdmin(), projectHandler.UpdateMemberRole)
			projects.DELETE("/:id/members/:userId", middleware.RequireProjectAccess(), middleware.RequireProjectAdmin(), projectHandler.RemoveMember)
			projects.GET("/:id/chat", middleware.RequireProjectAccess(), projectHandler.ListChatMessages)
			projects.POST("/:id/chat", middleware.RequireProjectAccess(), projectHandler.PostChatMessage)
		}

		// Tasks
		tasks := api.Group("/tasks")
		{
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.PUT("/:id/status", middleware.RequireTaskAccess(), taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/assignees", middleware.RequireTaskAccess(), taskHandler.SetAssignees)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
		}

		// Resources
		resources := api.Group("/resources")
		{
			resources.GET("", resourceHandler.ListResources)
			resources.DELETE("/:id", resourceHandler.DeleteResource)
		}

		// Community events
		events := api.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.POST("", eventHandler.CreateEvent)
			events.GET("/upcoming", eventHandler.UpcomingEvents)
			events.PATCH("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
			events.PUT("/:id/rsvp", eventHandler.RSVP)
		}

		// Polls
		polls := api.Group("/polls")
		{
			polls.POST("", pollHandler.CreatePoll)
			polls.GET("/count", pollHandler.CountPolls)
			polls.POST("/:id/vote", pollHandler.Vote)
			polls.DELETE("/:id", pollHandler.DeletePoll)
		}

		// Merged community feed
		api.GET("/feed", feedHandler.GetFeed)

		// Spotlights
		spotlights := api.Group("/spotlights")
		{
			spotlights.POST("", spotlightHandler.CreateSpotlight)
			spotlights.GET("/current", spotlightHandler.GetCurrent)
			spotlights.GET("/previous", spotlightHandler.GetPrevious)
			spotlights.GET("/:id", spotlightHandler.GetSpotlight)
		}

		// Likes and comments
		api.POST("/likes", engagementHandler.ToggleLike)
		api.GET("/likes/status", engagementHandler.LikeStatus)
		api.POST("/comments", engagementHandler.CreateComment)
		api.GET("/comments", engagementHandler.ListComments)
		api.GET("/comments/count", engagementHandler.CountComments)

		// Users and notifications
		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/count", userHandler.CountUsers)
			users.GET("/me", userHandler.Me)
		}
		notifications := api.Group("/notifications")
		{
			notifications.GET("", userHandler.ListNotifications)
			notifications.PUT("/:id/read", userHandler.MarkNotificationRead)
			notifications.PUT("/read-all", userHandler.MarkAllNotificationsRead)
		}

		// Calendar OAuth (only when a client is configured)
		if calendarService != nil {
			calendarHandler := handlers.NewCalendarHandler(calendarService)
			calendar := api.Group("/calendar")
			{
				calendar.GET("/auth-url", calendarHandler.AuthURL)
				calendar.GET("/callback", calendarHandler.Callback)
				calendar.GET("/status", calendarHandler.Status)
				calendar.POST("/revoke", calendarHandler.Revoke)
			}
		}
	}

	// Maintenance trigger, guarded by the shared secret instead of user auth
	r.POST("/internal/maintenance/:job", middleware.RequireCronSecret(cfg.CronSecret), maintenanceHandler.RunJob)

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
