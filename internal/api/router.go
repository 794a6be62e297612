package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/crewboard/crewboard-api/docs"
	"github.com/crewboard/crewboard-api/internal/api/handler"
	"github.com/crewboard/crewboard-api/internal/api/middleware"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
	"github.com/crewboard/crewboard-api/internal/core/service"
	mongorepo "github.com/crewboard/crewboard-api/internal/infrastructure/db/mongo"
	"github.com/crewboard/crewboard-api/internal/realtime"
)

// RouterConfig bundles what the route table needs beyond its stores.
type RouterConfig struct {
	JWTSecret string
	JWTTTL    time.Duration
	Files     ports.FileStore
	Hub       *realtime.Hub
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("crewboard"))

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(db)
	projectRepo := mongorepo.NewProjectRepository(db)
	taskRepo := mongorepo.NewTaskRepository(db)
	commentRepo := mongorepo.NewCommentRepository(db)
	notificationRepo := mongorepo.NewNotificationRepository(db)

	// --- Services ---
	notificationService := service.NewNotificationService(notificationRepo, cfg.Hub, cfg.Logger)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	projectService := service.NewProjectService(projectRepo, taskRepo, commentRepo, userRepo, notificationService, cfg.Hub, cfg.Files, cfg.Logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, commentRepo, userRepo, notificationService, cfg.Hub, cfg.Files, cfg.Logger)
	userService := service.NewUserService(userRepo, projectRepo, taskRepo, cfg.Logger)
	adminService := service.NewAdminService(userRepo, projectRepo, taskRepo, cfg.Logger)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService, cfg.Files)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)
	eventsHandler := handler.NewEventsHandler(cfg.Hub, projectService)

	// --- Health probes and ops (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(db, rdb).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth routes (public) ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	// --- Authenticated routes ---
	auth := v1.Group("", middleware.Auth(cfg.JWTSecret))

	auth.GET("/projects", projectHandler.List)
	auth.POST("/projects", projectHandler.Create)
	auth.GET("/projects/:id", projectHandler.Get)
	auth.PATCH("/projects/:id", projectHandler.Update)
	auth.DELETE("/projects/:id", projectHandler.Delete)
	auth.POST("/projects/:id/invite", projectHandler.Invite)
	auth.DELETE("/projects/:id/members/:userId", projectHandler.RemoveMember)
	auth.GET("/projects/:id/comments", projectHandler.ListComments)
	auth.POST("/projects/:id/comments", projectHandler.AddComment)

	auth.GET("/tasks", taskHandler.List)
	auth.POST("/tasks", taskHandler.Create)
	auth.GET("/tasks/:id", taskHandler.Get)
	auth.PATCH("/tasks/:id", taskHandler.Update)
	auth.DELETE("/tasks/:id", taskHandler.Delete)
	auth.GET("/tasks/:id/comments", taskHandler.ListComments)
	auth.POST("/tasks/:id/comments", taskHandler.AddComment)
	auth.POST("/tasks/:id/attachments", taskHandler.AddAttachment)
	auth.DELETE("/tasks/:id/attachments/:attachmentId", taskHandler.RemoveAttachment)
	auth.GET("/uploads/:filename", taskHandler.ServeUpload)

	auth.GET("/notifications", notificationHandler.List)
	auth.POST("/notifications/:id/read", notificationHandler.MarkRead)
	auth.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	auth.GET("/notifications/unread-count", notificationHandler.UnreadCount)

	auth.GET("/users", userHandler.List)
	auth.GET("/users/:id/stats", userHandler.Stats)

	auth.GET("/events/stream", eventsHandler.Stream)

	// --- Admin routes (system owner/admin only) ---
	admin := auth.Group("", middleware.RBAC(domain.RoleOwner, domain.RoleAdmin))
	admin.GET("/admins", adminHandler.List)
	admin.DELETE("/admins/:id", adminHandler.Delete)
	admin.GET("/admins/:id/projects", adminHandler.Projects)
	admin.GET("/admin/stats", adminHandler.Stats)

	return e
}
