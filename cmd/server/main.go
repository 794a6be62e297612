package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewboard/crewboard-api/internal/api"
	"github.com/crewboard/crewboard-api/internal/core/service"
	"github.com/crewboard/crewboard-api/internal/infrastructure/config"
	mongorepo "github.com/crewboard/crewboard-api/internal/infrastructure/db/mongo"
	redisdb "github.com/crewboard/crewboard-api/internal/infrastructure/db/redis"
	"github.com/crewboard/crewboard-api/internal/infrastructure/queue"
	"github.com/crewboard/crewboard-api/internal/infrastructure/storage"
	"github.com/crewboard/crewboard-api/internal/realtime"
	"github.com/crewboard/crewboard-api/pkg/logger"
)

// @title        Crewboard API
// @version      1.0
// @description  Collaborative project and task management API with live updates.
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "crewboard-api",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload dir initialization failed")
	}

	hub := realtime.NewHub(log)

	// Reminder pipeline: periodic sweep into a sharded worker pool.
	taskRepo := mongorepo.NewTaskRepository(db)
	projectRepo := mongorepo.NewProjectRepository(db)
	notificationRepo := mongorepo.NewNotificationRepository(db)
	notifier := service.NewNotificationService(notificationRepo, hub, log)
	reminders := service.NewReminderService(taskRepo, projectRepo, redisdb.NewReminderGuard(rdb), notifier, log)
	dispatcher := queue.NewDispatcher(cfg.ReminderWorkers, reminders, log)
	dispatcher.Start(ctx)
	go reminders.Run(ctx, cfg.ReminderInterval, dispatcher)

	e := api.NewRouter(db, rdb, api.RouterConfig{
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Files:     files,
		Hub:       hub,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
