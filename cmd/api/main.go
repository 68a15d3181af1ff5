package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tatweer-edu/visit-plans-api/internal/config"
	"github.com/tatweer-edu/visit-plans-api/internal/database"
	"github.com/tatweer-edu/visit-plans-api/internal/handler"
	"github.com/tatweer-edu/visit-plans-api/internal/middleware"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
	"github.com/tatweer-edu/visit-plans-api/internal/router"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.School{},
		&models.Principal{},
		&models.Supervisor{},
		&models.Assignment{},
		&models.PlanWeek{},
		&models.Plan{},
		&models.PlanDay{},
		&models.UnlockRequest{},
		&models.ImportBatch{},
		&models.RejectedRow{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	supervisorRepo := repository.NewSupervisorRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	weekRepo := repository.NewPlanWeekRepository(db)
	unlockRepo := repository.NewUnlockRequestRepository(db)
	importRepo := repository.NewImportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	eventService := service.NewNotificationService(notificationRepo, natsConn, cfg.EventSubjectBase, logger)
	authService := service.NewAuthService(supervisorRepo, cfg.JWTSecret, cfg.ManagerAccessKey, cfg.TokenTTL, validate, logger)
	planService := service.NewPlanService(planRepo, weekRepo, assignmentRepo, unlockRepo, eventService, validate, logger)
	managerService := service.NewManagerService(planRepo, weekRepo, supervisorRepo, unlockRepo, eventService, redisClient, cfg.DashboardCacheTTL, validate, logger)
	importService := service.NewImportService(importRepo, eventService, logger)
	exportService := service.NewExportService(planRepo, weekRepo, importService, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	planHandler := handler.NewPlanHandler(planService, exportService, logger)
	managerHandler := handler.NewManagerHandler(managerService, importService, exportService, logger)
	feedHandler := handler.NewFeedHandler(eventService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:    authHandler,
		PlanHandler:    planHandler,
		ManagerHandler: managerHandler,
		FeedHandler:    feedHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	runCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()
	eventService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
