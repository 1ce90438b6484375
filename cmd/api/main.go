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

	"github.com/noah-isme/marksheet-go-api/internal/config"
	"github.com/noah-isme/marksheet-go-api/internal/database"
	"github.com/noah-isme/marksheet-go-api/internal/handler"
	"github.com/noah-isme/marksheet-go-api/internal/middleware"
	"github.com/noah-isme/marksheet-go-api/internal/models"
	"github.com/noah-isme/marksheet-go-api/internal/repository"
	"github.com/noah-isme/marksheet-go-api/internal/router"
	"github.com/noah-isme/marksheet-go-api/internal/service"
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

	if err := db.AutoMigrate(&models.Student{}, &models.SubjectMark{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	markRepo := repository.NewSubjectMarkRepository(db)

	marksheetService := service.NewMarksheetService(studentRepo, markRepo, validate, redisClient, cfg.MarksheetCacheTTL, cfg.IssuePlace, logger)
	studentService := service.NewStudentService(studentRepo, markRepo, validate, marksheetService, logger)
	importService := service.NewImportService(studentRepo, markRepo, logger)

	studentHandler := handler.NewStudentHandler(studentService, logger)
	importHandler := handler.NewImportHandler(importService, logger)
	marksheetHandler := handler.NewMarksheetHandler(marksheetService, cfg.PassingPercentage, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:   studentHandler,
		ImportHandler:    importHandler,
		MarksheetHandler: marksheetHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

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
