package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/yigitcanlotec/OOP-challenge-4/docs" // Swagger docs
	"github.com/yigitcanlotec/OOP-challenge-4/internal/auth"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/awsclient"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/config"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/logging"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/middleware"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/routes"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/sanitize"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/store"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tasks"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/tracing"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// @title Todo API
// @version 1.0
// @description Task list backend with session-token auth, DynamoDB storage and S3 task images

// @host localhost:3000
// @BasePath /api/v1

// @securityDefinitions.basic BasicAuth

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)

	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	tracingShutdown, err := tracing.Init(&cfg.Observability, cfg.Server.Environment, logging.Version(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	clients, err := awsclient.New(initCtx, cfg, logger)
	cancelInit()
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize AWS clients")
	}

	userStore := store.NewDynamoUserStore(clients.DynamoDB, cfg.DynamoDB.UsersTableName, cfg.DynamoDB.SessionIndexName)
	taskStore := store.NewDynamoTaskStore(clients.DynamoDB, cfg.DynamoDB.TasksTableName, cfg.DynamoDB.TasksIndexName)
	imageStore := store.NewS3ImageStore(clients.S3, clients.Presign, cfg.S3.BucketName)

	authService := auth.NewService(userStore, cfg.Admin.DeleteKey, logger)
	taskService := tasks.NewService(taskStore, imageStore, sanitize.New(), cfg.S3.PresignTTL, logger)

	middlewareManager, err := middleware.NewManager(cfg, authService, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize middleware manager")
	}
	defer func() {
		if err := middlewareManager.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close middleware resources")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "Todo API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: routes.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With,Idempotency-Key",
		MaxAge:       86400,
	}))
	app.Use(otelfiber.Middleware())
	app.Use(middlewareManager.ErrorLogger.Handle())

	if cfg.Server.Environment != "production" {
		app.Use(pprof.New())
	}

	routes.Setup(app, cfg, logger, middlewareManager, authService, taskService)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"environment": cfg.Server.Environment,
		"redis":       cfg.Redis.Enabled,
	}).Info("Starting Todo API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
