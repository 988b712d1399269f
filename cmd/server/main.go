package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"payflow/internal/cache"
	"payflow/internal/config"
	"payflow/internal/db"
	"payflow/internal/gateway"
	"payflow/internal/handler"
	"payflow/internal/model"
	"payflow/internal/repository"
	"payflow/internal/router"
	"payflow/internal/service"
)

// @title Payflow API
// @version 1.0
// @description User registration/login and gateway payment order lifecycle with signed verification callbacks.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Printf("database close: %v", err)
		}
	}()

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.PaymentLog{},
			&model.Payment{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Payment{},
		&model.PaymentLog{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	paymentLogRepo := repository.NewPaymentLogRepository(gormDB)

	// Initialize gateway boundary
	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewaySecret, cfg.GatewayTimeout)
	verifier := gateway.NewSignatureVerifier(cfg.GatewaySecret)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	paymentService := service.NewPaymentService(paymentRepo, paymentLogRepo, gatewayClient, verifier, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Register routes
	router.Register(e, authHandler, paymentHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
