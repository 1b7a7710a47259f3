package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/crimedash/internal/config"
	"github.com/smartcity/crimedash/internal/dataset"
	"github.com/smartcity/crimedash/internal/delivery/http"
	"github.com/smartcity/crimedash/internal/repository/postgres"
	"github.com/smartcity/crimedash/internal/repository/sqlite"
	"github.com/smartcity/crimedash/internal/service"
)

func main() {
	// Configuration
	cfg := config.Load()

	// The dashboard is useless without data
	ds, _, err := dataset.Load(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	// Query log storage
	queryRepo, closeRepo := openRepository(cfg)
	defer closeRepo()

	// Dependency Injection: Services
	dashboardSvc := service.NewDashboardService(ds, queryRepo, cfg.RenderOptions())

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CrimeDash API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, dashboardSvc)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	dashboardSvc.WaitDisplay()
	dashboardSvc.WaitBackground()
	log.Println("Server exited gracefully")
}

// openRepository picks Postgres, then SQLite, then the in-memory store
func openRepository(cfg *config.Config) (service.QueryLogRepository, func()) {
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			if pool != nil {
				pool.Close()
			}
		} else {
			repo := postgres.NewPostgresRepository(pool)
			if err := repo.Migrate(ctx); err != nil {
				log.Printf("Warning: %v", err)
			}
			log.Println("Connected to PostgreSQL")
			return repo, pool.Close
		}
	}

	if cfg.SQLitePath != "" {
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err == nil {
			return repo, func() {
				if err := repo.Close(); err != nil {
					log.Printf("Failed to close query log database: %v", err)
				}
			}
		}
		log.Printf("Warning: %v", err)
	}

	log.Println("Keeping query log in memory only")
	return postgres.NewMockRepository(), func() {}
}
