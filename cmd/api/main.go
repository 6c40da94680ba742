package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"careerpilot/backend/internal/app"
	"careerpilot/backend/internal/config"
	"careerpilot/backend/internal/handlers"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pilot, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize CareerPilot: %v", err)
	}

	// Start recovery worker
	pilot.Worker.Start(ctx)

	jobHandler := handlers.NewJobHandler(pilot.Jobs)
	analysisHandler := handlers.NewAnalysisHandler(pilot.Pipeline)
	profileHandler := handlers.NewProfileHandler(pilot.Profiles, pilot.Storage)
	log.Println("✅ Handlers initialized")

	server := handlers.NewApp(fiber.Config{
		AppName:      "CareerPilot API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.RequestBudget(),
		BodyLimit:    int(cfg.Upload.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	server.Use(recover.New())
	server.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	origins := strings.Join(cfg.CORS.AllowOrigins, ",")
	server.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*", // fiber rejects credentials with a wildcard origin
	}))

	handlers.Register(server, jobHandler, analysisHandler, profileHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		pilot.Worker.Stop()
		cancel()
		if err := server.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := server.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
