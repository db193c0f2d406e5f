package main // Entry point package

import (
	"context" // context for the schema bootstrap timeout
	"log"     // Logging library
	"time"    // timeout durations

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/auth-server/internal/config"     // Internal config loader
	"github.com/iliyamo/auth-server/internal/database"   // MySQL connection and schema bootstrap
	"github.com/iliyamo/auth-server/internal/handler"    // HTTP handlers
	"github.com/iliyamo/auth-server/internal/middleware" // rate limiter
	"github.com/iliyamo/auth-server/internal/queue"      // audit event consumer
	"github.com/iliyamo/auth-server/internal/repository" // DB repositories
	"github.com/iliyamo/auth-server/internal/router"     // Internal router setup
	"github.com/iliyamo/auth-server/internal/service"    // auth + user services
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)                        // credential store
	authSvc := service.NewAuthService(users, cfg)              // token lifecycle
	userSvc := service.NewUserService(users, cfg.BcryptCost)   // CRUD contract
	authHandler := handler.NewAuthHandler(authSvc)             // token endpoints
	userHandler := handler.NewUserHandler(userSvc)             // user endpoints

	// Redis-backed limiter for the credential endpoints; nil client means
	// the middleware degrades to a pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Audit trail consumer runs for the lifetime of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.Use(echomw.Logger(), echomw.Recover())
	router.RegisterRoutes(e)                                       // health check
	router.RegisterAuth(e, authHandler, limiter)                   // token endpoints
	router.RegisterUsers(e, userHandler, cfg.AccessTokenSecret)    // user CRUD

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
