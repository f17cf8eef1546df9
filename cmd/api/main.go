package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tobaku-pos/internal/config"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/repository/memory"
	"tobaku-pos/internal/seed"
	"tobaku-pos/internal/server"
	"tobaku-pos/internal/service"
	"tobaku-pos/internal/ws"
	"tobaku-pos/pkg/database"
	"tobaku-pos/pkg/jwt"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Setup Store
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	// 3. Seed default users (and the demo catalog when asked)
	ctx := context.Background()
	if err := seed.Run(ctx, store, seed.Options{
		AdminPassword: cfg.SeedAdminPassword,
		StaffPassword: cfg.SeedStaffPassword,
		DemoProducts:  cfg.SeedDemoData || cfg.StoreDriver == config.DriverMemory,
	}); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	app := server.New(server.Deps{
		Auth:         service.NewAuthService(store.Users(), tokens),
		Users:        service.NewUserService(store.Users()),
		Catalog:      service.NewCatalogService(store, wsHub),
		Stock:        service.NewStockService(store, wsHub),
		Checkout:     service.NewCheckoutService(store, wsHub),
		Reports:      service.NewReportService(store, cfg.Location),
		Hub:          wsHub,
		Location:     cfg.Location,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequestLog:   true,
	})

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	wsHub.Stop()
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Println("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}
