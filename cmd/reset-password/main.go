package main

import (
	"context"
	"flag"
	"log"

	"tobaku-pos/internal/config"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/service"
	"tobaku-pos/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("username", "admin", "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if *password == "" {
		log.Fatal("❌ -password is required")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatal("❌ reset-password needs DATABASE_URL or DB_HOST")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// 3. Reset
	users := service.NewUserService(repository.NewUserRepo(db))
	if err := users.ResetPassword(context.Background(), *username, *password); err != nil {
		log.Fatalf("❌ Failed to reset password for %s: %v", *username, err)
	}

	log.Printf("✅ Success! Password for %s has been reset", *username)
}
