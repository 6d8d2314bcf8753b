package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/brushy-app/brushy_api/seed/seeders"
	"github.com/brushy-app/brushy_api/services"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	var (
		seedType = flag.String("type", "all", "Type of seeding: all, users, history")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		days     = flag.Int("days", 30, "Number of past days of brushing history to generate")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Get database path
	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "brushy.db" // Default database name
		}
	}

	location := time.UTC
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("Invalid APP_TIMEZONE %q: %v", tz, err)
		}
		location = loc
	}

	// Opening through the service also runs the migrations
	database := services.NewSqliteService(databasePath)
	if err := database.Start(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Shutdown()

	log.Printf("Connected to database: %s", databasePath)

	mainSeeder := seeders.NewMainSeeder(database.Db(), location, *days)

	// Run seeding based on type
	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "users":
		log.Println("Seeding users only...")
		if err := mainSeeder.SeedUsersOnly(); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	case "history":
		log.Println("Seeding brushing history only...")
		if err := mainSeeder.SeedHistoryOnly(); err != nil {
			log.Fatalf("Failed to seed history: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'users', or 'history'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func showHelp() {
	log.Println(`
Database Seeding Tool for the Brushy API

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, users, history
  -db string
        Database path (overrides DB_DATABASE environment variable)
  -days int
        Days of brushing history to generate (default 30)
  -help
        Show this help message

Examples:
  # Seed everything
  go run ./seed

  # Seed only the demo accounts
  go run ./seed -type=users

  # Seed a longer history into a custom database
  go run ./seed -db=./demo.db -days=90

Environment Variables:
  DB_DATABASE  - Default database path (default: brushy.db)
  APP_TIMEZONE - Zone the history days are laid out in (default: UTC)

Every seeded account uses the password ` + seeders.DemoPassword + `
`)
}
