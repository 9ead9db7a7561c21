package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"filevault/config"
	"filevault/pkg/database"
)

const usage = `
filevault - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all migrations (GORM + SQL)
  status      Show database connection status
  seed        Seed the database with development users

Flags:
  -migrations string   Path to migrations directory (default "migrations")
  -users int           Number of users to seed (default 3)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed -users 5
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")
	userCount := flag.Int("users", 3, "Number of users to seed")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	switch flag.Arg(0) {
	case "up":
		log.Println("Running migrations...")
		if err := database.Migrate(db, *migrationsDir); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "status":
		if err := database.Ping(db); err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		log.Println("Database connection: OK")
	case "seed":
		seedCfg := database.DefaultSeedConfig()
		seedCfg.UserCount = *userCount
		users, err := database.Seed(db, seedCfg)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Seeded %d users", len(users))
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
