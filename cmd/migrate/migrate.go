package main

import (
	"fmt"
	"log"
	"os"

	"blogcast-backend/internal/config"
	"blogcast-backend/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/migrate <command>")
		fmt.Println("Commands:")
		fmt.Println("  up      - Apply all pending schema migrations")
		fmt.Println("  status  - Show the current schema version")
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch command {
	case "up":
		// Open applies pending migrations as part of startup
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		defer st.Close()
		fmt.Println("Migrations applied successfully!")

	case "status":
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer st.Close()

		version, err := st.SchemaVersion()
		if err != nil {
			log.Fatalf("Failed to read schema version: %v", err)
		}
		fmt.Printf("Schema version: %d\n", version)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
