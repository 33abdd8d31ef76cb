package main

import (
	"context"
	"log"

	"github.com/spf13/pflag"

	"github.com/remyvnkhiemtruong/traixuan/app/config"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	pflag.Parse()

	log.Println("Starting database migration...")

	cfg := config.Load(*envFile)
	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully!")
}
