// Command main writes the starter workout catalog into the configured store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"liftlog/internal/config"
	"liftlog/internal/models"
	"liftlog/internal/seed"
	"liftlog/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "YAML catalog to load instead of the built-in starter set")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("🌱 Catalog Seeder")
	log.Println("=================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	templates, err := load(*file)
	if err != nil {
		log.Fatalf("❌ Reading catalog failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := server.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Printf("Store close error: %v", err)
		}
	}()

	if err := stores.Templates.Seed(ctx, templates); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("✨ Wrote %d workout templates to the %s store.", len(templates), cfg.StoreBackend)
}

func load(path string) ([]models.WorkoutTemplate, error) {
	if path == "" {
		return seed.Starter()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}
