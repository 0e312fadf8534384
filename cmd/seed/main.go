package main

import (
	"context"
	"fmt"
	"os"

	"github.com/eleven-am/pose-coach/internal/apikey"
	"github.com/eleven-am/pose-coach/internal/bootstrap"
	"github.com/eleven-am/pose-coach/internal/exercise"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := bootstrap.OpenDatabase(cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	exercises := exercise.NewStore(db)
	keys := apikey.NewStore(db)
	if err := exercises.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate exercises: %v\n", err)
		os.Exit(1)
	}
	if err := keys.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate API keys: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	for _, ex := range exercise.DefaultCatalog(cfg.VideoDir) {
		if err := exercises.Upsert(ctx, ex); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed %s: %v\n", ex.Slug, err)
			os.Exit(1)
		}
		fmt.Printf("Seeded exercise %-24s %s\n", ex.Slug, ex.ReferenceVideo)
	}

	secret, err := keys.Create(ctx, &apikey.APIKey{
		Name: "Admin API Key",
		Role: apikey.RoleAdmin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("")
	fmt.Println("Admin API key created successfully!")
	fmt.Printf("API Key: %s\n", secret)
	fmt.Println("")
	fmt.Println("Use this key in the Authorization header:")
	fmt.Printf("  Authorization: Bearer %s\n", secret)
}
