package main

import (
	"context"
	"log"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
