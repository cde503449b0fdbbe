package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/khoahotran/jutjub/adapters/api"
	"github.com/khoahotran/jutjub/internal/domain/user"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

// Registers the demo account used for local testing against a fresh API.
func main() {
	fmt.Println("registering demo account...")

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client, err := api.New(api.Options{BaseURL: baseURL, Timeout: 15 * time.Second})
	if err != nil {
		log.Fatalf("cannot create client: %v", err)
	}

	req := user.RegisterRequest{
		Username: os.Getenv("SEED_USERNAME"),
		Email:    os.Getenv("SEED_EMAIL"),
		Password: os.Getenv("SEED_PASSWORD"),
	}
	msg, err := client.Register(context.Background(), req)
	if err != nil {
		log.Fatalf("cannot register '%s': %s", req.Username, apperror.UserMessage(err))
	}

	fmt.Printf("registered '%s': %s\n", req.Username, msg)
}
