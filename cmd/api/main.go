package main

import (
	"log"

	"loyaltystudio-service/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on system env vars")
	}

	srv := app.NewServer()
	if err := srv.Start(); err != nil {
		log.Fatalf("server failed to start: %v", err)
	}
}
