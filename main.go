package main

import (
	"github.com/joho/godotenv"

	"fuel-price-tracker/internal/cli"
)

func main() {
	// Optional .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cli.Execute()
}
