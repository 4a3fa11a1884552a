package main

import (
	"github.com/joho/godotenv"

	"finrag/internal/cli"
)

func main() {
	// API keys commonly live in a local .env during development; a missing
	// file is fine.
	_ = godotenv.Load()

	cli.Execute()
}
