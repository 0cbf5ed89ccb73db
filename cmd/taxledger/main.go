package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/freightbooks/taxledger/internal/commands"
)

func main() {
	// A .env file is optional; variables already set win.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
