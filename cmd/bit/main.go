// Package main provides the entry point for the bit workspace CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/devopsascode/bit/cmd/bit/commands"
)

func main() {
	// optional .env next to the invocation; absence is fine
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
