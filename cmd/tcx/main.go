// Package main is the entry point for the tcx CLI tool.
package main

import (
	"github.com/joho/godotenv"

	"github.com/calgarytospace/tcx/internal/cmd"
)

func main() {
	// Ground-station deployments keep listen addresses and repo overrides
	// in a local .env file.
	_ = godotenv.Load()

	cmd.Execute()
}
