// The entrypoint for the mizu CLI.
package main

import (
	"log"

	"mizu/cmd/mizu/commands"
)

// Initialises and executes the command hierarchy.
func main() {
	if err := commands.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
