package main

import (
	"os"

	"github.com/fondo-app/fondo/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
