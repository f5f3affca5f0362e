package main

import (
	"context"
	"os"

	"tasklist/internal/commands"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
