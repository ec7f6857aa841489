package main

import (
	"os"

	"propstack/catalog/cmd/propstack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
