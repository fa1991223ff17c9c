package main

import (
	"os"

	"github.com/abhisek/a2companion/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
