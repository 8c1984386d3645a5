package main

import (
	"fmt"
	"os"

	"github.com/ayo6706/bankcards/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bankcards: %v\n", err)
		os.Exit(1)
	}
}
