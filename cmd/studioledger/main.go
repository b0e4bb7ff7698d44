package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/studioledger/internal/app"
	"github.com/andy/studioledger/internal/cli"
	"github.com/andy/studioledger/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// If the user asked for help, avoid initializing the full app (which may prompt)
	for _, a := range os.Args[1:] {
		if a == "-h" || a == "--help" || a == "help" || a == "completion" {
			logger.Disable()
			return cli.Execute()
		}
	}

	a, err := app.New(context.Background())
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer a.Close()

	cli.SetApp(a)
	return cli.Execute()
}
