package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/idumahg/NearEarthObjects/internal/cli"
)

func main() {
	// Cancel on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(afero.NewOsFs(), os.Stdout, os.Stderr)
	if err := root.Execute(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
