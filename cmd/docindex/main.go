// Command docindex stages PDF documents, builds a vector index from them and
// publishes the index to S3.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medgenius/docindex/internal/adapters/driving/cli"
	"github.com/medgenius/docindex/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.Configure(loadSettings, buildPipeline)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
