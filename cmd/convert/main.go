// Command convert builds the problem catalog from the extracted question file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CTAG07/mensagen/internal/app"
	"github.com/CTAG07/mensagen/pkg/catalog"
	"github.com/CTAG07/mensagen/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("Conversion failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	env, err := app.Open(config.DefaultPath)
	if err != nil {
		return err
	}
	defer env.Close()
	paths := env.Config.Paths

	questions, err := catalog.ReadSource(paths.SourcePath)
	if err != nil {
		return err
	}
	env.Logger.Info("Read source questions", "path", paths.SourcePath, "count", len(questions))

	prev, err := catalog.LoadIfExists(paths.CatalogPath)
	if err != nil {
		return err
	}

	c, err := catalog.Build(prev, questions)
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}
	if err = catalog.Save(paths.CatalogPath, c); err != nil {
		return err
	}
	env.Logger.Info("Catalog written", "path", paths.CatalogPath, "problems", c.TotalCount, "generation_id", c.GenerationID)

	if env.Store != nil {
		if err = env.Store.SyncCatalog(ctx, c); err != nil {
			return fmt.Errorf("failed to sync catalog store: %w", err)
		}
		n, err := env.Store.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count stored problems: %w", err)
		}
		if n != c.TotalCount {
			return fmt.Errorf("catalog store holds %d problems, catalog has %d", n, c.TotalCount)
		}
	}
	return nil
}
