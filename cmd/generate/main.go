// Command generate renders the page of the configured problem, reusing the
// page when it already exists.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CTAG07/mensagen/internal/app"
	"github.com/CTAG07/mensagen/pkg/catalog"
	"github.com/CTAG07/mensagen/pkg/config"
	"github.com/CTAG07/mensagen/pkg/generate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("Page generation failed", "error", err)
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

	c, err := catalog.Load(env.Config.Paths.CatalogPath)
	if err != nil {
		return err
	}
	tm, err := env.TemplateManager()
	if err != nil {
		return err
	}

	id := env.Config.Generate.ProblemID
	g := generate.NewGenerator(env.Logger, tm, env.Config.Paths.ImagesDir, false)
	if env.Store != nil {
		g.SetRecorder(env.Store)
		logLastRender(ctx, env, id)
	}

	path, created, err := g.GetOrCreate(ctx, c, id)
	if err != nil {
		return err
	}
	env.Logger.Info("Problem page ready", "problem", id, "path", path, "created", created)
	return nil
}

// logLastRender reports the previous ledger entry for a problem, if any.
func logLastRender(ctx context.Context, env *app.Env, id string) {
	last, ok, err := env.Store.LastRender(ctx, id)
	switch {
	case err != nil:
		env.Logger.Warn("Failed to read render ledger", "problem", id, "error", err)
	case !ok:
		env.Logger.Info("Problem has not been rendered before", "problem", id)
	default:
		env.Logger.Info("Last render",
			"problem", id,
			"status", last.Status,
			"rendered_at", last.RenderedAt,
			"run_id", last.RunID,
			"error", last.Error)
	}
}
