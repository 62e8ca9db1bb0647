// Command generate-all renders a page for every problem in the catalog, or
// for the subset selected by the configured filter.
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
	"github.com/CTAG07/mensagen/pkg/problem"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.New(slog.NewTextHandler(os.Stdout, nil)).Error("Bulk generation failed", "error", err)
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
	genCfg := env.Config.Generate

	c, err := catalog.Load(env.Config.Paths.CatalogPath)
	if err != nil {
		return err
	}
	problems, err := selectProblems(ctx, env, c, genCfg.Filter)
	if err != nil {
		return err
	}

	tm, err := env.TemplateManager()
	if err != nil {
		return err
	}
	g := generate.NewGenerator(env.Logger, tm, env.Config.Paths.ImagesDir, genCfg.ContinueOnError)
	if env.Store != nil {
		g.SetRecorder(env.Store)
	}

	env.Logger.Info("Generating pages", "count", len(problems), "run_id", g.RunID())
	summary, err := g.GenerateAll(ctx, problems)
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 {
		env.Logger.Warn("Some pages could not be generated", "failed", summary.Failed)
	}
	return nil
}

// selectProblems applies the filter through the store when one is
// configured, keeping it in step with the catalog file first.
func selectProblems(ctx context.Context, env *app.Env, c *problem.Catalog, f catalog.Filter) ([]problem.ProblemRecord, error) {
	if f.IsZero() {
		return c.Problems, nil
	}
	if env.Store == nil {
		return f.Apply(c.Problems), nil
	}
	if err := env.Store.SyncCatalog(ctx, c); err != nil {
		return nil, err
	}
	return env.Store.Query(ctx, f)
}
