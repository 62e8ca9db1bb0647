package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CTAG07/mensagen/pkg/catalog"
	"github.com/CTAG07/mensagen/pkg/problem"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// ErrInvalidImageFile is returned for records whose page name is empty or
// points outside the images directory.
var ErrInvalidImageFile = errors.New("invalid image file")

// Renderer writes the page for one record.
type Renderer interface {
	Render(w io.Writer, p problem.ProblemRecord) error
}

// Recorder receives the outcome of every page the generator handles.
type Recorder interface {
	RecordRender(ctx context.Context, r catalog.RenderResult) error
}

// Summary reports the outcome of a bulk run.
type Summary struct {
	RunID     string
	Total     int
	Generated int
	// Failed lists the ids of problems that could not be rendered.
	Failed []string
}

// Generator renders catalog records into one HTML file each.
type Generator struct {
	logger          *slog.Logger
	renderer        Renderer
	recorder        Recorder
	imagesDir       string
	continueOnError bool
	runID           string
}

// NewGenerator creates a Generator writing pages into imagesDir. When
// continueOnError is set, GenerateAll logs a failed problem and moves on;
// otherwise the first failure ends the run.
func NewGenerator(logger *slog.Logger, renderer Renderer, imagesDir string, continueOnError bool) *Generator {
	return &Generator{
		logger:          logger,
		renderer:        renderer,
		imagesDir:       imagesDir,
		continueOnError: continueOnError,
		runID:           uuid.NewString(),
	}
}

// SetRecorder registers a ledger for render results. A nil recorder disables recording.
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// RunID identifies the results recorded by this generator.
func (g *Generator) RunID() string {
	return g.runID
}

// PagePath returns where the page for p is written.
func (g *Generator) PagePath(p problem.ProblemRecord) (string, error) {
	name := p.ImageFile
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("problem %s: %w: %q", p.ID, ErrInvalidImageFile, name)
	}
	return filepath.Join(g.imagesDir, name), nil
}

// Generate renders p and writes its page, replacing any existing file.
func (g *Generator) Generate(ctx context.Context, p problem.ProblemRecord) (string, error) {
	path, err := g.generate(p)
	if err != nil {
		g.record(ctx, p, catalog.StatusFailed, err)
		return "", err
	}
	g.record(ctx, p, catalog.StatusGenerated, nil)
	g.logger.Debug("Generated page", "problem", p.ID, "path", path)
	return path, nil
}

func (g *Generator) generate(p problem.ProblemRecord) (string, error) {
	path, err := g.PagePath(p)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err = g.renderer.Render(&buf, p); err != nil {
		return "", err
	}

	if err = os.MkdirAll(g.imagesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	if err = atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("problem %s: failed to write page: %w", p.ID, err)
	}
	return path, nil
}

// GetOrCreate returns the page of the catalog record with the given id,
// rendering it only when the file does not exist yet. created reports
// whether a new page was written.
func (g *Generator) GetOrCreate(ctx context.Context, c *problem.Catalog, id string) (path string, created bool, err error) {
	p, err := catalog.Lookup(c, id)
	if err != nil {
		return "", false, err
	}
	path, err = g.PagePath(p)
	if err != nil {
		return "", false, err
	}

	if _, err = os.Stat(path); err == nil {
		g.logger.Info("Page already exists", "problem", p.ID, "path", path)
		g.record(ctx, p, catalog.StatusExisting, nil)
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	path, err = g.Generate(ctx, p)
	if err != nil {
		return "", false, err
	}
	g.logger.Info("Generated page", "problem", p.ID, "path", path)
	return path, true, nil
}

// GenerateAll renders every record in order. With continueOnError a failed
// record is logged and skipped, and the returned error is nil unless ctx is
// cancelled. Otherwise the first failure is returned along with the summary
// so far.
func (g *Generator) GenerateAll(ctx context.Context, problems []problem.ProblemRecord) (Summary, error) {
	summary := Summary{RunID: g.runID, Total: len(problems)}
	start := time.Now()

	for _, p := range problems {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if _, err := g.Generate(ctx, p); err != nil {
			summary.Failed = append(summary.Failed, p.ID)
			if !g.continueOnError {
				return summary, err
			}
			g.logger.Error("Failed to generate page, continuing", "problem", p.ID, "error", err)
			continue
		}
		summary.Generated++
	}

	g.logger.Info("Page generation finished",
		"run_id", g.runID,
		"total", summary.Total,
		"generated", summary.Generated,
		"failed", len(summary.Failed),
		"elapsed", time.Since(start))
	return summary, nil
}

// record writes a ledger entry. A ledger failure never fails the render.
func (g *Generator) record(ctx context.Context, p problem.ProblemRecord, status string, renderErr error) {
	if g.recorder == nil {
		return
	}
	r := catalog.RenderResult{
		RunID:      g.runID,
		ProblemID:  p.ID,
		ImageFile:  p.ImageFile,
		Status:     status,
		RenderedAt: time.Now().UTC(),
	}
	if renderErr != nil {
		r.Error = renderErr.Error()
	}
	if err := g.recorder.RecordRender(ctx, r); err != nil {
		g.logger.Warn("Failed to record render", "problem", p.ID, "error", err)
	}
}
