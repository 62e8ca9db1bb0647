package render

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/CTAG07/mensagen/pkg/problem"
)

// minimalPage references every required slot and nothing else.
const minimalPage = `{{.Number}}|{{.Difficulty}}|{{.Time}}|{{.Instruction}}|{{.Content}}|{{.Options}}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestManager creates a TemplateManager over the bundled templates.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()
	tm, err := NewTemplateManager(discardLogger(), DefaultConfig(), DefaultTemplates())
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

func TestNewTemplateManager(t *testing.T) {
	tm := setupTestManager(t)
	want := []string{MatrixTemplate, SequenceTemplate, SpatialTemplate}
	if got := tm.GetTemplateNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("GetTemplateNames() = %v, want %v", got, want)
	}
	if tm.GetConfig().TimeLimit != "44:59" {
		t.Errorf("unexpected default time limit %q", tm.GetConfig().TimeLimit)
	}
}

func TestNewTemplateManager_NilConfig(t *testing.T) {
	tm, err := NewTemplateManager(discardLogger(), nil, DefaultTemplates())
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}
	if len(tm.GetConfig().RequiredSlots) == 0 {
		t.Error("nil config should fall back to the default slot set")
	}
}

func TestManager_RejectsMissingSlot(t *testing.T) {
	fsys := fstest.MapFS{
		MatrixTemplate:   {Data: []byte(minimalPage)},
		SequenceTemplate: {Data: []byte(minimalPage)},
		SpatialTemplate:  {Data: []byte(`{{.Number}}|{{.Difficulty}}|{{.Time}}|{{.Instruction}}|{{.Content}}`)},
	}
	_, err := NewTemplateManager(discardLogger(), DefaultConfig(), fsys)
	if !errors.Is(err, ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	if !strings.Contains(err.Error(), SlotOptions) {
		t.Errorf("error should name the missing slot: %v", err)
	}
}

func TestManager_SlotsThroughPartials(t *testing.T) {
	fsys := fstest.MapFS{
		MatrixTemplate:    {Data: []byte(`{{template "head.part.html" .}}{{if .Content}}{{.Content}}{{else}}{{.Options}}{{end}}`)},
		SequenceTemplate:  {Data: []byte(minimalPage)},
		SpatialTemplate:   {Data: []byte(minimalPage)},
		"head.part.html":  {Data: []byte(`{{.Number}}{{.Difficulty}}{{template "clock.part.html" .}}{{.Instruction}}`)},
		"clock.part.html": {Data: []byte(`{{with .Time}}{{.}}{{end}}`)},
	}
	if _, err := NewTemplateManager(discardLogger(), DefaultConfig(), fsys); err != nil {
		t.Fatalf("slots referenced through partials should be accepted: %v", err)
	}
}

func TestManager_MissingLayoutTemplate(t *testing.T) {
	fsys := fstest.MapFS{MatrixTemplate: {Data: []byte(minimalPage)}}
	_, err := NewTemplateManager(discardLogger(), DefaultConfig(), fsys)
	if !errors.Is(err, ErrMissingTemplate) {
		t.Errorf("expected ErrMissingTemplate, got %v", err)
	}

	_, err = NewTemplateManager(discardLogger(), DefaultConfig(), fstest.MapFS{})
	if !errors.Is(err, ErrMissingTemplate) {
		t.Errorf("expected ErrMissingTemplate for an empty directory, got %v", err)
	}
}

func TestManager_Refresh(t *testing.T) {
	dir := t.TempDir()
	if _, err := InstallDefaults(dir); err != nil {
		t.Fatalf("InstallDefaults failed: %v", err)
	}
	tm, err := NewTemplateManager(discardLogger(), DefaultConfig(), os.DirFS(dir))
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}
	initial := len(tm.GetTemplateNames())

	if err = os.WriteFile(filepath.Join(dir, "extra.tmpl.html"), []byte(minimalPage), 0644); err != nil {
		t.Fatalf("failed to write new template: %v", err)
	}
	if err = tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := len(tm.GetTemplateNames()); got != initial+1 {
		t.Errorf("expected %d templates after refresh, got %d", initial+1, got)
	}

	// A broken template is rejected and the loaded set keeps working.
	if err = os.WriteFile(filepath.Join(dir, SpatialTemplate), []byte(`{{.Number}}`), 0644); err != nil {
		t.Fatalf("failed to overwrite template: %v", err)
	}
	if err = tm.Refresh(); !errors.Is(err, ErrMissingSlot) {
		t.Fatalf("expected ErrMissingSlot, got %v", err)
	}
	out, err := tm.RenderBytes(problem.ProblemRecord{ID: "001", Type: problem.TypeSpatialReasoning, Subtype: problem.SubtypeFolding})
	if err != nil {
		t.Fatalf("render after rejected refresh failed: %v", err)
	}
	if !strings.Contains(string(out), "fold-pattern") {
		t.Error("previous spatial template should still be in use")
	}
}

func TestManager_TimeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeLimit = "30:00"
	tm, err := NewTemplateManager(discardLogger(), cfg, DefaultTemplates())
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}
	if got := tm.GetConfig().TimeLimit; got != "30:00" {
		t.Errorf("GetConfig().TimeLimit = %q, want 30:00", got)
	}

	out, err := tm.RenderBytes(problem.ProblemRecord{ID: "001", Type: problem.TypeMatrixReasoning})
	if err != nil {
		t.Fatalf("RenderBytes failed: %v", err)
	}
	if !strings.Contains(string(out), `<span id="time">30:00</span>`) {
		t.Error("configured time limit was not applied")
	}
}

func TestInstallDefaults_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := []byte(minimalPage + "custom")
	if err := os.WriteFile(filepath.Join(dir, MatrixTemplate), custom, 0644); err != nil {
		t.Fatalf("failed to write custom template: %v", err)
	}

	written, err := InstallDefaults(dir)
	if err != nil {
		t.Fatalf("InstallDefaults failed: %v", err)
	}
	for _, name := range written {
		if name == MatrixTemplate {
			t.Error("existing template was overwritten")
		}
	}
	data, _ := os.ReadFile(filepath.Join(dir, MatrixTemplate))
	if !bytes.Equal(data, custom) {
		t.Error("existing template content changed")
	}

	written, err = InstallDefaults(dir)
	if err != nil || len(written) != 0 {
		t.Errorf("second install should write nothing, wrote %v (%v)", written, err)
	}
}

func BenchmarkRender(b *testing.B) {
	tm := setupTestManager(b)
	p := problem.ProblemRecord{
		ID:          "009",
		Type:        problem.TypeMatrixReasoning,
		Subtype:     problem.SubtypePointSymmetry,
		Difficulty:  12,
		Title:       "行列推論 - point-symmetry",
		Description: "点対称の規則に従って?に入る図形を選べ",
		Options:     []string{"A", "B", "C", "D"},
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Render(io.Discard, p)
	}
}
