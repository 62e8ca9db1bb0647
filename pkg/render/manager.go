package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/CTAG07/mensagen/pkg/problem"
)

// TemplateManager loads the page templates and renders problem records
// through them. Full pages are files matching *.tmpl.html; files matching
// *.part.html are loaded as partials that pages may call by file name.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger        *slog.Logger
	config        *TemplateConfig
	fsys          fs.FS
	templates     *template.Template
	templateNames []string
	mu            sync.RWMutex
}

// NewTemplateManager creates a TemplateManager reading templates from fsys
// and performs an initial Refresh. A nil config selects DefaultConfig.
func NewTemplateManager(logger *slog.Logger, config *TemplateConfig, fsys fs.FS) (*TemplateManager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	tm := &TemplateManager{
		logger: logger,
		config: config,
		fsys:   fsys,
	}

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", "templates", tm.GetTemplateNames())
	return tm, nil
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// Refresh reloads every template, then checks that each layout template is
// present and that every full page references all required slots. On error
// the previously loaded set stays in place.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.logger.Debug("Loading template files...")
	parsed, err := template.New("").ParseFS(tm.fsys, "*.tmpl.html")
	if err != nil {
		if strings.Contains(err.Error(), "pattern matches no files") {
			return fmt.Errorf("%w: no *.tmpl.html files", ErrMissingTemplate)
		}
		tm.logger.Error("failed to parse template files", "error", err)
		return err
	}

	var names []string
	for _, t := range parsed.Templates() {
		// The root template has no name and is never executed.
		if strings.HasSuffix(t.Name(), ".tmpl.html") {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)

	tm.logger.Debug("Loading partial files...")
	withPartials, err := parsed.ParseFS(tm.fsys, "*.part.html")
	if err != nil {
		if !strings.Contains(err.Error(), "pattern matches no files") {
			tm.logger.Error("failed to parse partial files", "error", err)
			return err
		}
		withPartials = parsed
	}

	for _, name := range layoutTemplates() {
		if withPartials.Lookup(name) == nil {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
	}
	for _, name := range names {
		if err = checkSlots(withPartials, name, tm.config.RequiredSlots); err != nil {
			tm.logger.Error("template rejected", "template", name, "error", err)
			return err
		}
	}

	tm.templates = withPartials
	tm.templateNames = names
	tm.logger.Info("Loaded template and partial files", "count", len(withPartials.Templates())-1)
	return nil
}

// Execute renders a template by name with the given data.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// GetTemplateNames returns the names of the loaded full-page templates.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]string(nil), tm.templateNames...)
}

// NewPage fills the page slots for a record.
func (tm *TemplateManager) NewPage(p problem.ProblemRecord) (Page, error) {
	options, err := OptionsFragment(p.Options)
	if err != nil {
		return Page{}, fmt.Errorf("problem %s: %w", p.ID, err)
	}
	return Page{
		Number:      p.ID,
		Title:       p.Title,
		Difficulty:  p.Difficulty,
		Time:        tm.GetConfig().TimeLimit,
		Instruction: p.Description,
		Content:     LayoutFor(p.Type).Content(p),
		Options:     options,
	}, nil
}

// Render writes the page for a record to w.
func (tm *TemplateManager) Render(w io.Writer, p problem.ProblemRecord) error {
	page, err := tm.NewPage(p)
	if err != nil {
		return err
	}
	name := LayoutFor(p.Type).Template
	if err = tm.Execute(w, name, page); err != nil {
		return fmt.Errorf("problem %s: failed to execute %s: %w", p.ID, name, err)
	}
	return nil
}

// RenderBytes is Render into a buffer.
func (tm *TemplateManager) RenderBytes(p problem.ProblemRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := tm.Render(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
