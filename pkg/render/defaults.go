package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

//go:embed defaults/*.html
var defaultFiles embed.FS

// DefaultTemplates returns the bundled template set.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(defaultFiles, "defaults")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(err)
	}
	return sub
}

// InstallDefaults writes every bundled template that is not already present
// in dir, creating dir if needed. Existing files are left untouched. It
// returns the names of the files written.
func InstallDefaults(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}

	entries, err := fs.ReadDir(defaultFiles, "defaults")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if _, err = os.Stat(target); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return written, fmt.Errorf("failed to stat %s: %w", target, err)
		}

		data, err := fs.ReadFile(defaultFiles, "defaults/"+e.Name())
		if err != nil {
			return written, err
		}
		if err = atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, e.Name())
	}
	return written, nil
}
