package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/walkthrough.report/internal/fsutil"
)

// UniqueFilename returns a path in dir for name that does not exist yet.
// The directory is created if absent. When dir/name exists, suffixed
// variants name_0.ext, name_1.ext, ... are probed in order and the first
// free one is returned.
func UniqueFilename(fsys fsutil.FileSystem, dir, name string) (string, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if !fsys.Exists(path) {
		return path, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for id := 0; ; id++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, id, ext))
		if !fsys.Exists(candidate) {
			return candidate, nil
		}
	}
}
