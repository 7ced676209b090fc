package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFileName checks that name is a bare file name: no directory
// components, no traversal and no absolute path. Output names in analysis
// configs are joined onto the output directory and must not escape it.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("empty file name")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("file name %q must not contain a directory", name)
	}
	return nil
}

// ValidatePathWithinDirectory checks that filePath resolves inside safeDir.
// Existing symlinks on either side are resolved first, so a link that points
// out of safeDir is rejected. Paths that do not exist yet are compared
// lexically from their nearest existing parent.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	relPath, err := filepath.Rel(canonical(absSafeDir), canonical(absPath))
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}
	return nil
}

// canonical resolves symlinks in the longest existing prefix of abs.
func canonical(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	check := abs
	for {
		parent := filepath.Dir(check)
		if parent == check {
			return abs
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, _ := filepath.Rel(parent, abs)
			return filepath.Join(resolved, rel)
		}
		check = parent
	}
}
