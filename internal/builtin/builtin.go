// Package builtin ships skills embedded in the binary and copies them into the
// skills directory on first use.
package builtin

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"clawhub/internal/logger"
)

//go:embed all:skills
var embedded embed.FS

const root = "skills"

// Names returns the names of the embedded skills.
func Names() []string {
	entries, err := fs.ReadDir(embedded, root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Ensure copies every embedded file that does not exist yet under skillsDir.
// Existing files are never overwritten, so local edits survive. It returns the
// number of files written.
func Ensure(skillsDir string) (int, error) {
	return copyMissing(embedded, root, skillsDir)
}

func copyMissing(src fs.FS, srcRoot, dest string) (int, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create skills directory: %w", err)
	}

	written := 0
	err := fs.WalkDir(src, srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcRoot, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		if _, err := os.Lstat(target); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		written++
		logger.Debugw("installed built-in skill file", "path", p, "target", target)
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("failed to install built-in skills: %w", err)
	}
	return written, nil
}
