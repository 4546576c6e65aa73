package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"clawhub/internal/logger"
	"clawhub/internal/skillerr"
)

// rename is swapped in tests to simulate a failed swap.
var rename = os.Rename

// ValidateSlug rejects slugs that cannot be used as a single directory name
// under the skills directory.
func ValidateSlug(slug string) error {
	switch {
	case strings.TrimSpace(slug) == "":
		return skillerr.New(skillerr.KindParse, "validate slug", "slug is empty")
	case slug == "." || slug == "..":
		return skillerr.Newf(skillerr.KindParse, "validate slug", "invalid slug %q", slug)
	case strings.HasPrefix(slug, "."):
		return skillerr.Newf(skillerr.KindParse, "validate slug", "slug %q must not start with a dot", slug)
	case strings.ContainsAny(slug, `/\:`) || strings.ContainsRune(slug, 0):
		return skillerr.Newf(skillerr.KindParse, "validate slug", "slug %q must not contain path separators", slug)
	}
	return nil
}

// Dir returns the install directory of slug under skillsDir.
func Dir(skillsDir, slug string) string {
	return filepath.Join(skillsDir, slug)
}

// Install extracts data into skillsDir/slug. On failure the previous content
// of that directory, if any, is left in place.
func Install(data []byte, skillsDir, slug string) error {
	const op = "install archive"

	if err := ValidateSlug(slug); err != nil {
		return err
	}
	contents, err := Inspect(data)
	if err != nil {
		return skillerr.Wrap(skillerr.KindParse, op, err)
	}

	if err := os.MkdirAll(skillsDir, 0o755); err != nil {
		return skillerr.Wrap(skillerr.KindFilesystem, op, fmt.Errorf("failed to create skills directory: %w", err))
	}

	staging := filepath.Join(skillsDir, ".staging-"+slug+"-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return skillerr.Wrap(skillerr.KindFilesystem, op, fmt.Errorf("failed to create staging directory: %w", err))
	}
	defer os.RemoveAll(staging)

	if err := extract(contents, staging, MaxTotalSize); err != nil {
		return err
	}

	target := Dir(skillsDir, slug)
	if err := swap(staging, target); err != nil {
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	logger.Debugw("installed archive", "slug", slug, "dir", target, "entries", len(contents.Entries))
	return nil
}

// extract writes every entry under root. limit caps the bytes actually
// written; header sizes are not trusted for this.
func extract(contents *Contents, root string, limit int64) error {
	const op = "extract archive"

	var written int64
	for _, entry := range contents.Entries {
		target := filepath.Join(root, filepath.FromSlash(entry.Name))
		if err := ensurePathWithinRoot(root, target); err != nil {
			return skillerr.Wrap(skillerr.KindParse, op, fmt.Errorf("%s: %w", entry.Name, err))
		}

		if entry.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return skillerr.Wrap(skillerr.KindFilesystem, op, err)
			}
			continue
		}

		data, err := readEntry(entry.File)
		if err != nil {
			return skillerr.Wrap(skillerr.KindParse, op, fmt.Errorf("failed to read %s: %w", entry.Name, err))
		}
		written += int64(len(data))
		if written > limit {
			return skillerr.Wrap(skillerr.KindParse, op, fmt.Errorf("archive expands past the limit of %d bytes", limit))
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return skillerr.Wrap(skillerr.KindFilesystem, op, err)
		}

		mode := fs.FileMode(0o644)
		if entry.File.Mode()&0o111 != 0 {
			mode = 0o755
		}
		if err := os.WriteFile(target, data, mode); err != nil {
			return skillerr.Wrap(skillerr.KindFilesystem, op, fmt.Errorf("failed to write %s: %w", entry.Name, err))
		}
	}
	return nil
}

// swap moves staging to target. An existing target is renamed to a backup
// first and restored if the second rename fails.
func swap(staging, target string) error {
	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		if err := rename(staging, target); err != nil {
			return fmt.Errorf("failed to move skill into place: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat install directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists and is not a directory", target)
	}

	backup := filepath.Join(filepath.Dir(target), ".backup-"+filepath.Base(target)+"-"+uuid.NewString())
	if err := rename(target, backup); err != nil {
		return fmt.Errorf("failed to back up previous install: %w", err)
	}
	if err := rename(staging, target); err != nil {
		if rerr := os.Rename(backup, target); rerr != nil {
			return fmt.Errorf("failed to move skill into place: %w (restore failed: %v)", err, rerr)
		}
		return fmt.Errorf("failed to move skill into place: %w", err)
	}
	if err := os.RemoveAll(backup); err != nil {
		logger.Warnf("Failed to remove backup %s: %v", backup, err)
	}
	return nil
}

// Remove deletes the install directory of slug, reporting whether it existed.
func Remove(skillsDir, slug string) (bool, error) {
	const op = "remove skill"

	if err := ValidateSlug(slug); err != nil {
		return false, err
	}
	target := Dir(skillsDir, slug)
	if _, err := os.Lstat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	if err := os.RemoveAll(target); err != nil {
		return false, skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	return true, nil
}

func ensurePathWithinRoot(root, target string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) || filepath.IsAbs(rel) {
		return errors.New("path escapes extraction root")
	}
	return nil
}
