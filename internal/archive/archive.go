// Package archive validates skill archives and installs them into a skills
// directory without ever exposing a half-written skill.
//
// Archives are zip files. Extraction stages into a hidden sibling directory
// and swaps it into place with renames; the previous install is kept as a
// backup until the swap succeeds and restored if it does not.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// SkillFile is the entry every skill package must contain.
const SkillFile = "SKILL.md"

const (
	// MaxEntries bounds the number of entries in an archive.
	MaxEntries = 2000
	// MaxFileSize bounds a single extracted file (10MB).
	MaxFileSize = 10 * 1024 * 1024
	// MaxTotalSize bounds the extracted size of an archive (100MB).
	MaxTotalSize = 100 * 1024 * 1024
)

// ErrEmpty is returned for archives without any entries.
var ErrEmpty = errors.New("archive is empty")

// Entry is one archive member with its path relative to the skill root.
type Entry struct {
	Name string
	File *zip.File
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.File.FileInfo().IsDir()
}

// Contents is the validated layout of an archive.
type Contents struct {
	// Root is the single top-level directory stripped from every entry, if any.
	Root         string
	Entries      []Entry
	HasSkillFile bool
	TotalSize    uint64
}

// Inspect parses data as a zip archive and validates every entry name, type
// and size. It never touches the filesystem.
func Inspect(data []byte) (*Contents, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid zip archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, ErrEmpty
	}
	if len(zr.File) > MaxEntries {
		return nil, fmt.Errorf("archive has %d entries, limit is %d", len(zr.File), MaxEntries)
	}

	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		name, err := cleanEntryName(f.Name)
		if err != nil {
			return nil, err
		}
		if f.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("archive contains disallowed symlink: %s", f.Name)
		}
		if !f.FileInfo().IsDir() && !f.Mode().IsRegular() {
			return nil, fmt.Errorf("archive contains disallowed entry type: %s", f.Name)
		}
		if f.UncompressedSize64 > MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", f.Name, MaxFileSize)
		}
		names[i] = name
	}

	contents := &Contents{Root: commonRoot(names)}
	for i, f := range zr.File {
		name := names[i]
		if contents.Root != "" {
			name = strings.TrimPrefix(strings.TrimPrefix(name, contents.Root), "/")
		}
		if name == "" || name == "." {
			continue
		}
		if name == SkillFile && !f.FileInfo().IsDir() {
			contents.HasSkillFile = true
		}
		contents.TotalSize += f.UncompressedSize64
		contents.Entries = append(contents.Entries, Entry{Name: name, File: f})
	}
	if contents.TotalSize > MaxTotalSize {
		return nil, fmt.Errorf("archive expands to %d bytes, limit is %d", contents.TotalSize, MaxTotalSize)
	}
	return contents, nil
}

// cleanEntryName normalizes a zip entry name and rejects names that would
// escape the extraction root.
func cleanEntryName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("archive contains an entry with an empty name")
	}
	if path.IsAbs(name) || (len(name) > 1 && name[1] == ':') {
		return "", fmt.Errorf("absolute path not allowed in archive: %s", name)
	}
	// path.Clean resolves all ".." segments; any remaining leading ".."
	// means the path escapes the archive root.
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path traversal detected in archive: %s", name)
	}
	return cleaned, nil
}

// commonRoot returns the single top-level directory shared by every entry, or
// "" when entries live at the archive root.
func commonRoot(names []string) string {
	root := ""
	for _, name := range names {
		first, _, nested := strings.Cut(name, "/")
		if !nested {
			// A top-level file, or the root directory entry itself.
			if name == root {
				continue
			}
			if root == "" && isDirOnly(name, names) {
				root = name
				continue
			}
			return ""
		}
		if root == "" {
			root = first
		} else if first != root {
			return ""
		}
	}
	return root
}

// isDirOnly reports whether name only ever appears as a directory prefix.
func isDirOnly(name string, names []string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, name+"/") {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", f.Name, MaxFileSize)
	}
	return data, nil
}

// ReadSkillFile returns the content of SKILL.md from an inspected archive.
func (c *Contents) ReadSkillFile() ([]byte, error) {
	for _, e := range c.Entries {
		if e.Name == SkillFile && !e.IsDir() {
			return readEntry(e.File)
		}
	}
	return nil, fmt.Errorf("archive does not contain %s", SkillFile)
}
