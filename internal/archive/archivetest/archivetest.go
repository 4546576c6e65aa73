// Package archivetest builds in-memory skill archives for tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"io/fs"
	"sort"
	"testing"
)

// File is one archive member. Names ending in "/" are directories.
type File struct {
	Name string
	Body string
	Mode fs.FileMode
}

// Zip returns a zip archive holding files in the given order.
func Zip(t testing.TB, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Deflate}
		if f.Mode != 0 {
			hdr.SetMode(f.Mode)
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("failed to add %s: %v", f.Name, err)
		}
		if f.Body != "" {
			if _, err := w.Write([]byte(f.Body)); err != nil {
				t.Fatalf("failed to write %s: %v", f.Name, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
	return buf.Bytes()
}

// Skill returns an archive with a SKILL.md describing name plus extra files,
// all nested under a single top-level directory as the registry serves them.
func Skill(t testing.TB, name, version string, extra map[string]string) []byte {
	t.Helper()

	files := []File{{
		Name: name + "/SKILL.md",
		Body: "---\nname: " + name + "\ndescription: Test skill " + name + " " + version + "\n---\n\n# " + name + "\n",
	}}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		files = append(files, File{Name: name + "/" + k, Body: extra[k]})
	}
	return Zip(t, files...)
}
