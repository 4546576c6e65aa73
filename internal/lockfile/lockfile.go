// Package lockfile persists the mapping from installed skill slug to version.
//
// The file is always rewritten whole through a temp file and rename, so a
// reader sees either the previous complete map or the new one. Only the
// install pipeline writes through a Store; everything else calls Read and
// keeps nothing past the call.
package lockfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"clawhub/internal/skillerr"
)

//go:embed schema/lockfile.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error

	// rename is swapped in tests to simulate a crash before the swap.
	rename = os.Rename
)

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("lockfile.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("lockfile.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Read loads the lockfile at path. A missing file yields an empty lockfile.
func Read(path string) (*LockFile, error) {
	const op = "read lockfile"

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	return Parse(data)
}

// Parse decodes and validates lockfile content.
func Parse(data []byte) (*LockFile, error) {
	const op = "parse lockfile"

	schema, err := getSchema()
	if err != nil {
		return nil, skillerr.Wrap(skillerr.KindParse, op, err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, skillerr.Wrap(skillerr.KindParse, op, fmt.Errorf("invalid JSON: %w", err))
	}
	if err := schema.Validate(inst); err != nil {
		return nil, skillerr.Wrap(skillerr.KindParse, op, fmt.Errorf("invalid structure: %w", err))
	}

	var lock LockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, skillerr.Wrap(skillerr.KindParse, op, err)
	}
	if lock.Version == 0 {
		lock.Version = CurrentVersion
	}
	if lock.Skills == nil {
		lock.Skills = make(map[string]Entry)
	}
	return &lock, nil
}

// Write replaces the lockfile at path with lock in a single rename.
func Write(path string, lock *LockFile) error {
	const op = "write lockfile"

	if lock == nil {
		lock = New()
	}
	if lock.Version == 0 {
		lock.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return skillerr.Wrap(skillerr.KindParse, op, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}

	if err := rename(tmpPath, path); err != nil {
		cleanup()
		return skillerr.Wrap(skillerr.KindFilesystem, op, err)
	}
	return nil
}

// Store is the write handle on a lockfile. The install pipeline owns the only
// Store for a given path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a store for the lockfile at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the store using now for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{path: s.path, now: now}
}

// Path returns the lockfile location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current lockfile.
func (s *Store) Load() (*LockFile, error) {
	return Read(s.path)
}

// Commit records slug at version, stamped with the current time.
func (s *Store) Commit(slug, version string) (Entry, error) {
	lock, err := s.Load()
	if err != nil {
		return Entry{}, err
	}
	lock.Set(slug, version, s.now())
	if err := Write(s.path, lock); err != nil {
		return Entry{}, err
	}
	entry, _ := lock.Get(slug)
	return entry, nil
}

// Remove deletes slug from the lockfile, reporting whether it was present.
// The file is left untouched when slug is absent.
func (s *Store) Remove(slug string) (bool, error) {
	lock, err := s.Load()
	if err != nil {
		return false, err
	}
	if !lock.Delete(slug) {
		return false, nil
	}
	if err := Write(s.path, lock); err != nil {
		return false, err
	}
	return true, nil
}
