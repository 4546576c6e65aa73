package lockfile

import (
	"sort"
	"time"
)

// CurrentVersion is the lockfile format version written by this package.
const CurrentVersion = 1

// LockFile records which version of each skill is installed
type LockFile struct {
	Version int              `json:"version"`
	Skills  map[string]Entry `json:"skills"`
}

// Entry is the lock state of one installed skill
type Entry struct {
	InstalledVersion string    `json:"installed_version"`
	InstalledAt      time.Time `json:"installed_at"`
}

// New creates an empty lockfile
func New() *LockFile {
	return &LockFile{
		Version: CurrentVersion,
		Skills:  make(map[string]Entry),
	}
}

// Get returns the entry for slug.
func (l *LockFile) Get(slug string) (Entry, bool) {
	if l == nil || l.Skills == nil {
		return Entry{}, false
	}
	e, ok := l.Skills[slug]
	return e, ok
}

// Set records slug at version.
func (l *LockFile) Set(slug, version string, at time.Time) {
	if l.Skills == nil {
		l.Skills = make(map[string]Entry)
	}
	l.Skills[slug] = Entry{InstalledVersion: version, InstalledAt: at}
}

// Delete removes slug, reporting whether it was present.
func (l *LockFile) Delete(slug string) bool {
	if _, ok := l.Skills[slug]; !ok {
		return false
	}
	delete(l.Skills, slug)
	return true
}

// Slugs returns the installed slugs in sorted order.
func (l *LockFile) Slugs() []string {
	if l == nil {
		return nil
	}
	slugs := make([]string, 0, len(l.Skills))
	for slug := range l.Skills {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
