package testing

import (
	"context"
	"strings"
	"sync"
	"time"

	"clawhub/internal/gateway"
	"clawhub/internal/install"
	"clawhub/internal/lockfile"
	"clawhub/internal/registry"
	"clawhub/internal/skillerr"
)

var installedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// InstallCall records one Install invocation on FakeGateway
type InstallCall struct {
	Slug    string
	Version string
	Options install.Options
}

// FakeGateway implements gateway.Gateway in memory for testing
type FakeGateway struct {
	mu       sync.Mutex
	skills   []registry.SearchResult
	lock     *lockfile.LockFile
	installs []InstallCall
	queries  []string

	// SearchErr, when set, is returned by Search
	SearchErr error
	// InstallErr, when set, is returned by Install
	InstallErr error
}

var _ gateway.Gateway = (*FakeGateway)(nil)

// NewFakeGateway creates a fake serving skills with an empty lockfile
func NewFakeGateway(skills []registry.SearchResult) *FakeGateway {
	return &FakeGateway{skills: skills, lock: lockfile.New()}
}

// SetInstalled records slug as installed at version
func (g *FakeGateway) SetInstalled(slug, version string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lock.Set(slug, version, installedAt)
}

// Search filters skills by substring on slug, name and description
func (g *FakeGateway) Search(_ context.Context, query string, limit int, _ string) ([]registry.SearchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	if g.SearchErr != nil {
		return nil, g.SearchErr
	}

	q := strings.ToLower(query)
	var results []registry.SearchResult
	for _, s := range g.skills {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Slug), q) ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Description), q) {
			results = append(results, s)
		}
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetSkill returns metadata for a known slug
func (g *FakeGateway) GetSkill(_ context.Context, slug string) (*registry.SkillMeta, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range g.skills {
		if s.Slug == slug {
			meta := TestMeta(slug)
			if meta == nil {
				meta = &registry.SkillMeta{
					Slug:        s.Slug,
					Name:        s.Name,
					Description: s.Description,
					VirusTotal:  s.VirusTotal,
					Versions:    []registry.SkillVersion{{Version: "1.0.0", Latest: true}},
				}
			}
			return meta, nil
		}
	}
	return nil, skillerr.Newf(skillerr.KindNotFound, "get skill", "skill %s not found", slug)
}

// Install records the call and marks the skill installed at 2.0.1 unless a
// version is given
func (g *FakeGateway) Install(_ context.Context, slug, version, _, _ string, opts install.Options) (*install.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.installs = append(g.installs, InstallCall{Slug: slug, Version: version, Options: opts})
	if g.InstallErr != nil {
		return nil, g.InstallErr
	}
	if version == "" {
		version = "2.0.1"
	}
	g.lock.Set(slug, version, installedAt)
	return &install.Result{
		Message:         "Installed " + slug + " v" + version,
		RequiresRestart: true,
		Slug:            slug,
		Version:         version,
	}, nil
}

// ReadLockfile returns a copy of the in-memory lockfile
func (g *FakeGateway) ReadLockfile(string) (*lockfile.LockFile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := lockfile.New()
	for slug, e := range g.lock.Skills {
		out.Skills[slug] = e
	}
	return out, nil
}

// Installs returns the recorded Install calls
func (g *FakeGateway) Installs() []InstallCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]InstallCall(nil), g.installs...)
}

// Queries returns the recorded search queries
func (g *FakeGateway) Queries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}
