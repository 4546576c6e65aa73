// Package registry talks to a ClawHub-compatible skill registry over HTTP.
//
// Registry is the capability set shared by the HTTP Client and by fakes used
// in tests (see the mocks subpackage), so the install pipeline and the CLI can
// run without network access.
package registry

//go:generate mockgen -destination=mocks/mock_registry.go -package=mocks -source=registry.go Registry

import "context"

// Registry is the set of registry operations the package manager depends on.
type Registry interface {
	// Search returns at most limit skills matching query.
	Search(ctx context.Context, query string, limit int, sort string) ([]SearchResult, error)
	// GetSkill fetches the metadata document for slug.
	GetSkill(ctx context.Context, slug string) (*SkillMeta, error)
	// GetVersions lists all published versions of slug in registry order.
	GetVersions(ctx context.Context, slug string) ([]SkillVersion, error)
	// Download fetches the packaged archive for slug at version.
	Download(ctx context.Context, slug, version string) ([]byte, error)
}
