// Package gateway is the narrow surface the CLI, the TUI and chat channel
// adapters use to reach the registry and the install pipeline.
package gateway

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks -source=gateway.go Gateway

import (
	"context"
	"net/http"

	"clawhub/internal/config"
	"clawhub/internal/install"
	"clawhub/internal/lockfile"
	"clawhub/internal/registry"
)

// Gateway searches, inspects and installs skills.
type Gateway interface {
	Search(ctx context.Context, query string, limit int, sort string) ([]registry.SearchResult, error)
	GetSkill(ctx context.Context, slug string) (*registry.SkillMeta, error)
	Install(ctx context.Context, slug, version, skillsDir, lockfilePath string, opts install.Options) (*install.Result, error)
	ReadLockfile(path string) (*lockfile.LockFile, error)
}

// RegistryGateway implements Gateway over a registry client.
type RegistryGateway struct {
	client   registry.Registry
	pipeline *install.Pipeline
}

var _ Gateway = (*RegistryGateway)(nil)

// New creates a gateway over reg.
func New(reg registry.Registry, opts ...install.Option) *RegistryGateway {
	return &RegistryGateway{
		client:   reg,
		pipeline: install.NewPipeline(reg, opts...),
	}
}

// FromConfig creates a gateway for the registry and token in cfg.
func FromConfig(cfg *config.Config, userAgent string) *RegistryGateway {
	client := registry.NewClient(cfg.Registry,
		registry.WithToken(cfg.Token),
		registry.WithUserAgent(userAgent),
		registry.WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout}),
	)
	return New(client)
}

// Search implements Gateway.
func (g *RegistryGateway) Search(ctx context.Context, query string, limit int, sort string) ([]registry.SearchResult, error) {
	return g.client.Search(ctx, query, limit, sort)
}

// GetSkill implements Gateway.
func (g *RegistryGateway) GetSkill(ctx context.Context, slug string) (*registry.SkillMeta, error) {
	return g.client.GetSkill(ctx, slug)
}

// Install implements Gateway.
func (g *RegistryGateway) Install(ctx context.Context, slug, version, skillsDir, lockfilePath string, opts install.Options) (*install.Result, error) {
	return g.pipeline.Install(ctx, install.Request{
		Slug:         slug,
		Version:      version,
		SkillsDir:    skillsDir,
		LockfilePath: lockfilePath,
		Options:      opts,
	})
}

// ReadLockfile implements Gateway.
func (g *RegistryGateway) ReadLockfile(path string) (*lockfile.LockFile, error) {
	return lockfile.Read(path)
}

// Remove uninstalls slug. It is not part of Gateway: channel adapters only
// ever install.
func (g *RegistryGateway) Remove(slug, skillsDir, lockfilePath string) (bool, error) {
	return g.pipeline.Remove(slug, skillsDir, lockfilePath)
}

// Versions lists the published versions of slug.
func (g *RegistryGateway) Versions(ctx context.Context, slug string) ([]registry.SkillVersion, error) {
	return g.client.GetVersions(ctx, slug)
}
