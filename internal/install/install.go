// Package install runs the skill install pipeline:
// resolve version, download, gate, extract, commit lockfile.
//
// The pipeline is the only writer of the lockfile. A failure at any step
// before the commit leaves the previously installed version and its lock
// entry untouched.
package install

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clawhub/internal/archive"
	"clawhub/internal/gate"
	"clawhub/internal/lockfile"
	"clawhub/internal/logger"
	"clawhub/internal/registry"
	"clawhub/internal/skillerr"
)

// Options are per-call overrides. They are never persisted.
type Options struct {
	// Force reinstalls even when the lockfile already records the version.
	Force bool
	// SkipGates bypasses every gate check.
	SkipGates bool
	// SkipSecurity bypasses scan-status checks only.
	SkipSecurity bool
}

func (o Options) gate() gate.Options {
	return gate.Options{SkipGates: o.SkipGates, SkipSecurity: o.SkipSecurity}
}

// Request describes one install.
type Request struct {
	Slug string
	// Version pins a release; empty means the version the registry flags latest.
	Version      string
	SkillsDir    string
	LockfilePath string
	Options      Options
}

// Result is the outcome of a successful install.
type Result struct {
	Message string
	// RequiresRestart is set when the host must reload skills to pick up the change.
	RequiresRestart bool
	Warnings        []string
	Slug            string
	Version         string
}

// Pipeline installs skills from a registry.
type Pipeline struct {
	registry registry.Registry
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for lockfile timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a pipeline over reg.
func NewPipeline(reg registry.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Install runs the pipeline for req.
func (p *Pipeline) Install(ctx context.Context, req Request) (*Result, error) {
	slug := strings.TrimSpace(req.Slug)
	if err := archive.ValidateSlug(slug); err != nil {
		return nil, err
	}
	if req.SkillsDir == "" || req.LockfilePath == "" {
		return nil, skillerr.New(skillerr.KindFilesystem, "install", "skills directory and lockfile path must be set")
	}

	step(slug, "resolve", "requested", req.Version)
	version, meta, err := p.resolveVersion(ctx, slug, strings.TrimSpace(req.Version))
	if err != nil {
		return nil, err
	}

	store := lockfile.NewStore(req.LockfilePath).WithClock(p.now)
	lock, err := store.Load()
	if err != nil {
		return nil, err
	}
	prev, hadPrev := lock.Get(slug)
	if hadPrev && prev.InstalledVersion == version && !req.Options.Force {
		step(slug, "done", "version", version, "skipped", true)
		return &Result{
			Message: fmt.Sprintf("%s is already up to date (v%s)", slug, version),
			Slug:    slug,
			Version: version,
		}, nil
	}

	step(slug, "download", "version", version)
	data, err := p.registry.Download(ctx, slug, version)
	if err != nil {
		return nil, notFoundOn404(err, "download", "%s@%s has no downloadable archive", slug, version)
	}

	step(slug, "gate", "skip_gates", req.Options.SkipGates, "skip_security", req.Options.SkipSecurity)
	if meta == nil && !req.Options.SkipGates && !req.Options.SkipSecurity {
		meta, err = p.registry.GetSkill(ctx, slug)
		if err != nil {
			return nil, notFoundOn404(err, "get skill", "skill %s not found", slug)
		}
	}
	verdict, err := gate.Evaluate(meta, req.Options.gate())
	if err != nil {
		return nil, err
	}
	if err := gate.CheckArchive(data, req.Options.gate()); err != nil {
		return nil, err
	}
	for _, w := range verdict.Warnings {
		logger.Debugw("gate warning", "slug", slug, "warning", w)
	}

	step(slug, "extract", "dir", archive.Dir(req.SkillsDir, slug), "bytes", len(data))
	if err := archive.Install(data, req.SkillsDir, slug); err != nil {
		return nil, err
	}

	step(slug, "commit", "lockfile", store.Path())
	if _, err := store.Commit(slug, version); err != nil {
		return nil, err
	}

	result := &Result{
		RequiresRestart: !hadPrev || prev.InstalledVersion != version,
		Warnings:        verdict.Warnings,
		Slug:            slug,
		Version:         version,
	}
	switch {
	case !hadPrev:
		result.Message = fmt.Sprintf("Installed %s v%s", slug, version)
	case prev.InstalledVersion != version:
		result.Message = fmt.Sprintf("Updated %s from v%s to v%s", slug, prev.InstalledVersion, version)
	default:
		result.Message = fmt.Sprintf("Reinstalled %s v%s", slug, version)
	}
	step(slug, "done", "version", version, "requires_restart", result.RequiresRestart)
	return result, nil
}

// resolveVersion returns the concrete version to install. Metadata is
// returned when it was fetched along the way so the gate can reuse it.
func (p *Pipeline) resolveVersion(ctx context.Context, slug, requested string) (string, *registry.SkillMeta, error) {
	if requested != "" {
		versions, err := p.registry.GetVersions(ctx, slug)
		if err != nil {
			return "", nil, notFoundOn404(err, "resolve version", "skill %s not found", slug)
		}
		if !registry.HasVersion(versions, requested) {
			return "", nil, skillerr.Newf(skillerr.KindNotFound, "resolve version",
				"version %s of %s not found", requested, slug)
		}
		return requested, nil, nil
	}

	meta, err := p.registry.GetSkill(ctx, slug)
	if err != nil {
		return "", nil, notFoundOn404(err, "resolve version", "skill %s not found", slug)
	}
	latest, ok := meta.LatestVersion()
	if !ok {
		return "", nil, skillerr.Newf(skillerr.KindNotFound, "resolve version",
			"skill %s has no version flagged latest", slug)
	}
	return latest, meta, nil
}

// Remove uninstalls slug: the lock entry goes first so an interrupted removal
// never leaves the lockfile pointing at a missing directory.
func (p *Pipeline) Remove(slug, skillsDir, lockfilePath string) (bool, error) {
	if err := archive.ValidateSlug(slug); err != nil {
		return false, err
	}
	inLock, err := lockfile.NewStore(lockfilePath).WithClock(p.now).Remove(slug)
	if err != nil {
		return false, err
	}
	onDisk, err := archive.Remove(skillsDir, slug)
	if err != nil {
		return inLock, err
	}
	logger.Debugw("removed skill", "slug", slug, "lock_entry", inLock, "dir", onDisk)
	if !inLock && !onDisk {
		return false, skillerr.Newf(skillerr.KindNotFound, "remove", "skill %s is not installed", slug)
	}
	return true, nil
}

// notFoundOn404 reclassifies a registry 404 as KindNotFound and leaves every
// other error as it is.
func notFoundOn404(err error, op, format string, args ...any) error {
	if skillerr.IsHTTPNotFound(err) {
		return skillerr.Wrap(skillerr.KindNotFound, op, fmt.Errorf(format+": %w", append(args, err)...))
	}
	return err
}

func step(slug, name string, kv ...any) {
	logger.Debugw("install step", append([]any{"step", name, "slug", slug}, kv...)...)
}
