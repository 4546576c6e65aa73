package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clawhub/internal/logger"
	"clawhub/internal/skillerr"
)

const (
	// ProductionDomain is the hosted registry. Only clients configured for it
	// fall back to the legacy download mirror.
	ProductionDomain = "clawhub.ai"

	// LegacyMirror served downloads before the registry moved its API.
	LegacyMirror = "https://wry-manatee-359.convex.site"

	// MaxArchiveSize bounds a downloaded skill archive (50MB).
	MaxArchiveSize = 50 * 1024 * 1024

	maxJSONSize    = 4 * 1024 * 1024
	defaultTimeout = 30 * time.Second
)

// Client is a stateless HTTP client for the registry API
type Client struct {
	baseURL      string
	token        string
	userAgent    string
	legacyMirror string
	httpClient   *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLegacyMirror overrides the legacy download mirror base URL.
func WithLegacyMirror(base string) Option {
	return func(c *Client) {
		c.legacyMirror = strings.TrimRight(base, "/")
	}
}

// NewClient creates a registry client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent:    "clawhub",
		legacyMirror: LegacyMirror,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured registry base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Search queries the registry's search endpoint. Filtering happens server
// side; the result is truncated to limit and optionally re-ordered by sort.
func (c *Client) Search(ctx context.Context, query string, limit int, sort string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint := c.baseURL + "/api/v1/search?" + params.Encode()

	var resp searchResponse
	if err := c.getJSON(ctx, "search", endpoint, &resp); err != nil {
		return nil, err
	}

	results := resp.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	sortResults(results, sort)
	return results, nil
}

// GetSkill fetches skill metadata by slug.
func (c *Client) GetSkill(ctx context.Context, slug string) (*SkillMeta, error) {
	endpoint := c.baseURL + "/api/v1/skills/" + url.PathEscape(slug)

	var meta SkillMeta
	if err := c.getJSON(ctx, "get skill", endpoint, &meta); err != nil {
		return nil, err
	}
	if meta.Slug == "" {
		meta.Slug = slug
	}
	return &meta, nil
}

// GetVersions lists all versions of a skill.
func (c *Client) GetVersions(ctx context.Context, slug string) ([]SkillVersion, error) {
	endpoint := c.baseURL + "/api/v1/skills/" + url.PathEscape(slug) + "/versions"

	var versions []SkillVersion
	if err := c.getJSON(ctx, "get versions", endpoint, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// Download fetches the skill archive, trying each candidate URL in order and
// returning the first success. When every candidate fails, the last error is
// returned.
func (c *Client) Download(ctx context.Context, slug, version string) ([]byte, error) {
	var lastErr error
	for _, candidate := range c.downloadCandidates(slug, version) {
		if err := ctx.Err(); err != nil {
			return nil, skillerr.Wrap(skillerr.KindRegistry, "download", err)
		}

		data, err := c.fetchArchive(ctx, candidate)
		if err == nil {
			logger.Debugw("downloaded skill archive", "slug", slug, "version", version, "url", candidate, "bytes", len(data))
			return data, nil
		}
		logger.Debugw("download candidate failed", "url", candidate, "error", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = skillerr.New(skillerr.KindRegistry, "download", "no usable endpoint")
	}
	return nil, lastErr
}

// downloadCandidates lists the download endpoints in the order they are tried.
func (c *Client) downloadCandidates(slug, version string) []string {
	query := url.Values{}
	query.Set("slug", slug)
	query.Set("version", version)

	byPath := url.Values{}
	byPath.Set("version", version)

	candidates := []string{
		c.baseURL + "/api/v1/download?" + query.Encode(),
		c.baseURL + "/api/v1/skills/" + url.PathEscape(slug) + "/download?" + byPath.Encode(),
	}
	if c.isProductionRegistry() && c.legacyMirror != "" {
		candidates = append(candidates, c.legacyMirror+"/api/v1/download?"+query.Encode())
	}
	return candidates
}

func (c *Client) isProductionRegistry() bool {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == ProductionDomain || strings.HasSuffix(host, "."+ProductionDomain)
}

func (c *Client) fetchArchive(ctx context.Context, endpoint string) ([]byte, error) {
	const op = "download"

	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return nil, skillerr.Wrap(skillerr.KindRegistry, op, fmt.Errorf("request to %s failed: %w", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, skillerr.WithStatus(op, resp.StatusCode, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxArchiveSize+1))
	if err != nil {
		return nil, skillerr.Wrap(skillerr.KindRegistry, op, fmt.Errorf("reading body from %s: %w", endpoint, err))
	}
	if len(data) > MaxArchiveSize {
		return nil, skillerr.Newf(skillerr.KindRegistry, op, "archive from %s exceeds %d bytes", endpoint, MaxArchiveSize)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	resp, err := c.do(ctx, endpoint)
	if err != nil {
		return skillerr.Wrap(skillerr.KindRegistry, op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return skillerr.WithStatus(op, resp.StatusCode, fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONSize+1))
	if err != nil {
		return skillerr.Wrap(skillerr.KindRegistry, op, fmt.Errorf("reading response: %w", err))
	}
	if len(body) > maxJSONSize {
		return skillerr.Newf(skillerr.KindRegistry, op, "response from %s exceeds %d bytes", endpoint, maxJSONSize)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return skillerr.Wrap(skillerr.KindRegistry, op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}
