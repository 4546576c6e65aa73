package registry

import (
	"sort"
	"strings"
)

// ScanStatus is the registry's malware scan summary for a skill.
type ScanStatus struct {
	Status      string `json:"status"`
	ReportCount int    `json:"report_count"`
}

// SearchResult represents a skill returned by the search endpoint
type SearchResult struct {
	Slug         string      `json:"slug"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	InstallCount int64       `json:"install_count"`
	VirusTotal   *ScanStatus `json:"virustotal,omitempty"`
}

// SkillVersion is one published version of a skill. Latest is set by the
// registry; versions are never re-sorted client side.
type SkillVersion struct {
	Version string `json:"version"`
	Latest  bool   `json:"latest"`
}

// SkillMeta is the full metadata document for a skill
type SkillMeta struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Versions    []SkillVersion `json:"versions"`
	VirusTotal  *ScanStatus    `json:"virustotal,omitempty"`
}

// LatestVersion returns the version the registry flags as latest.
func (m *SkillMeta) LatestVersion() (string, bool) {
	for _, v := range m.Versions {
		if v.Latest {
			return v.Version, true
		}
	}
	return "", false
}

// HasVersion reports whether version is one of the published versions.
func HasVersion(versions []SkillVersion, version string) bool {
	for _, v := range versions {
		if v.Version == version {
			return true
		}
	}
	return false
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Sort orders accepted by Search. Anything else keeps registry order.
const (
	SortTrending = "trending"
	SortInstalls = "installs"
	SortName     = "name"
)

// sortResults applies a client-side order on top of the registry's ranking.
func sortResults(results []SearchResult, order string) {
	switch strings.ToLower(order) {
	case SortInstalls:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].InstallCount > results[j].InstallCount
		})
	case SortName:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Name) < strings.ToLower(results[j].Name)
		})
	}
}
