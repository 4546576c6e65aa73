package testing

import (
	"fmt"
	"path/filepath"
	"time"

	"clawhub/internal/config"
	"clawhub/internal/registry"
)

// TestSkills returns a set of search results with varied scan statuses
func TestSkills() []registry.SearchResult {
	return []registry.SearchResult{
		{
			Slug:         "weather",
			Name:         "Weather",
			Description:  "Forecasts and current conditions",
			InstallCount: 12840,
			VirusTotal:   &registry.ScanStatus{Status: "clean"},
		},
		{
			Slug:         "pdf-tools",
			Name:         "PDF Tools",
			Description:  "Split, merge and extract text from PDFs",
			InstallCount: 530,
			VirusTotal:   &registry.ScanStatus{Status: "suspicious", ReportCount: 2},
		},
		{
			Slug:         "crypto-miner",
			Name:         "Crypto Miner",
			Description:  "Definitely not a miner",
			InstallCount: 3,
			VirusTotal:   &registry.ScanStatus{Status: "malicious", ReportCount: 9},
		},
		{
			Slug:        "notes",
			Name:        "Notes",
			Description: "Plain text notes",
		},
	}
}

// TestMeta returns the metadata document for a skill in TestSkills
func TestMeta(slug string) *registry.SkillMeta {
	for _, s := range TestSkills() {
		if s.Slug == slug {
			return &registry.SkillMeta{
				Slug:        s.Slug,
				Name:        s.Name,
				Description: s.Description,
				VirusTotal:  s.VirusTotal,
				Versions: []registry.SkillVersion{
					{Version: "1.0.0"},
					{Version: "2.0.1", Latest: true},
				},
			}
		}
	}
	return nil
}

// TestConfig returns a configuration rooted at dir
func TestConfig(dir string) *config.Config {
	return &config.Config{
		ConfigDir:       filepath.Join(dir, "config"),
		ConfigPath:      filepath.Join(dir, "config", config.ConfigFileName),
		Registry:        config.DefaultRegistry,
		SkillsDir:       filepath.Join(dir, "skills"),
		LockfilePath:    filepath.Join(dir, config.LockfileName),
		DownloadTimeout: time.Minute,
		SearchLimit:     config.DefaultSearchLimit,
	}
}

// ManySkills returns a larger set of results for scrolling tests
func ManySkills(count int) []registry.SearchResult {
	skills := make([]registry.SearchResult, count)
	for i := range skills {
		skills[i] = registry.SearchResult{
			Slug:         fmt.Sprintf("skill-%03d", i+1),
			Name:         fmt.Sprintf("Skill %d", i+1),
			Description:  fmt.Sprintf("Test skill number %d", i+1),
			InstallCount: int64(i * 100),
		}
	}
	return skills
}
