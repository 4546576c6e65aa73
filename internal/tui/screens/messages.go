package screens

import "clawhub/internal/registry"

// Screen messages. Screens never call the gateway; the app turns these into
// commands.
type (
	// SearchMsg asks for a registry search.
	SearchMsg struct {
		Query string
	}
	// SelectSkillMsg asks for the detail view of a skill.
	SelectSkillMsg struct {
		Slug string
	}
	// InstallSkillMsg asks to install a skill. An empty Version means latest.
	InstallSkillMsg struct {
		Slug    string
		Version string
		Scan    *registry.ScanStatus
	}
	// ShowInstalledMsg switches to the installed skills view.
	ShowInstalledMsg struct{}
	// BackMsg leaves the current screen.
	BackMsg struct{}
)

// searchTickMsg fires after typing pauses in the search box.
type searchTickMsg struct {
	seq   int
	query string
}

func scanStatus(s *registry.ScanStatus) string {
	if s == nil {
		return ""
	}
	return s.Status
}
