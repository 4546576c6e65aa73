// Package skillmd reads SKILL.md files: YAML frontmatter between "---"
// markers followed by a markdown body.
package skillmd

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the skill definition file.
const FileName = "SKILL.md"

// ErrNoFrontmatter is returned when content does not open with a "---" block.
var ErrNoFrontmatter = errors.New("missing frontmatter")

// Frontmatter is the metadata block at the top of a SKILL.md.
type Frontmatter struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version,omitempty"`
	License     string         `yaml:"license,omitempty"`
	Metadata    map[string]any `yaml:"metadata,omitempty"`
}

// Document is a parsed SKILL.md.
type Document struct {
	Frontmatter Frontmatter
	Body        string
}

// Parse splits content into frontmatter and body and decodes the frontmatter.
func Parse(content string) (*Document, error) {
	raw, body, ok := splitFrontmatter(content)
	if !ok {
		return nil, ErrNoFrontmatter
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	fm.Name = strings.TrimSpace(fm.Name)
	fm.Description = strings.TrimSpace(fm.Description)
	return &Document{Frontmatter: fm, Body: body}, nil
}

// Validate checks the fields a loadable skill needs. dirName is the directory
// the skill is installed in; the frontmatter name must match it when set.
func (d *Document) Validate(dirName string) error {
	var problems []string
	if d.Frontmatter.Name == "" {
		problems = append(problems, "frontmatter has no name")
	} else if dirName != "" && d.Frontmatter.Name != dirName {
		problems = append(problems, fmt.Sprintf("name %q does not match directory %q", d.Frontmatter.Name, dirName))
	}
	if d.Frontmatter.Description == "" {
		problems = append(problems, "frontmatter has no description")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func splitFrontmatter(content string) (frontmatter, body string, ok bool) {
	content = strings.TrimPrefix(content, "\ufeff")
	lines := SplitLines(content)

	start := -1
	for i, line := range lines {
		if TrimSpace(line) == "" {
			continue
		}
		if TrimSpace(line) != "---" {
			return "", content, false
		}
		start = i
		break
	}
	if start < 0 {
		return "", content, false
	}
	for i := start + 1; i < len(lines); i++ {
		if TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[start+1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", content, false
}

// ExtractDescription extracts the description from SKILL.md content.
// It returns the frontmatter description field if present, or the full first
// paragraph of body text.
func ExtractDescription(content string) string {
	body := content
	if doc, err := Parse(content); err == nil {
		if doc.Frontmatter.Description != "" {
			return doc.Frontmatter.Description
		}
		body = doc.Body
	} else if _, rest, ok := splitFrontmatter(content); ok {
		body = rest
	}

	var para []string
	for _, line := range SplitLines(body) {
		trimmed := TrimSpace(line)

		// Skip headings, code fences and list markers
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "-") {
			continue
		}

		// Collect contiguous non-empty lines as first paragraph
		if trimmed == "" {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, trimmed)
	}
	return strings.Join(para, " ")
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SplitLines splits a string into lines on newline boundaries.
func SplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// TrimSpace trims leading and trailing spaces, tabs, and carriage returns.
func TrimSpace(s string) string {
	return strings.Trim(s, " \t\r")
}
