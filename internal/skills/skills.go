// Package skills scans the local skills directory.
package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clawhub/internal/skillmd"
)

// LocalSkill is a directory under the skills directory.
type LocalSkill struct {
	Name        string
	Path        string
	Description string
	// Problems is empty for skills the host can load.
	Problems []string
}

// Valid reports whether the skill can be loaded.
func (s LocalSkill) Valid() bool {
	return len(s.Problems) == 0
}

// Scan returns every skill directory under skillsDir sorted by name. Hidden
// entries (staging and backup directories among them) are skipped. A missing
// skills directory yields no skills.
func Scan(skillsDir string) ([]LocalSkill, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read skills directory: %w", err)
	}

	var result []LocalSkill
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		result = append(result, inspect(filepath.Join(skillsDir, entry.Name())))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Valid filters skills down to the loadable ones.
func Valid(all []LocalSkill) []LocalSkill {
	var valid []LocalSkill
	for _, s := range all {
		if s.Valid() {
			valid = append(valid, s)
		}
	}
	return valid
}

func inspect(dir string) LocalSkill {
	skill := LocalSkill{Name: filepath.Base(dir), Path: dir}

	content, err := os.ReadFile(filepath.Join(dir, skillmd.FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			skill.Problems = append(skill.Problems, "missing "+skillmd.FileName)
		} else {
			skill.Problems = append(skill.Problems, fmt.Sprintf("unreadable %s: %v", skillmd.FileName, err))
		}
		return skill
	}

	skill.Description = skillmd.ExtractDescription(string(content))
	doc, err := skillmd.Parse(string(content))
	if err != nil {
		skill.Problems = append(skill.Problems, err.Error())
		return skill
	}
	if err := doc.Validate(skill.Name); err != nil {
		skill.Problems = append(skill.Problems, err.Error())
	}
	return skill
}
