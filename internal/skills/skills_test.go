package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(path, 0o755))
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(path, "SKILL.md"), []byte(content), 0o644))
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSkill(t, dir, "weather", "---\nname: weather\ndescription: Forecasts\n---\n# Weather\n")
	writeSkill(t, dir, "pdf", "---\nname: pdf-tools\ndescription: PDF\n---\n")
	writeSkill(t, dir, "empty", "")
	writeSkill(t, dir, "notes", "# Notes\n\nPlain markdown without frontmatter\n")
	writeSkill(t, dir, ".staging-weather-1234", "---\nname: weather\ndescription: x\n---\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))

	all, err := Scan(dir)
	require.NoError(t, err)

	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"empty", "notes", "pdf", "weather"}, names)

	byName := map[string]LocalSkill{}
	for _, s := range all {
		byName[s.Name] = s
	}
	assert.True(t, byName["weather"].Valid())
	assert.Equal(t, "Forecasts", byName["weather"].Description)
	assert.Equal(t, []string{"missing SKILL.md"}, byName["empty"].Problems)
	assert.Equal(t, []string{"missing frontmatter"}, byName["notes"].Problems)
	assert.Equal(t, "Plain markdown without frontmatter", byName["notes"].Description)
	require.Len(t, byName["pdf"].Problems, 1)
	assert.Contains(t, byName["pdf"].Problems[0], "does not match directory")

	valid := Valid(all)
	require.Len(t, valid, 1)
	assert.Equal(t, "weather", valid[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	t.Parallel()

	all, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, all)
}
