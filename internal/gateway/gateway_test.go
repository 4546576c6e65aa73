package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"clawhub/internal/archive/archivetest"
	"clawhub/internal/config"
	"clawhub/internal/install"
	"clawhub/internal/registry"
	"clawhub/internal/registry/mocks"
)

func TestRegistryGateway_DelegatesToRegistry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	gw := New(reg)
	ctx := context.Background()

	reg.EXPECT().Search(ctx, "pdf", 5, registry.SortInstalls).
		Return([]registry.SearchResult{{Slug: "pdf"}}, nil)
	reg.EXPECT().GetSkill(ctx, "pdf").Return(&registry.SkillMeta{Slug: "pdf"}, nil)
	reg.EXPECT().GetVersions(ctx, "pdf").Return([]registry.SkillVersion{{Version: "1.2.0", Latest: true}}, nil)

	results, err := gw.Search(ctx, "pdf", 5, registry.SortInstalls)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	meta, err := gw.GetSkill(ctx, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", meta.Slug)

	versions, err := gw.Versions(ctx, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", versions[0].Version)
}

func TestRegistryGateway_InstallListRemove(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	root := t.TempDir()
	skillsDir := filepath.Join(root, "skills")
	lockPath := filepath.Join(root, "lock.json")
	fixed := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	gw := New(reg, install.WithClock(func() time.Time { return fixed }))

	reg.EXPECT().GetSkill(gomock.Any(), "pdf").Return(&registry.SkillMeta{
		Slug:       "pdf",
		Versions:   []registry.SkillVersion{{Version: "1.2.0", Latest: true}},
		VirusTotal: &registry.ScanStatus{Status: "clean"},
	}, nil)
	reg.EXPECT().Download(gomock.Any(), "pdf", "1.2.0").Return(archivetest.Skill(t, "pdf", "1.2.0", nil), nil)

	res, err := gw.Install(context.Background(), "pdf", "", skillsDir, lockPath, install.Options{})
	require.NoError(t, err)
	assert.True(t, res.RequiresRestart)

	lock, err := gw.ReadLockfile(lockPath)
	require.NoError(t, err)
	entry, ok := lock.Get("pdf")
	require.True(t, ok)
	assert.Equal(t, "1.2.0", entry.InstalledVersion)
	assert.True(t, fixed.Equal(entry.InstalledAt))

	removed, err := gw.Remove("pdf", skillsDir, lockPath)
	require.NoError(t, err)
	assert.True(t, removed)

	lock, err = gw.ReadLockfile(lockPath)
	require.NoError(t, err)
	assert.Empty(t, lock.Slugs())
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	gw := FromConfig(&config.Config{
		Registry:        srv.URL,
		Token:           "secret",
		DownloadTimeout: time.Minute,
	}, "clawhub/test")

	results, err := gw.Search(context.Background(), "anything", 10, "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "clawhub/test", gotUA)
}
