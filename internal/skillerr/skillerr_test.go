package skillerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Wrap(KindParse, "op", nil))
	assert.NoError(t, WithStatus("op", http.StatusNotFound, nil))
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	t.Parallel()

	base := New(KindGateDenied, "gate", "malicious")
	wrapped := fmt.Errorf("install weather: %w", base)

	assert.Equal(t, KindGateDenied, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindGateDenied))
	assert.False(t, Retryable(wrapped))
	assert.Equal(t, "install weather: gate: malicious", wrapped.Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindUnknown))
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("get skill: %w", WithStatus("GET /api/v1/skills/x", http.StatusNotFound, errors.New("status 404")))
	require.True(t, Retryable(err))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.True(t, IsHTTPNotFound(err))
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
}

func TestHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindRegistry, "registry"},
		{KindNotFound, "slug"},
		{KindGateDenied, "security gate"},
		{KindFilesystem, "permissions"},
		{KindParse, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, Hint(New(tt.kind, "", "boom")), tt.want)
		})
	}
	assert.Empty(t, Hint(errors.New("plain")))
}
