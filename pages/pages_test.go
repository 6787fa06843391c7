package pages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSVPBot/model"
)

func TestDefaultHasAllSitePages(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, id := range []string{"home", "location", "faq", "schedule", "gallery", "things-to-do", "registry", "rsvp"} {
		p, err := c.Get(id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, p.Title, id)
	}

	reg, err := c.Get(Registry)
	require.NoError(t, err)
	require.NotEmpty(t, reg.Links)
	assert.True(t, strings.HasPrefix(reg.Links[0].URL, "https://"))
}

func TestGetUnknownPage(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	_, err = c.Get("honeymoon")
	assert.ErrorIs(t, err, model.ErrPageNotFound)
}

func TestParseRejectsIncompleteCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "missing page", yaml: "pages:\n  - id: home\n    title: Home\n", want: `missing page "location"`},
		{name: "duplicate", yaml: "pages:\n  - id: home\n  - id: home\n", want: `duplicate page "home"`},
		{name: "no id", yaml: "pages:\n  - title: Orphan\n", want: "has no id"},
		{name: "bad yaml", yaml: "pages: [", want: "error parsing pages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadOverrideFile(t *testing.T) {
	var b strings.Builder
	b.WriteString("pages:\n")
	for _, id := range RequiredIDs {
		b.WriteString("  - id: " + id + "\n    title: T " + id + "\n")
	}
	path := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	p, err := c.Get(FAQ)
	require.NoError(t, err)
	assert.Equal(t, "T faq", p.Title)
	assert.Len(t, c.All(), len(RequiredIDs))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
