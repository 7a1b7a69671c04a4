package registry

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/contentools/reaper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDocument = `{
  "content_types": [
    {
      "id": "article",
      "label": "Article",
      "taxonomies": [
        {"id": "category", "label": "Category"},
        {"id": "tag", "label": "Tag"}
      ]
    },
    {
      "id": "page",
      "label": "Page",
      "taxonomies": [
        {"id": "section", "label": "Section"}
      ]
    }
  ]
}`

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry(slog.New(slog.DiscardHandler))
	require.NoError(t, reg.Load([]byte(validDocument)))

	return reg
}

func TestLoadValidDocument(t *testing.T) {
	reg := newTestRegistry(t)

	types := reg.Types()
	require.Len(t, types, 2)

	// Sorted by label.
	assert.Equal(t, "article", types[0].ID)
	assert.Equal(t, "page", types[1].ID)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name     string
		document string
	}{
		{"not json", `{"content_types": [`},
		{"missing label", `{"content_types": [{"id": "article", "taxonomies": [{"id": "c", "label": "C"}]}]}`},
		{"empty taxonomies", `{"content_types": [{"id": "article", "label": "Article", "taxonomies": []}]}`},
		{"missing content_types", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry(slog.New(slog.DiscardHandler))
			assert.Error(t, reg.Load([]byte(tc.document)))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(validDocument), 0o600))

	reg := NewRegistry(slog.New(slog.DiscardHandler))
	require.NoError(t, reg.LoadFile(path))

	assert.NotNil(t, reg.Lookup("article"))
}

func TestLoadFileMissing(t *testing.T) {
	reg := NewRegistry(slog.New(slog.DiscardHandler))
	assert.Error(t, reg.LoadFile(filepath.Join(t.TempDir(), "nope.json")))
}

func TestValidatePair(t *testing.T) {
	reg := newTestRegistry(t)

	cases := []struct {
		name        string
		contentType string
		taxonomy    string
		valid       bool
	}{
		{"registered pair", "article", "category", true},
		{"second taxonomy", "article", "tag", true},
		{"unknown content type", "video", "category", false},
		{"taxonomy of another type", "article", "section", false},
		{"unknown taxonomy", "page", "tag", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.ValidatePair(tc.contentType, tc.taxonomy)

			if tc.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, IsInvalidSelection(err))
			}
		})
	}
}

func TestLookupUnknownReturnsNil(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Nil(t, reg.Lookup("video"))
}

func TestHealthCheck(t *testing.T) {
	empty := NewRegistry(slog.New(slog.DiscardHandler))

	_, ok := empty.HealthCheck()
	assert.False(t, ok)

	message, ok := newTestRegistry(t).HealthCheck()
	assert.True(t, ok)
	assert.Contains(t, message, "2 content types")
}

func TestRegisterAddsSingleType(t *testing.T) {
	reg := NewRegistry(slog.New(slog.DiscardHandler))
	reg.Register(&models.ContentType{
		ID:         "article",
		Label:      "Article",
		Taxonomies: []models.Taxonomy{{ID: "category", Label: "Category"}},
	})

	assert.NoError(t, reg.ValidatePair("article", "category"))
}
