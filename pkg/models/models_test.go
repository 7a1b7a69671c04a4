package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampBatchSize(t *testing.T) {
	cases := []struct {
		name     string
		size     int
		expected int
	}{
		{"zero falls back to default", 0, DefaultBatchSize},
		{"negative falls back to default", -5, DefaultBatchSize},
		{"within bounds", 200, 200},
		{"minimum", 1, 1},
		{"above maximum", 5000, MaxBatchSize},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClampBatchSize(tc.size))
		})
	}
}

func TestClampBatchPause(t *testing.T) {
	assert.Equal(t, time.Duration(0), ClampBatchPause(-time.Second))
	assert.Equal(t, 10*time.Second, ClampBatchPause(10*time.Second))
	assert.Equal(t, MaxBatchPause, ClampBatchPause(5*time.Minute))
}

func TestValidRetentionDays(t *testing.T) {
	for _, days := range RetentionChoices {
		assert.Truef(t, ValidRetentionDays(days), "%d should be a valid retention period", days)
	}

	assert.False(t, ValidRetentionDays(-1))
	assert.False(t, ValidRetentionDays(42))
	assert.False(t, ValidRetentionDays(400))
}

func TestHasTaxonomy(t *testing.T) {
	contentType := &ContentType{
		ID:    "article",
		Label: "Article",
		Taxonomies: []Taxonomy{
			{ID: "category", Label: "Category"},
			{ID: "tag", Label: "Tag"},
		},
	}

	assert.True(t, contentType.HasTaxonomy("category"))
	assert.True(t, contentType.HasTaxonomy("tag"))
	assert.False(t, contentType.HasTaxonomy("section"))
}
