package memory

import (
	"testing"
	"time"

	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationStateRoundTrip(t *testing.T) {
	repo := NewOperationStateRepository()

	state := &models.OperationState{
		Settings:  models.OperationSettings{ContentType: "article", Taxonomy: "category"},
		TargetIDs: []int64{1, 2, 3},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Save(t.Context(), "admin", state, time.Minute))

	loaded, err := repo.Get(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, state.TargetIDs, loaded.TargetIDs)
	assert.Equal(t, "article", loaded.Settings.ContentType)

	require.NoError(t, repo.Delete(t.Context(), "admin"))

	_, err = repo.Get(t.Context(), "admin")
	assert.ErrorIs(t, err, persistence.ErrStateNotFound)
}

func TestOperationStateIsKeyedPerUser(t *testing.T) {
	repo := NewOperationStateRepository()

	first := &models.OperationState{TargetIDs: []int64{1}}
	second := &models.OperationState{TargetIDs: []int64{2}}

	require.NoError(t, repo.Save(t.Context(), "alice", first, time.Minute))
	require.NoError(t, repo.Save(t.Context(), "bob", second, time.Minute))

	loaded, err := repo.Get(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, loaded.TargetIDs)
}

func TestOperationStateLastSaveWins(t *testing.T) {
	repo := NewOperationStateRepository()

	require.NoError(t, repo.Save(t.Context(), "admin", &models.OperationState{TargetIDs: []int64{1}}, time.Minute))
	require.NoError(t, repo.Save(t.Context(), "admin", &models.OperationState{TargetIDs: []int64{2, 3}}, time.Minute))

	loaded, err := repo.Get(t.Context(), "admin")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, loaded.TargetIDs)
}

func TestOperationStateExpires(t *testing.T) {
	repo := NewOperationStateRepository()

	current := time.Now()
	repo.now = func() time.Time { return current }

	require.NoError(t, repo.Save(t.Context(), "admin", &models.OperationState{TargetIDs: []int64{1}}, time.Hour))

	current = current.Add(30 * time.Minute)

	_, err := repo.Get(t.Context(), "admin")
	require.NoError(t, err)

	current = current.Add(31 * time.Minute)

	_, err = repo.Get(t.Context(), "admin")
	assert.ErrorIs(t, err, persistence.ErrStateNotFound)
}

func TestContentFindItemIDsFiltersAndSorts(t *testing.T) {
	repo := NewContentRepository()

	repo.AddTerm("category", models.Term{ID: 5, Name: "Archive", Slug: "archive"})
	repo.AddTerm("category", models.Term{ID: 3, Name: "Sports", Slug: "sports"})

	repo.AddItem(30, "c", "article", "category", 5)
	repo.AddItem(10, "a", "article", "category", 3)
	repo.AddItem(20, "b", "article", "category", 5)
	repo.AddItem(40, "d", "page", "category", 5)

	ids, err := repo.FindItemIDs(t.Context(), persistence.ItemQuery{ContentType: "article", Taxonomy: "category"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids)

	ids, err = repo.FindItemIDs(t.Context(), persistence.ItemQuery{
		ContentType: "article",
		Taxonomy:    "category",
		TermIDs:     []int64{5},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30}, ids)
}

func TestContentTermCountsStayStaleUntilRefreshed(t *testing.T) {
	repo := NewContentRepository()

	repo.AddTerm("category", models.Term{ID: 5, Name: "Archive", Slug: "archive"})
	repo.AddItem(1, "one", "article", "category", 5)
	repo.AddItem(2, "two", "article", "category", 5)

	require.NoError(t, repo.DeleteItem(t.Context(), 1))

	term, err := repo.GetTerm(t.Context(), 5, "category")
	require.NoError(t, err)
	assert.Equal(t, int64(2), term.Count, "deletion does not propagate counts")

	require.NoError(t, repo.RefreshTermCounts(t.Context(), []int64{5}, "category"))

	term, err = repo.GetTerm(t.Context(), 5, "category")
	require.NoError(t, err)
	assert.Equal(t, int64(1), term.Count)
}

func TestContentMissingLookupsReturnSentinels(t *testing.T) {
	repo := NewContentRepository()

	_, err := repo.ItemTitle(t.Context(), 404)
	assert.ErrorIs(t, err, persistence.ErrItemNotFound)

	err = repo.DeleteItem(t.Context(), 404)
	assert.ErrorIs(t, err, persistence.ErrItemNotFound)

	_, err = repo.GetTerm(t.Context(), 404, "category")
	assert.ErrorIs(t, err, persistence.ErrTermNotFound)

	err = repo.DeleteTerm(t.Context(), 404, "category")
	assert.ErrorIs(t, err, persistence.ErrTermNotFound)
}

func TestActivityLogPurgeOlderThan(t *testing.T) {
	repo := NewActivityLogRepository()

	current := time.Now()
	repo.now = func() time.Time { return current }

	old := &models.LogEntry{Summary: "old", CreatedAt: current.UTC().AddDate(0, 0, -40)}
	fresh := &models.LogEntry{Summary: "fresh", CreatedAt: current.UTC().Add(-time.Hour)}

	require.NoError(t, repo.Append(t.Context(), old))
	require.NoError(t, repo.Append(t.Context(), fresh))

	removed, err := repo.PurgeOlderThan(t.Context(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := repo.List(t.Context(), persistence.LogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Summary)
}

func TestActivityLogListPagination(t *testing.T) {
	repo := NewActivityLogRepository()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(t.Context(), &models.LogEntry{
			Action: models.LogActionFind,
			Status: models.LogStatusInfo,
		}))
	}

	entries, err := repo.List(t.Context(), persistence.LogFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.List(t.Context(), persistence.LogFilter{Offset: 4})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = repo.List(t.Context(), persistence.LogFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
}
