package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/cleanup"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/executor"
	"github.com/contentools/reaper/pkg/finder"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence/memory"
	"github.com/contentools/reaper/pkg/registry"
	"github.com/contentools/reaper/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webFixture struct {
	app    *fiber.App
	states *memory.OperationStateRepository
	logs   *memory.ActivityLogRepository
}

func setupTestApp(t *testing.T) *webFixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	reg := registry.NewRegistry(logger)
	reg.Register(&models.ContentType{
		ID:    "article",
		Label: "Article",
		Taxonomies: []models.Taxonomy{
			{ID: "category", Label: "Category"},
		},
	})

	content := memory.NewContentRepository()
	content.AddTerm("category", models.Term{ID: 5, Name: "News Archive", Slug: "news-archive"})
	content.AddTerm("category", models.Term{ID: 3, Name: "Sports", Slug: "sports"})
	content.AddItem(101, "First", "article", "category", 5)
	content.AddItem(102, "Second", "article", "category", 5)
	content.AddItem(103, "Third", "article", "category", 3)

	states := memory.NewOperationStateRepository()
	logs := memory.NewActivityLogRepository()
	activity := activitylog.New(logs, logger)
	bus := eventbus.NewNopEventBus()

	itemFinder := finder.NewFinder(reg, content, states, activity, bus, logger, nil)
	cleaner := cleanup.NewCleaner(content, activity, bus, logger)
	batchExecutor := executor.NewExecutor(content, states, cleaner, activity, bus, logger, nil)
	sweeper := activitylog.NewSweeper(logs, activity, logger, 30)

	handlers := web.NewAPIHandlers(
		itemFinder,
		batchExecutor,
		activity,
		sweeper,
		states,
		validator.New(validator.WithRequiredStructEnabled()),
		reg,
	)

	app := fiber.New()
	app.Get("/content-types", handlers.GetContentTypes)
	app.Post("/operations/find", handlers.Find)
	app.Post("/operations/batch", handlers.DeleteBatch)
	app.Get("/logs", handlers.GetLogs)
	app.Post("/logs/purge", handlers.PurgeLogs)
	app.Get("/health", handlers.HealthCheck)

	return &webFixture{app: app, states: states, logs: logs}
}

func (f *webFixture) request(t *testing.T, method, path string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(web.UserHeader, "admin")

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	responseBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, responseBody
}

func decodeInto[T any](t *testing.T, body []byte) T {
	t.Helper()

	var out T

	require.NoError(t, json.Unmarshal(body, &out))

	return out
}

func TestFindEndpointReturnsMatches(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodPost, "/operations/find", web.FindRequest{
		ContentType: "article",
		Taxonomy:    "category",
		TermFilter:  "archive",
	})
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.FindResponse](t, body)
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Items, 2)
	assert.Equal(t, int64(101), response.Items[0].ID)
	assert.NotEmpty(t, response.Messages)
}

func TestFindEndpointRejectsInvalidSelection(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodPost, "/operations/find", web.FindRequest{
		ContentType: "video",
		Taxonomy:    "category",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "invalid")
}

func TestFindEndpointValidatesRequiredFields(t *testing.T) {
	f := setupTestApp(t)

	status, _ := f.request(t, http.MethodPost, "/operations/find", web.FindRequest{ContentType: "article"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBatchEndpointDeletesItems(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodPost, "/operations/batch", web.BatchRequest{IDs: []int64{101, 102}})
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.BatchResponse](t, body)
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.DeletedCount)
	assert.Zero(t, response.ErrorCount)
	assert.Empty(t, response.FinalOperationMessage)
}

func TestBatchEndpointSurfacesPartialFailureAs422WithCounts(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodPost, "/operations/batch", web.BatchRequest{IDs: []int64{101, 999}})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// The failed call still carries the full counts payload.
	response := decodeInto[web.BatchResponse](t, body)
	assert.False(t, response.Success)
	assert.Equal(t, 2, response.AttemptedCount)
	assert.Equal(t, 1, response.DeletedCount)
	assert.Equal(t, 1, response.ErrorCount)
	assert.NotEmpty(t, response.Details)
}

func TestBatchEndpointRejectsEmptyBatch(t *testing.T) {
	f := setupTestApp(t)

	status, _ := f.request(t, http.MethodPost, "/operations/batch", map[string]any{"ids": []int64{}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLastBatchCarriesFinalMessage(t *testing.T) {
	f := setupTestApp(t)

	require.NoError(t, f.states.Save(t.Context(), "admin", &models.OperationState{
		Settings: models.OperationSettings{
			ContentType:      "article",
			Taxonomy:         "category",
			DeleteEmptyTerms: true,
			CandidateTermIDs: []int64{5},
		},
		TargetIDs: []int64{101, 102},
		CreatedAt: time.Now().UTC(),
	}, models.DefaultStateTTL))

	status, body := f.request(t, http.MethodPost, "/operations/batch", web.BatchRequest{
		IDs:         []int64{101, 102},
		IsLastBatch: true,
	})
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.BatchResponse](t, body)
	assert.Contains(t, response.FinalOperationMessage, "removed 1 empty terms")
}

func TestLogsEndpointFiltersByActionAndStatus(t *testing.T) {
	f := setupTestApp(t)

	f.request(t, http.MethodPost, "/operations/find", web.FindRequest{ContentType: "article", Taxonomy: "category"})
	f.request(t, http.MethodPost, "/operations/batch", web.BatchRequest{IDs: []int64{999}})

	status, body := f.request(t, http.MethodGet, "/logs?action=delete_batch&status=error", nil)
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.LogsResponse](t, body)
	require.Equal(t, 1, response.Count)
	assert.Equal(t, models.LogActionDeleteBatch, response.Entries[0].Action)
	assert.Equal(t, models.LogStatusError, response.Entries[0].Status)
}

func TestLogsPurgeEndpoint(t *testing.T) {
	f := setupTestApp(t)

	require.NoError(t, f.logs.Append(t.Context(), &models.LogEntry{
		Summary:   "ancient",
		CreatedAt: time.Now().UTC().AddDate(0, 0, -60),
	}))

	status, body := f.request(t, http.MethodPost, "/logs/purge", nil)
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.PurgeResponse](t, body)
	assert.Equal(t, int64(1), response.Removed)
}

func TestContentTypesEndpoint(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodGet, "/content-types", nil)
	require.Equal(t, http.StatusOK, status)

	response := decodeInto[web.ContentTypesResponse](t, body)
	require.Len(t, response.ContentTypes, 1)
	assert.Equal(t, "article", response.ContentTypes[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	f := setupTestApp(t)

	status, body := f.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "healthy")
}
