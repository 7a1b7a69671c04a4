// Package web provides the HTTP handlers and REST API endpoints for
// bulk deletion operations and the activity log.
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/executor"
	"github.com/contentools/reaper/pkg/finder"
	"github.com/contentools/reaper/pkg/models"
	"github.com/contentools/reaper/pkg/persistence"
	"github.com/contentools/reaper/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	finder    *finder.Finder
	executor  *executor.Executor
	activity  *activitylog.Logger
	sweeper   *activitylog.Sweeper
	states    persistence.OperationStateRepository
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	itemFinder *finder.Finder,
	batchExecutor *executor.Executor,
	activity *activitylog.Logger,
	sweeper *activitylog.Sweeper,
	states persistence.OperationStateRepository,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		finder:    itemFinder,
		executor:  batchExecutor,
		activity:  activity,
		sweeper:   sweeper,
		states:    states,
		validator: validator,
		registry:  registry,
	}
}

// actingUser resolves the user an operation is keyed by. Requests that
// omit the header share a single anonymous slot.
func actingUser(c fiber.Ctx) string {
	user := c.Get(UserHeader)
	if user == "" {
		user = "anonymous"
	}

	return user
}

func (h *APIHandlers) GetContentTypes(c fiber.Ctx) error {
	return c.JSON(ContentTypesResponse{ContentTypes: h.registry.Types()})
}

func (h *APIHandlers) Find(c fiber.Ctx) error {
	var req FindRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	settings := models.OperationSettings{
		ContentType:      req.ContentType,
		Taxonomy:         req.Taxonomy,
		TermFilter:       req.TermFilter,
		DeleteEmptyTerms: req.DeleteEmptyTerms,
	}

	result, err := h.finder.Find(c.Context(), actingUser(c), settings)
	if err != nil {
		return handleServiceError(c, err)
	}

	message := fmt.Sprintf("Found %d items", result.Count)
	if result.Count == 0 {
		message = "No items matched the selection"
	}

	return c.JSON(FindResponse{
		Success:  true,
		Message:  message,
		Items:    result.Items,
		Count:    result.Count,
		Messages: result.Messages,
	})
}

func (h *APIHandlers) DeleteBatch(c fiber.Ctx) error {
	var req BatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.executor.ProcessBatch(c.Context(), actingUser(c), req.IDs, req.IsLastBatch)
	if err != nil {
		return handleServiceError(c, err)
	}

	response := BatchResponse{
		Success:               result.Errors == 0,
		Message:               fmt.Sprintf("Deleted %d of %d items", result.Deleted, result.Attempted),
		AttemptedCount:        result.Attempted,
		DeletedCount:          result.Deleted,
		ErrorCount:            result.Errors,
		Details:               result.Details,
		FinalOperationMessage: result.FinalMessage,
	}

	// Per-item errors surface the call as failed, with the full counts
	// payload intact. Callers read the counts either way.
	if result.Errors > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(response)
	}

	return c.JSON(response)
}

func (h *APIHandlers) GetLogs(c fiber.Ctx) error {
	filter, err := h.parseLogFilter(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	entries, err := h.activity.List(c.Context(), *filter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(LogsResponse{Entries: entries, Count: len(entries)})
}

func (h *APIHandlers) parseLogFilter(c fiber.Ctx) (*persistence.LogFilter, error) {
	filter := &persistence.LogFilter{
		Action: models.LogAction(c.Query("action")),
		Status: models.LogStatus(c.Query("status")),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		filter.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		filter.Offset = offset
	}

	return filter, nil
}

func (h *APIHandlers) PurgeLogs(c fiber.Ctx) error {
	removed, err := h.sweeper.RunOnce(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(PurgeResponse{Removed: removed})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	statesErr := h.states.HealthCheck(c.Context())
	logErr := h.activity.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Reaper API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && statesErr == nil && logErr == nil {
		status = "healthy"
		message = "Reaper API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":        registryCheck,
			"operation_state": checkMessage(statesErr),
			"activity_log":    checkMessage(logErr),
		},
		"timestamp": time.Now().UTC(),
	})
}

func checkMessage(err error) string {
	if err != nil {
		return err.Error()
	}

	return "ok"
}
