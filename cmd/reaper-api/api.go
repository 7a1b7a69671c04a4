// Package main provides the Reaper API server implementation.
package main

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strconv"

	"github.com/contentools/reaper/pkg/activitylog"
	"github.com/contentools/reaper/pkg/cleanup"
	"github.com/contentools/reaper/pkg/cmd"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/executor"
	"github.com/contentools/reaper/pkg/finder"
	"github.com/contentools/reaper/pkg/log"
	"github.com/contentools/reaper/pkg/otelhelper"
	"github.com/contentools/reaper/pkg/registry"
	"github.com/contentools/reaper/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/keyauth"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger        *slog.Logger
	stores        *cmd.Stores
	registry      *registry.Registry
	eventBus      eventbus.EventBus
	apiToken      string
	retentionDays int
	validate      *validator.Validate
	sweeper       *activitylog.Sweeper
}

func NewAPI(
	logger *slog.Logger,
	stores *cmd.Stores,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	apiToken string,
	retentionDays int,
) *API {
	return &API{
		logger:        logger,
		stores:        stores,
		registry:      registry,
		eventBus:      eventBus,
		apiToken:      apiToken,
		retentionDays: retentionDays,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App(ctx context.Context) (*fiber.App, error) {
	tracer, err := otelhelper.NewTracer(ctx, "reaper-api")
	if err != nil {
		a.logger.WarnContext(ctx, "Tracing disabled, failed to initialize tracer", "error", err)

		tracer = nil
	}

	activity := activitylog.New(a.stores.ActivityLog, log.WithModule("activity_log"))

	a.sweeper = activitylog.NewSweeper(a.stores.ActivityLog, activity, a.logger, a.retentionDays)

	err = a.sweeper.Start(ctx)
	if err != nil {
		return nil, err
	}

	itemFinder := finder.NewFinder(a.registry, a.stores.Content, a.stores.States, activity, a.eventBus, a.logger, tracer)
	cleaner := cleanup.NewCleaner(a.stores.Content, activity, a.eventBus, a.logger)
	batchExecutor := executor.NewExecutor(a.stores.Content, a.stores.States, cleaner, activity, a.eventBus, a.logger, tracer)

	handlers := web.NewAPIHandlers(itemFinder, batchExecutor, activity, a.sweeper, a.stores.States, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Reaper API")
	})

	app.Get("/health", handlers.HealthCheck)

	if a.apiToken != "" {
		app.Use(keyauth.New(keyauth.Config{
			Validator: a.validateToken,
		}))
	} else {
		a.logger.WarnContext(ctx, "No API token configured, endpoints are unauthenticated")
	}

	app.Get("/content-types", handlers.GetContentTypes)

	operations := app.Group("/operations")
	operations.Post("/find", handlers.Find)
	operations.Post("/batch", handlers.DeleteBatch)

	logs := app.Group("/logs")
	logs.Get("/", handlers.GetLogs)
	logs.Post("/purge", handlers.PurgeLogs)

	return app, nil
}

func (a *API) validateToken(_ fiber.Ctx, key string) (bool, error) {
	if subtle.ConstantTimeCompare([]byte(key), []byte(a.apiToken)) == 1 {
		return true, nil
	}

	return false, keyauth.ErrMissingOrMalformedAPIKey
}

func (a *API) Start(ctx context.Context, port int) error {
	app, err := a.App(ctx)
	if err != nil {
		return err
	}

	defer a.sweeper.Stop()

	return app.Listen(":" + strconv.Itoa(port))
}
