package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	token       string
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	token string,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		token:       token,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, web.NewSimulator(a.persistence), a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			return handlers.HealthCheck(c.Context())
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Studio dev server")
	})

	app.Use("/api", web.BearerAuth(a.token))
	handlers.Register(app)

	return app
}

// SeedTemplates stores the built-in templates into an empty store.
func (a *API) SeedTemplates(ctx context.Context) error {
	seeded, err := web.SeedTemplates(ctx, a.persistence)
	if err != nil {
		return err
	}

	if seeded > 0 {
		a.logger.InfoContext(ctx, "Seeded built-in templates", "count", seeded)
	}

	return nil
}

func (a *API) Start(port int) error {
	return a.App().Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
}

// Serve runs the server on an existing listener.
func (a *API) Serve(ln net.Listener) (*fiber.App, chan error) {
	app := a.App()
	errs := make(chan error, 1)

	go func() {
		errs <- app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	return app, errs
}
