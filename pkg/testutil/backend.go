package testutil

import (
	"log/slog"
	"net"
	"testing"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence/file"
	"github.com/dukex/operion-studio/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend is a development backend listening on a loopback port for the
// duration of a test.
type Backend struct {
	URL   string
	Store *file.Persistence
}

// StartBackend serves the workflow, node-type and execution endpoints over a
// temporary file store. Requests must carry token.
func StartBackend(t *testing.T, token string) Backend {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	handlers := web.NewAPIHandlers(slog.Default(), store, web.NewSimulator(store), validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	app.Use(web.BearerAuth(token))
	handlers.Register(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errs := make(chan error, 1)

	go func() {
		errs <- app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	t.Cleanup(func() {
		assert.NoError(t, app.Shutdown())
		<-errs
	})

	return Backend{URL: "http://" + ln.Addr().String(), Store: store}
}

// Seed stores workflow directly and returns its id.
func (b Backend) Seed(t *testing.T, workflow models.Workflow) int64 {
	t.Helper()

	require.NoError(t, b.Store.SaveWorkflow(t.Context(), &workflow))

	return workflow.ID
}
