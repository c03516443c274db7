package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"blend-swap/pkg/observability"
)

const shutdownTimeout = 3 * time.Second

// NewApp registers the blend routes on a new fiber app. The metrics route is
// only mounted when metrics is non-nil.
func NewApp(h *Handler, metrics *observability.Metrics) *fiber.App {
	app := fiber.New()

	app.Get("/blend", h.GetBlend())
	app.Post("/blend/legs", h.AddLeg())
	app.Put("/blend/legs/:index", h.UpdateLeg())
	app.Delete("/blend/legs/:index", h.RemoveLeg())
	app.Post("/blend/legs/:index/approve", h.Approve())
	app.Put("/blend/output", h.SetOutput())
	app.Put("/blend/recipient", h.SetRecipient())
	app.Post("/blend/undo", h.Undo())
	app.Post("/blend/reset", h.Reset())
	app.Post("/blend/submit", h.Submit())
	app.Get("/transactions", h.ListTransactions())

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}
	return app
}

// Run serves app on addr until ctx is done or the listener fails.
func Run(ctx context.Context, app *fiber.App, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
