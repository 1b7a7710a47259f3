package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartcity/crimedash/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, dashboardSvc *service.DashboardService) {
	handler := NewHandler(dashboardSvc)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Filter controls
		api.Get("/filters", handler.GetFilterOptions)

		// Chart endpoints (one per dashboard action)
		api.Get("/charts", handler.ListCharts)
		api.Get("/charts/:kind", handler.GetChart)
		api.Get("/charts/:kind/image", handler.GetChartImage)

		// Display surface (latest submission wins)
		api.Post("/display/:kind", handler.SubmitDisplay)
		api.Get("/display", handler.GetDisplay)
		api.Get("/display/image", handler.GetDisplayImage)

		// Query history
		api.Get("/queries", handler.GetRecentQueries)
	}
}

// ErrorHandler renders errors as the JSON envelope used by every endpoint
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
