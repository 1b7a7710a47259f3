package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/smartcity/crimedash/internal/analytics"
	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/internal/service"
	"github.com/smartcity/crimedash/pkg/utils"
)

// Query log listing bounds
const (
	defaultQueryLimit = 20
	maxQueryLimit     = 200
)

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
}

// NewHandler creates a new handler
func NewHandler(dashboardSvc *service.DashboardService) *Handler {
	return &Handler{dashboardSvc: dashboardSvc}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.dashboardSvc.Health(c.Context()); err != nil {
		storage = err.Error()
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "crimedash",
		"version": "1.0.0",
		"storage": storage,
	})
}

// GetFilterOptions returns the values offered by the filter selectors
func (h *Handler) GetFilterOptions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":  true,
		"data":     h.dashboardSvc.FilterOptions(),
		"defaults": h.dashboardSvc.DefaultCriteria(),
	})
}

// ListCharts returns the available chart kinds
func (h *Handler) ListCharts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    domain.Charts(),
	})
}

// GetChart returns the derived view of a chart kind as JSON
func (h *Handler) GetChart(c *fiber.Ctx) error {
	kind, raw, err := h.chartRequest(c)
	if err != nil {
		return err
	}

	result, err := h.dashboardSvc.Chart(c.Context(), kind, raw)
	if err != nil {
		return chartError(err)
	}

	return c.JSON(domain.ChartResponse{
		Data:    result,
		Success: true,
	})
}

// GetChartImage renders a chart kind as PNG
func (h *Handler) GetChartImage(c *fiber.Ctx) error {
	kind, raw, err := h.chartRequest(c)
	if err != nil {
		return err
	}

	img, result, err := h.dashboardSvc.ChartImage(c.Context(), kind, raw)
	if err != nil {
		return chartError(err)
	}

	c.Set("X-Result-Rows", strconv.Itoa(result.Total))
	c.Set("X-Filter-Fallback", strconv.FormatBool(result.FilterFallback))
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(img)
}

// SubmitDisplay starts rendering a chart for the display surface
func (h *Handler) SubmitDisplay(c *fiber.Ctx) error {
	kind, raw, err := h.chartRequest(c)
	if err != nil {
		return err
	}

	gen := h.dashboardSvc.Submit(kind, raw)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success":    true,
		"generation": gen,
	})
}

// GetDisplay returns the frame currently shown on the display surface
func (h *Handler) GetDisplay(c *fiber.Ctx) error {
	frame, ok := h.dashboardSvc.Current()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Nothing displayed yet")
	}

	return c.JSON(fiber.Map{
		"success": frame.Error == "",
		"data":    frame,
	})
}

// GetDisplayImage returns the PNG of the frame on the display surface
func (h *Handler) GetDisplayImage(c *fiber.Ctx) error {
	frame, ok := h.dashboardSvc.Current()
	if !ok || len(frame.Image) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "No chart image displayed")
	}

	c.Set("X-Generation", strconv.FormatUint(frame.Generation, 10))
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(frame.Image)
}

// GetRecentQueries returns the newest query log entries
func (h *Handler) GetRecentQueries(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultQueryLimit)
	if limit < 1 || limit > maxQueryLimit {
		limit = defaultQueryLimit
	}

	data, err := h.dashboardSvc.RecentQueries(c.Context(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch query log")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// chartRequest reads the chart kind and the filter controls of a request
func (h *Handler) chartRequest(c *fiber.Ctx) (domain.ChartKind, domain.RawCriteria, error) {
	kind, ok := domain.ParseChartKind(c.Params("kind"))
	if !ok {
		return "", domain.RawCriteria{}, fiber.NewError(fiber.StatusNotFound, "Unknown chart kind")
	}

	raw, err := parseCriteria(c, h.dashboardSvc.DefaultCriteria())
	if err != nil {
		return "", domain.RawCriteria{}, err
	}
	return kind, raw, nil
}

// parseCriteria overlays query parameters on the default control values.
// Dates are passed through unparsed so malformed input reaches the filter.
func parseCriteria(c *fiber.Ctx, defaults domain.RawCriteria) (domain.RawCriteria, error) {
	raw := domain.RawCriteria{
		Start:     c.Query("start", defaults.Start),
		End:       c.Query("end", defaults.End),
		Area:      c.Query("area", defaults.Area),
		CrimeType: c.Query("crime", defaults.CrimeType),
		Outcome:   c.Query("outcome", defaults.Outcome),
	}

	var err error
	if raw.MinAge, err = ageParam(c, "min_age", defaults.MinAge); err != nil {
		return raw, err
	}
	if raw.MaxAge, err = ageParam(c, "max_age", defaults.MaxAge); err != nil {
		return raw, err
	}
	return raw, nil
}

func ageParam(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key)
	}
	return utils.Clamp(n, domain.MinVictimAge, domain.MaxVictimAge), nil
}

func chartError(err error) error {
	if errors.Is(err, analytics.ErrUnknownChart) {
		return fiber.NewError(fiber.StatusNotFound, "Unknown chart kind")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Failed to build chart")
}
