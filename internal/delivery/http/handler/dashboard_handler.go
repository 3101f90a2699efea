package handler

import (
	"strings"
	"time"

	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

const defaultSummaryListLimit = 30

type DashboardHandler struct {
	uc  usecase.SummaryUsecase
	now func() time.Time
}

func NewDashboardHandler(uc usecase.SummaryUsecase, now func() time.Time) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{uc: uc, now: now}
}

func (h *DashboardHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Get("/dashboard/stats", h.Stats)
	r.Get("/dashboard/summary", h.Summary)
	r.Get("/dashboard/summaries", h.Summaries)
}

func (h *DashboardHandler) Stats(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	st, err := h.uc.Stats(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, st)
}

// Summary serves ?date=YYYY-MM-DD, defaulting to the current UTC day.
func (h *DashboardHandler) Summary(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	date := h.now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid date", nil, err)
		}
	}

	s, err := h.uc.GetOrComputeSummary(c.Context(), userID, date)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDailySummaryResponse(s))
}

func (h *DashboardHandler) Summaries(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	limit, err := parseQueryIntStrict(c, "limit", defaultSummaryListLimit)
	if err != nil {
		return err
	}

	list, err := h.uc.ListSummaries(c.Context(), userID, limit)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDailySummaryListResponse(list))
}
