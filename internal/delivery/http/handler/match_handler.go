package handler

import (
	"strings"

	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	uc usecase.MatchingUsecase
}

func NewMatchHandler(uc usecase.MatchingUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Get("/jobs/matches", h.List)
	r.Post("/jobs/matches/refresh", h.RefreshAll)
	r.Get("/jobs/:job_id<guid>/match", h.Detail)
	r.Post("/jobs/:job_id<guid>/match", h.Match)
	r.Post("/jobs/:job_id<guid>/match/refresh", h.Refresh)
}

func (h *MatchHandler) List(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	minScore, err := parseQueryIntPtr(c, "min_score")
	if err != nil {
		return err
	}
	maxScore, err := parseQueryIntPtr(c, "max_score")
	if err != nil {
		return err
	}

	rows, err := h.uc.ListMatches(c.Context(), userID, usecase.MatchFilter{
		MinScore: minScore,
		MaxScore: maxScore,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchListResponse(rows))
}

func (h *MatchHandler) Match(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	m, err := h.uc.GetOrComputeMatch(c.Context(), userID, jobID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

func (h *MatchHandler) Detail(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	d, err := h.uc.GetMatchDetail(c.Context(), userID, jobID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchDetailResponse(d))
}

func (h *MatchHandler) Refresh(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	m, err := h.uc.RefreshMatch(c.Context(), userID, jobID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

// RefreshAll reports how many matches were recomputed even when the run
// stopped early.
func (h *MatchHandler) RefreshAll(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	n, err := h.uc.RefreshAllMatches(c.Context(), userID)
	if err != nil {
		appErr := middleware.FromUsecase(err)
		if appErr.StatusCode < 500 || appErr.StatusCode == fiber.StatusBadGateway {
			appErr.Data = dto.RefreshMatchesResponse{Refreshed: n}
		}
		return appErr
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RefreshMatchesResponse{Refreshed: n})
}
