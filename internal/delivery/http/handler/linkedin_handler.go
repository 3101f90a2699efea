package handler

import (
	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type LinkedInHandler struct {
	linkedin usecase.LinkedInUsecase
	profiles usecase.ProfileUsecase
}

type linkedInCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

func NewLinkedInHandler(linkedin usecase.LinkedInUsecase, profiles usecase.ProfileUsecase) *LinkedInHandler {
	return &LinkedInHandler{linkedin: linkedin, profiles: profiles}
}

func (h *LinkedInHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Get("/linkedin/authorize", h.Authorize)
	r.Post("/linkedin/callback", h.Callback)
	r.Delete("/linkedin", h.Disconnect)
	r.Post("/profile/analyze", h.AnalyzeProfile)
}

func (h *LinkedInHandler) Authorize(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	url, err := h.linkedin.AuthorizeURL(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.AuthorizeURLResponse{URL: url})
}

// Callback accepts the code and state either as JSON or as query parameters,
// the latter being what the provider redirect carries.
func (h *LinkedInHandler) Callback(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req linkedInCallbackRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Code == "" {
		req.Code = c.Query("code")
	}
	if req.State == "" {
		req.State = c.Query("state")
	}

	p, err := h.linkedin.Connect(c.Context(), userID, req.Code, req.State)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}

func (h *LinkedInHandler) Disconnect(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.linkedin.Disconnect(c.Context(), userID); err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *LinkedInHandler) AnalyzeProfile(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	p, err := h.profiles.AnalyzeProfile(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(p))
}
