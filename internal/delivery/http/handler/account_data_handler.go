package handler

import (
	"context"

	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AccountDataHandler struct {
	uc usecase.AccountDataUsecase
}

func NewAccountDataHandler(uc usecase.AccountDataUsecase) *AccountDataHandler {
	return &AccountDataHandler{uc: uc}
}

func (h *AccountDataHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Get("/settings/data/export", h.Export)
	r.Delete("/settings/data/matches", h.deleteWith(h.uc.DeleteMatches))
	r.Delete("/settings/data/applications", h.deleteWith(h.uc.DeleteApplications))
	r.Delete("/settings/data/account", h.DeleteAccount)
}

func (h *AccountDataHandler) Export(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	out, err := h.uc.Export(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="jobpilot-export.json"`)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDataExportResponse(out))
}

func (h *AccountDataHandler) deleteWith(fn func(context.Context, uuid.UUID) (int64, error)) fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, err := middleware.UserID(c)
		if err != nil {
			return err
		}

		n, err := fn(c.Context(), userID)
		if err != nil {
			return middleware.FromUsecase(err)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, dto.DeletedResponse{Deleted: n})
	}
}

func (h *AccountDataHandler) DeleteAccount(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteAccount(c.Context(), userID); err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
