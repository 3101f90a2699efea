package handler

import (
	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type SettingsHandler struct {
	uc usecase.SettingsUsecase
}

type criteriaRequest struct {
	MinMatchThreshold  *int     `json:"min_match_threshold"`
	SkillsWeight       *int     `json:"skills_weight"`
	ExperienceWeight   *int     `json:"experience_weight"`
	EducationWeight    *int     `json:"education_weight"`
	PreferredCompanies []string `json:"preferred_companies"`
}

type applicationSettingRequest struct {
	DailyLimit          *int    `json:"daily_limit"`
	ApplicationTime     *string `json:"application_time"`
	CustomMessage       *string `json:"custom_message"`
	NotifyOnApplication *bool   `json:"notify_on_application"`
	NotifyOnResponse    *bool   `json:"notify_on_response"`
}

type preferenceRequest struct {
	Location        *string  `json:"location"`
	Industries      []string `json:"industries"`
	JobTypes        []string `json:"job_types"`
	ExperienceLevel *string  `json:"experience_level"`
	SalaryMin       *int     `json:"salary_min"`
	SalaryMax       *int     `json:"salary_max"`
}

func NewSettingsHandler(uc usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

func (h *SettingsHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Get("/settings/criteria", h.GetCriteria)
	r.Put("/settings/criteria", h.UpdateCriteria)
	r.Get("/settings/application", h.GetApplicationSetting)
	r.Put("/settings/application", h.UpdateApplicationSetting)
	r.Get("/settings/preferences", h.GetPreference)
	r.Put("/settings/preferences", h.UpdatePreference)
	r.Post("/settings/automation/pause", h.Pause)
	r.Post("/settings/automation/resume", h.Resume)
}

func (h *SettingsHandler) GetCriteria(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	crit, err := h.uc.GetCriteria(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCriteriaResponse(crit))
}

func (h *SettingsHandler) UpdateCriteria(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req criteriaRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	crit, err := h.uc.UpdateCriteria(c.Context(), userID, usecase.CriteriaInput{
		MinMatchThreshold:  req.MinMatchThreshold,
		SkillsWeight:       req.SkillsWeight,
		ExperienceWeight:   req.ExperienceWeight,
		EducationWeight:    req.EducationWeight,
		PreferredCompanies: req.PreferredCompanies,
	})
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCriteriaResponse(crit))
}

func (h *SettingsHandler) GetApplicationSetting(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	s, err := h.uc.GetApplicationSetting(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationSettingResponse(s))
}

func (h *SettingsHandler) UpdateApplicationSetting(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req applicationSettingRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	s, err := h.uc.UpdateApplicationSetting(c.Context(), userID, usecase.ApplicationSettingInput{
		DailyLimit:          req.DailyLimit,
		ApplicationTime:     req.ApplicationTime,
		CustomMessage:       req.CustomMessage,
		NotifyOnApplication: req.NotifyOnApplication,
		NotifyOnResponse:    req.NotifyOnResponse,
	})
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationSettingResponse(s))
}

func (h *SettingsHandler) GetPreference(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	p, err := h.uc.GetPreference(c.Context(), userID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPreferenceResponse(p))
}

func (h *SettingsHandler) UpdatePreference(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req preferenceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	p, err := h.uc.UpdatePreference(c.Context(), userID, usecase.PreferenceInput{
		Location:        req.Location,
		Industries:      req.Industries,
		JobTypes:        req.JobTypes,
		ExperienceLevel: req.ExperienceLevel,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
	})
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPreferenceResponse(p))
}

func (h *SettingsHandler) Pause(c fiber.Ctx) error {
	return h.setAutomation(c, false)
}

func (h *SettingsHandler) Resume(c fiber.Ctx) error {
	return h.setAutomation(c, true)
}

func (h *SettingsHandler) setAutomation(c fiber.Ctx, active bool) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	s, err := h.uc.SetAutomationActive(c.Context(), userID, active)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewApplicationSettingResponse(s))
}
