package handler

import (
	"jobpilot/internal/delivery/http/dto"
	"jobpilot/internal/delivery/http/middleware"
	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	jobs     usecase.JobUsecase
	matching usecase.MatchingUsecase
}

type searchJobsRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

type importJobRequest struct {
	URL string `json:"url"`
}

func NewJobsHandler(jobs usecase.JobUsecase, matching usecase.MatchingUsecase) *JobsHandler {
	return &JobsHandler{jobs: jobs, matching: matching}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if h == nil || r == nil {
		return
	}

	r.Post("/jobs/search", h.Search)
	r.Post("/jobs/import", h.Import)
	r.Get("/jobs/:job_id<guid>", h.Get)
	r.Post("/jobs/:job_id<guid>/analyze", h.Analyze)
}

func (h *JobsHandler) Search(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req searchJobsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.jobs.SearchJobs(c.Context(), userID, usecase.SearchJobsInput{Keywords: req.Keywords, Location: req.Location})
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSearchJobsResponse(res))
}

func (h *JobsHandler) Import(c fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req importJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	j, err := h.jobs.ImportJob(c.Context(), userID, req.URL)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	j, err := h.jobs.GetJob(c.Context(), jobID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

func (h *JobsHandler) Analyze(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	a, err := h.matching.AnalyzeJob(c.Context(), jobID)
	if err != nil {
		return middleware.FromUsecase(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobAnalysisResponse(a))
}
