package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmitRequest struct {
	UserID        uuid.UUID
	AccessToken   string
	ExternalJobID string
	Message       string
}

type Submission struct {
	ExternalApplicationID string
	Endpoint              string
	Method                string
	StatusCode            int
}

// SimulatedSubmitter records an application without calling LinkedIn. There
// is no public job application API to call.
type SimulatedSubmitter struct {
	logger *zap.Logger
}

func NewSimulatedSubmitter(logger *zap.Logger) *SimulatedSubmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedSubmitter{logger: logger.Named("linkedin.submit")}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, req SubmitRequest) (Submission, error) {
	if err := ctx.Err(); err != nil {
		return Submission{}, err
	}
	if req.AccessToken == "" {
		return Submission{}, errors.New("missing linkedin access token")
	}
	if req.ExternalJobID == "" {
		return Submission{}, errors.New("missing external job id")
	}

	out := Submission{
		ExternalApplicationID: fmt.Sprintf("app_%s_%s", req.ExternalJobID, req.UserID),
		Endpoint:              fmt.Sprintf("linkedin/jobs/%s/applications", req.ExternalJobID),
		Method:                http.MethodPost,
		StatusCode:            http.StatusOK,
	}
	s.logger.Info("application submitted",
		zap.String("user_id", req.UserID.String()),
		zap.String("external_job_id", req.ExternalJobID),
		zap.String("external_application_id", out.ExternalApplicationID),
	)
	return out, nil
}
