package usecase

import (
	"errors"

	"jobpilot/internal/domain/user"
	"jobpilot/internal/infrastructure/analysis"
	"jobpilot/internal/repository"
)

var (
	ErrInternal     = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")

	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	ErrUserNotFound        = errors.New("user not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrMatchNotFound       = errors.New("job match not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrProfileNotFound     = errors.New("linkedin profile not found")

	ErrProfileIncomplete     = errors.New("profile incomplete")
	ErrProfileNotConnected   = errors.New("linkedin account not connected")
	ErrLinkedInNotConfigured = errors.New("linkedin integration not configured")

	ErrAlreadyApplied    = errors.New("already applied")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRefreshInProgress = errors.New("match refresh already running")

	ErrDailyLimitReached = errors.New("daily application limit reached")

	ErrAnalysisFailed = errors.New("analysis failed")
	ErrLinkedInFailed = errors.New("linkedin request failed")
	ErrImportFailed   = errors.New("job import failed")

	ErrInvalidState = errors.New("invalid oauth state")
)

// Kind groups usecase errors by how a caller should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindRateLimited
	KindUpstreamFailure
	KindInvalidInput
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindNotFound, []error{ErrUserNotFound, ErrJobNotFound, ErrMatchNotFound, ErrApplicationNotFound, ErrProfileNotFound, repository.ErrNotFound, user.ErrNotFound}},
	{KindConflict, []error{ErrEmailAlreadyRegistered, ErrAlreadyApplied, ErrInvalidTransition, ErrRefreshInProgress, repository.ErrConflict}},
	{KindPreconditionFailed, []error{ErrProfileIncomplete, ErrProfileNotConnected, ErrLinkedInNotConfigured}},
	{KindRateLimited, []error{ErrDailyLimitReached}},
	{KindUpstreamFailure, []error{ErrAnalysisFailed, ErrLinkedInFailed, ErrImportFailed, analysis.ErrAnalysisUnavailable}},
	{KindInvalidInput, []error{ErrInvalidInput, ErrInvalidState}},
	{KindUnauthorized, []error{ErrUnauthorized, ErrInvalidCredentials, ErrInvalidRefreshToken, ErrRefreshTokenExpired}},
}

// KindOf classifies err. Unknown errors, including ErrInternal, are
// KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInternal
}
