package middleware

import (
	"errors"

	"jobpilot/internal/pkg/response"
	"jobpilot/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// FromUsecase converts a usecase error into an AppError whose status follows
// the error kind. The message is the error text unless the kind is internal.
func FromUsecase(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	kind := usecase.KindOf(err)
	status := StatusForKind(kind)
	if status >= 500 && kind != usecase.KindUpstreamFailure {
		return NewAppError(status, response.MessageInternalServerError, nil, err)
	}
	return NewAppError(status, err.Error(), fiber.Map{"code": kind.String()}, err)
}

func StatusForKind(k usecase.Kind) int {
	switch k {
	case usecase.KindNotFound:
		return fiber.StatusNotFound
	case usecase.KindConflict:
		return fiber.StatusConflict
	case usecase.KindPreconditionFailed:
		return fiber.StatusPreconditionFailed
	case usecase.KindRateLimited:
		return fiber.StatusTooManyRequests
	case usecase.KindUpstreamFailure:
		return fiber.StatusBadGateway
	case usecase.KindInvalidInput:
		return fiber.StatusBadRequest
	case usecase.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

type ErrorMiddleware struct {
	logger *zap.Logger
}

func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic recovered", zap.Any("panic", r), zap.String("path", c.Path()), zap.Stack("stack"))
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 {
			m.logger.Error("request failed",
				zap.Int("status", status),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return response.Error(c, status, msg, data)
	}
}

// normalizeError hides the detail of internal failures. Upstream failures
// (502) keep their message so clients can tell them apart from bugs.
func normalizeError(err error) (int, string, any) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		if status >= 500 && status != fiber.StatusBadGateway {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, nil
	}

	if kind := usecase.KindOf(err); kind != usecase.KindInternal {
		return normalizeError(FromUsecase(err))
	}
	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
