package handler

import (
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/pitchlabs/salescoach/errors"
	"github.com/pitchlabs/salescoach/internal/infrastructure/http/middleware"
)

type success struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
}

type errs struct {
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Info    string              `json:"info,omitempty"`
}

// HandleSuccess writes the standard success envelope.
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	logger.Info("http.response.success",
		zap.String("request_id", getRequestID(c)),
		zap.String("path", c.Path()),
	)
	return c.JSON(200, success{
		Code:    apperrors.ErrorCode_HTTP_OK,
		Message: "success",
		Data:    data,
	})
}

// HandleError maps application errors onto the standard error envelope.
// Unknown errors are masked as internal failures.
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	var appErr apperrors.AppError
	if stdErrors.As(err, &appErr) {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("code", int(appErr.Code)),
			zap.Error(err),
		)
		body := errs{Code: appErr.Code, Message: appErr.Message}
		if appErr.Raw != nil {
			body.Info = appErr.Raw.Error()
		}
		return c.JSON(appErr.HTTPCode, body)
	}

	logger.Error("http.response.error",
		zap.String("request_id", getRequestID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(500, errs{
		Code:    apperrors.ErrorCode_INTERNAL,
		Message: "Internal server error",
	})
}

func getRequestID(c echo.Context) string {
	return c.Request().Header.Get("X-Request-ID")
}

// getUserID reads the authenticated caller set by the auth middleware.
func getUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(middleware.UserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthenticated()
	}
	return id, nil
}
