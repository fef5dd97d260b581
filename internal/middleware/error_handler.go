package middleware

import (
	"net/http"

	"github.com/careconnect/caregiver-booking/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"message": ...} and logs the ones that
// are our fault.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Get().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
