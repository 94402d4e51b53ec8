package handler

import (
	"errors"
	"net/http"

	"nightpaths-server/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the uniform error body. Suggestion is only present when
// the server can offer a way out, e.g. an exhausted random-story pool.
type ErrorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HTTPErrorHandler renders echo-level failures, bind and validation errors
// included, with the same body shape handleServiceError produces.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	} else {
		h.logger.Error("Unhandled HTTP error",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Request().Method),
		)
	}

	if writeErr := c.JSON(code, ErrorResponse{Error: message}); writeErr != nil {
		h.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

// handleServiceError maps service sentinel errors onto HTTP statuses.
// Anything unmapped is a 500 and gets logged with its cause; the client only
// sees a generic message.
func (h *Handler) handleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "story not found"})
	case errors.Is(err, models.ErrNotRated):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no rating found to remove"})
	case errors.Is(err, models.ErrNoneAvailable):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:      "no unplayed stories available",
			Suggestion: "clear your play history or relax the filters",
		})
	default:
		h.logger.Error("Unhandled service error",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Request().Method),
		)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
