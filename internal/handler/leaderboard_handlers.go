package handler

import (
	"net/http"
	"strconv"

	"nightpaths-server/internal/models"

	"github.com/labstack/echo/v4"
)

// GetLeaderboard handles GET /leaderboard and GET /leaderboard/:tone.
func (h *Handler) GetLeaderboard(c echo.Context) error {
	var tone models.Tone
	if t := c.Param("tone"); t != "" {
		tone = models.Tone(t)
		if !tone.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown tone: "+t)
		}
	}

	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = parsed
	}

	entries, err := h.leaderboard.Top(c.Request().Context(), tone, limit)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, leaderboardResponse{
		Success: true,
		Entries: entries,
		Count:   len(entries),
	})
}
