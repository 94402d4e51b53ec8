package handler

import (
	"net/http"

	"nightpaths-server/internal/middleware"

	"github.com/labstack/echo/v4"
)

// GetUser handles GET /user, echoing the platform-supplied identity back.
func (h *Handler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, identityResponse{
		Success:   true,
		UserID:    middleware.UserIDFromContext(ctx),
		Username:  middleware.UsernameFromContext(ctx),
		Community: middleware.CommunityFromContext(ctx),
	})
}

// GetUserStats handles GET /user/stats.
func (h *Handler) GetUserStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	stats, err := h.stats.ComputeStats(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, statsResponse{Success: true, Stats: stats})
}

// ResetUserStats handles DELETE /user/reset-all-stats.
func (h *Handler) ResetUserStats(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	deleted, err := h.stats.ResetAll(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, resetResponse{Success: true, DeletedKeys: deleted})
}

// TrackCompletion handles POST /user/track-completion.
func (h *Handler) TrackCompletion(c echo.Context) error {
	var req trackCompletionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	streak, err := h.stats.TrackCompletion(ctx, userID, req.StoryID, req.PlayTime, req.Status)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, trackedResponse{Success: true, Streak: streak})
}

// GetHistory handles GET /user/history.
func (h *Handler) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	history, err := h.stats.History(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, historyResponse{Success: true, UserHistory: history})
}

// AddToHistory handles POST /user/history.
func (h *Handler) AddToHistory(c echo.Context) error {
	var req addHistoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	history, err := h.stats.AddToHistory(ctx, userID, req.StoryID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, historyResponse{Success: true, UserHistory: history})
}

// ClearHistory handles DELETE /user/history.
func (h *Handler) ClearHistory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	if err := h.stats.ClearHistory(ctx, userID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{Success: true})
}

// GetStreak handles GET /user/streak.
func (h *Handler) GetStreak(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	streak, err := h.stats.Streak(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, streakResponse{Success: true, Streak: streak})
}

// ResetStreak handles POST /user/streak/reset.
func (h *Handler) ResetStreak(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	streak, err := h.stats.ResetStreak(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, streakResponse{Success: true, Streak: streak})
}
