package handler

import (
	"net/http"

	"nightpaths-server/internal/middleware"
	"nightpaths-server/internal/models"

	"github.com/labstack/echo/v4"
)

type storyStatsResponse struct {
	Success bool                   `json:"success"`
	Stats   models.StoryStatistics `json:"stats"`
}

// TrackStoryStart handles POST /analytics/story-start.
func (h *Handler) TrackStoryStart(c echo.Context) error {
	var req trackStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	community := middleware.CommunityFromContext(ctx)

	if err := h.analytics.TrackStart(ctx, community, req.StoryID, req.Tone, req.Duration); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{Success: true})
}

// TrackStoryComplete handles POST /analytics/story-complete.
func (h *Handler) TrackStoryComplete(c echo.Context) error {
	var req trackEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	community := middleware.CommunityFromContext(ctx)

	if err := h.analytics.TrackComplete(ctx, community, req.StoryID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{Success: true})
}

// TrackSceneView handles POST /analytics/scene-view.
func (h *Handler) TrackSceneView(c echo.Context) error {
	var req sceneViewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	community := middleware.CommunityFromContext(ctx)

	if err := h.analytics.TrackSceneView(ctx, community, req.StoryID, req.SceneID); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{Success: true})
}

// TrackPlaytime handles POST /analytics/playtime.
func (h *Handler) TrackPlaytime(c echo.Context) error {
	var req playtimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	community := middleware.CommunityFromContext(ctx)

	if err := h.analytics.TrackPlaytime(ctx, community, req.StoryID, req.PlayTime); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{Success: true})
}

// GetStoryStatistics handles GET /stories/:storyId/stats.
func (h *Handler) GetStoryStatistics(c echo.Context) error {
	stats, err := h.analytics.StoryStatistics(c.Request().Context(), c.Param("storyId"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, storyStatsResponse{Success: true, Stats: stats})
}
