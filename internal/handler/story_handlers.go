package handler

import (
	"net/http"

	"nightpaths-server/internal/middleware"
	"nightpaths-server/internal/models"

	"github.com/labstack/echo/v4"
)

// parseFilter reads the tone/duration query params and validates them against
// the known enumerations. An unknown value is a client error, not an empty
// result.
func parseFilter(c echo.Context) (models.StoryFilter, error) {
	var filter models.StoryFilter

	if tone := c.QueryParam("tone"); tone != "" {
		filter.Tone = models.Tone(tone)
		if !filter.Tone.IsValid() {
			return models.StoryFilter{}, echo.NewHTTPError(http.StatusBadRequest, "unknown tone: "+tone)
		}
	}
	if duration := c.QueryParam("duration"); duration != "" {
		filter.Duration = models.Duration(duration)
		if !filter.Duration.IsValid() {
			return models.StoryFilter{}, echo.NewHTTPError(http.StatusBadRequest, "unknown duration: "+duration)
		}
	}
	return filter, nil
}

// ListStories handles GET /stories.
func (h *Handler) ListStories(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	stories, err := h.stories.ListMetadata(c.Request().Context(), filter)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, storyListResponse{
		Success: true,
		Stories: stories,
		Count:   len(stories),
	})
}

// GetStory handles GET /stories/:storyId.
func (h *Handler) GetStory(c echo.Context) error {
	story, err := h.stories.GetStory(c.Request().Context(), c.Param("storyId"))
	if err != nil {
		return h.handleServiceError(c, err)
	}

	h.metrics.StoriesServed.Inc()
	return c.JSON(http.StatusOK, storyResponse{Success: true, Story: story})
}

// RandomStory handles GET /stories/random.
func (h *Handler) RandomStory(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)
	excludePlayed := c.QueryParam("excludePlayed") == "true"

	story, err := h.stories.RandomStory(ctx, userID, filter, excludePlayed)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	h.metrics.StoriesServed.Inc()
	return c.JSON(http.StatusOK, storyResponse{Success: true, Story: story})
}

// RefreshStories handles POST /stories/refresh-index.
func (h *Handler) RefreshStories(c echo.Context) error {
	index, err := h.stories.RefreshIndex(c.Request().Context())
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, storyListResponse{
		Success: true,
		Stories: index,
		Count:   len(index),
	})
}
