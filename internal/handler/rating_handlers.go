package handler

import (
	"net/http"

	"nightpaths-server/internal/middleware"

	"github.com/labstack/echo/v4"
)

type ratingResponse struct {
	Success bool `json:"success"`
	Ratings any  `json:"ratings"`
}

// RateStory handles POST /stories/:storyId/ratings.
func (h *Handler) RateStory(c echo.Context) error {
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	summary, err := h.ratings.Rate(ctx, userID, c.Param("storyId"), req.Rating)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ratingResponse{Success: true, Ratings: summary})
}

// UnrateStory handles DELETE /stories/:storyId/ratings.
func (h *Handler) UnrateStory(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	summary, err := h.ratings.Unrate(ctx, userID, c.Param("storyId"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ratingResponse{Success: true, Ratings: summary})
}

// GetStoryRatings handles GET /stories/:storyId/ratings.
func (h *Handler) GetStoryRatings(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	summary, err := h.ratings.GetRatings(ctx, userID, c.Param("storyId"))
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ratingResponse{Success: true, Ratings: summary})
}

// GetUserRatings handles GET /user/ratings.
func (h *Handler) GetUserRatings(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.UserIDFromContext(ctx)

	ratings, err := h.ratings.UserRatings(ctx, userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ratingResponse{Success: true, Ratings: ratings})
}
