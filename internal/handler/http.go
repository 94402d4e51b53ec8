package handler

import (
	"net/http"

	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler wires the HTTP surface to the services.
type Handler struct {
	stories     service.StoryService
	ratings     service.RatingService
	leaderboard service.LeaderboardService
	stats       service.StatsService
	analytics   service.AnalyticsService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	stories service.StoryService,
	ratings service.RatingService,
	leaderboard service.LeaderboardService,
	stats service.StatsService,
	analytics service.AnalyticsService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		stories:     stories,
		ratings:     ratings,
		leaderboard: leaderboard,
		stats:       stats,
		analytics:   analytics,
		metrics:     m,
		logger:      logger.Named("HTTPHandler"),
	}
}

// CustomValidator adapts go-playground/validator to echo's Validator hook.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator used by Bind+Validate.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// RegisterRoutes mounts the full REST surface plus the health check. It also
// installs the error handler so every error body carries the "error" key.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = h.HTTPErrorHandler

	e.GET("/health", h.Health)
	e.GET("/user", h.GetUser)

	stories := e.Group("/stories")
	stories.GET("", h.ListStories)
	stories.GET("/random", h.RandomStory)
	stories.POST("/refresh-index", h.RefreshStories)
	stories.GET("/:storyId", h.GetStory)
	stories.GET("/:storyId/ratings", h.GetStoryRatings)
	stories.POST("/:storyId/ratings", h.RateStory)
	stories.DELETE("/:storyId/ratings", h.UnrateStory)
	stories.GET("/:storyId/stats", h.GetStoryStatistics)

	e.GET("/leaderboard", h.GetLeaderboard)
	e.GET("/leaderboard/:tone", h.GetLeaderboard)

	user := e.Group("/user")
	user.GET("/stats", h.GetUserStats)
	user.POST("/track-completion", h.TrackCompletion)
	user.GET("/history", h.GetHistory)
	user.POST("/history", h.AddToHistory)
	user.DELETE("/history", h.ClearHistory)
	user.GET("/streak", h.GetStreak)
	user.POST("/streak/reset", h.ResetStreak)
	user.DELETE("/reset-all-stats", h.ResetUserStats)
	user.GET("/ratings", h.GetUserRatings)

	analytics := e.Group("/analytics")
	analytics.POST("/story-start", h.TrackStoryStart)
	analytics.POST("/story-complete", h.TrackStoryComplete)
	analytics.POST("/scene-view", h.TrackSceneView)
	analytics.POST("/playtime", h.TrackPlaytime)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
