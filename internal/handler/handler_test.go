package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/middleware"
	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"
	"nightpaths-server/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStories() []models.Story {
	return []models.Story{
		{
			StoryID:    "crimson-chapel",
			StoryTitle: "Crimson Chapel",
			Tone:       models.ToneGothic,
			Duration:   models.DurationMedium,
			Scenes:     []models.Scene{{ID: "scene_1", Ending: true}},
		},
		{
			StoryID:    "harvest-moon",
			StoryTitle: "Harvest Moon",
			Tone:       models.ToneFolk,
			Duration:   models.DurationShort,
			Scenes:     []models.Scene{{ID: "scene_1", Ending: true}},
		},
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	m := metrics.New()

	storyRepo := repository.NewRedisStoryRepository(client, logger)
	ratingRepo := repository.NewRedisRatingRepository(client, logger)
	progressRepo := repository.NewRedisProgressRepository(client, logger)
	analyticsRepo := repository.NewRedisAnalyticsRepository(client, logger)

	storySvc := service.NewStoryService(storyRepo, progressRepo, testStories(), logger)
	ratingSvc := service.NewRatingService(ratingRepo, storyRepo, m, logger)
	leaderboardSvc := service.NewLeaderboardService(storyRepo, ratingRepo, logger)
	statsSvc := service.NewStatsService(progressRepo, ratingRepo, storyRepo, analyticsRepo, m, logger)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, storyRepo, logger)

	require.NoError(t, storySvc.EnsureIndex(t.Context()))

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(middleware.Identity(logger))

	h := NewHandler(storySvc, ratingSvc, leaderboardSvc, statsSvc, analyticsSvc, m, logger)
	h.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, path, body, userID string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListStories(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/stories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp storyListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	// Metadata only, no scenes on the wire.
	assert.NotContains(t, rec.Body.String(), "scenes")
}

func TestListStories_UnknownToneRejected(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/stories?tone=Comedy", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown tone: Comedy", resp.Error)
}

func TestGetStory(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/stories/crimson-chapel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp storyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Story)
	assert.Equal(t, "Crimson Chapel", resp.Story.StoryTitle)
	assert.Len(t, resp.Story.Scenes, 1)
}

func TestGetStory_NotFound(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/stories/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "story not found", resp.Error)
}

func TestRatingFlow(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/stories/crimson-chapel/ratings", `{"rating":"like"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":1`)

	// Switching the vote moves it between buckets.
	rec = doRequest(e, http.MethodPost, "/stories/crimson-chapel/ratings", `{"rating":"dislike"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"likes":0`)
	assert.Contains(t, rec.Body.String(), `"dislikes":1`)

	rec = doRequest(e, http.MethodGet, "/stories/crimson-chapel/ratings", "", "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userRating":"dislike"`)

	rec = doRequest(e, http.MethodDelete, "/stories/crimson-chapel/ratings", "", "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalVotes":0`)

	// A second removal has nothing to remove.
	rec = doRequest(e, http.MethodDelete, "/stories/crimson-chapel/ratings", "", "user-1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRating_InvalidValueRejected(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/stories/crimson-chapel/ratings", `{"rating":"meh"}`, "user-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Validation failures use the same error body as service errors.
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.NotContains(t, rec.Body.String(), `"message"`)
}

func TestRating_MalformedBodyRejected(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/stories/crimson-chapel/ratings", `{"rating":`, "user-1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid request body", resp.Error)
}

func TestRandomStory_ExhaustedPoolSuggestsReset(t *testing.T) {
	e := newTestServer(t)

	for _, id := range []string{"crimson-chapel", "harvest-moon"} {
		rec := doRequest(e, http.MethodPost, "/user/history", `{"storyId":"`+id+`"}`, "user-1")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(e, http.MethodGet, "/stories/random?excludePlayed=true", "", "user-1")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Suggestion)

	// Another user still gets a story.
	rec = doRequest(e, http.MethodGet, "/stories/random?excludePlayed=true", "", "user-2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackCompletionAndStats(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/user/track-completion",
		`{"storyId":"crimson-chapel","playTime":300,"status":"completed"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentStreak":1`)

	rec = doRequest(e, http.MethodGet, "/user/stats", "", "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.TotalCompleted)
	assert.Equal(t, 100, resp.Stats.CompletionRate)
}

func TestTrackCompletion_InvalidStatusRejected(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/user/track-completion",
		`{"storyId":"crimson-chapel","playTime":300,"status":"paused"}`, "user-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/stories/harvest-moon/ratings", `{"rating":"like"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/leaderboard?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp leaderboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "harvest-moon", resp.Entries[0].StoryID)
	assert.Equal(t, 1, resp.Entries[0].Rank)

	rec = doRequest(e, http.MethodGet, "/leaderboard?limit=abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "limit must be an integer", errResp.Error)
}

func TestAnalyticsAndStoryStatistics(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/analytics/story-start",
		`{"storyId":"crimson-chapel","tone":"Gothic","duration":"medium"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodPost, "/analytics/story-complete", `{"storyId":"crimson-chapel"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodPost, "/analytics/scene-view",
		`{"storyId":"crimson-chapel","sceneId":"scene_1"}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodPost, "/analytics/playtime",
		`{"storyId":"crimson-chapel","playTime":120}`, "user-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/stories/crimson-chapel/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalPlayed":1`)
	assert.Contains(t, rec.Body.String(), `"totalCompleted":1`)
}

func TestIdentityEcho(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/user", "", "user-7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"user-7"`)

	rec = doRequest(e, http.MethodGet, "/user", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"anonymous"`)
}

func TestAnonymousDefaultsApply(t *testing.T) {
	e := newTestServer(t)

	// No identity header at all; the request is served as anonymous.
	rec := doRequest(e, http.MethodGet, "/user/stats", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
