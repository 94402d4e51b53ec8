package service

import (
	"testing"

	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// testEnv wires every service against a fresh miniredis instance.
type testEnv struct {
	client      *redis.Client
	stories     StoryService
	ratings     RatingService
	leaderboard LeaderboardService
	stats       StatsService
	analytics   AnalyticsService
	storyRepo   repository.StoryRepository
}

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
		{
			StoryID:    "the-last-reel",
			StoryTitle: "The Last Reel",
			Tone:       models.ToneGothic,
			Duration:   models.DurationLong,
			Scenes:     []models.Scene{{ID: "scene_1", Ending: true}},
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
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

	env := &testEnv{
		client:      client,
		stories:     NewStoryService(storyRepo, progressRepo, testStories(), logger),
		ratings:     NewRatingService(ratingRepo, storyRepo, m, logger),
		leaderboard: NewLeaderboardService(storyRepo, ratingRepo, logger),
		stats:       NewStatsService(progressRepo, ratingRepo, storyRepo, analyticsRepo, m, logger),
		analytics:   NewAnalyticsService(analyticsRepo, storyRepo, logger),
		storyRepo:   storyRepo,
	}
	return env
}
