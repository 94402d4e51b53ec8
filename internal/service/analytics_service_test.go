package service

import (
	"context"
	"testing"

	"nightpaths-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_TrackStartAndStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	for i := 0; i < 4; i++ {
		require.NoError(t, env.analytics.TrackStart(ctx, "", "crimson-chapel", models.ToneGothic, models.DurationMedium))
	}
	require.NoError(t, env.analytics.TrackComplete(ctx, "", "crimson-chapel"))
	require.NoError(t, env.analytics.TrackComplete(ctx, "", "crimson-chapel"))

	// Completion times feed the play-time aggregates.
	_, err := env.stats.TrackCompletion(ctx, "user-1", "crimson-chapel", 200, models.SessionCompleted)
	require.NoError(t, err)
	_, err = env.stats.TrackCompletion(ctx, "user-2", "crimson-chapel", 400, models.SessionCompleted)
	require.NoError(t, err)

	stats, err := env.analytics.StoryStatistics(ctx, "crimson-chapel")
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalPlayed)
	assert.Equal(t, int64(2), stats.TotalCompleted)
	assert.Equal(t, int64(2), stats.TotalAbandoned)
	assert.Equal(t, 50, stats.CompletionRate)
	assert.Equal(t, int64(600), stats.TotalPlayTime)
	assert.Equal(t, int64(300), stats.AveragePlayTime)
}

func TestAnalyticsService_TrackStartValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	err := env.analytics.TrackStart(ctx, "", "crimson-chapel", "Romantic Comedy", "")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	err = env.analytics.TrackStart(ctx, "", "nope", models.ToneGothic, models.DurationShort)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalyticsService_UnknownStory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	assert.ErrorIs(t, env.analytics.TrackComplete(ctx, "", "nope"), models.ErrNotFound)
	_, err := env.analytics.StoryStatistics(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAnalyticsService_SceneView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	require.NoError(t, env.analytics.TrackSceneView(ctx, "", "crimson-chapel", "scene_1"))

	err := env.analytics.TrackSceneView(ctx, "", "crimson-chapel", "scene_99")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAnalyticsService_Playtime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	require.NoError(t, env.analytics.TrackPlaytime(ctx, "", "crimson-chapel", 120))

	err := env.analytics.TrackPlaytime(ctx, "", "crimson-chapel", -1)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAnalyticsService_StatisticsForUntouchedStory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	stats, err := env.analytics.StoryStatistics(ctx, "harvest-moon")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPlayed)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.AveragePlayTime)
}
