package service

import (
	"context"
	"testing"

	"nightpaths-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryService_EnsureIndexSeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.stories.EnsureIndex(ctx))

	index, err := env.stories.ListMetadata(ctx, models.StoryFilter{})
	require.NoError(t, err)
	assert.Len(t, index, 3)

	// A second call must not fail or reseed.
	require.NoError(t, env.stories.EnsureIndex(ctx))
}

func TestStoryService_ListMetadataFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	gothic, err := env.stories.ListMetadata(ctx, models.StoryFilter{Tone: models.ToneGothic})
	require.NoError(t, err)
	require.Len(t, gothic, 2)
	for _, m := range gothic {
		assert.Equal(t, models.ToneGothic, m.Tone)
	}

	short, err := env.stories.ListMetadata(ctx, models.StoryFilter{Duration: models.DurationShort})
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, "harvest-moon", short[0].StoryID)

	none, err := env.stories.ListMetadata(ctx, models.StoryFilter{
		Tone:     models.ToneFolk,
		Duration: models.DurationLong,
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoryService_GetStory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	story, err := env.stories.GetStory(ctx, "crimson-chapel")
	require.NoError(t, err)
	assert.Equal(t, "Crimson Chapel", story.StoryTitle)

	_, err = env.stories.GetStory(ctx, "does-not-exist")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStoryService_RandomStoryRespectsFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	for i := 0; i < 10; i++ {
		story, err := env.stories.RandomStory(ctx, "user-1", models.StoryFilter{Tone: models.ToneFolk}, false)
		require.NoError(t, err)
		assert.Equal(t, "harvest-moon", story.StoryID)
	}
}

func TestStoryService_RandomStoryExcludesPlayed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	// Play everything but one story.
	for _, id := range []string{"crimson-chapel", "the-last-reel"} {
		_, err := env.stats.AddToHistory(ctx, "user-1", id)
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		story, err := env.stories.RandomStory(ctx, "user-1", models.StoryFilter{}, true)
		require.NoError(t, err)
		assert.Equal(t, "harvest-moon", story.StoryID)
	}
}

func TestStoryService_RandomStoryExhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	for _, id := range []string{"crimson-chapel", "harvest-moon", "the-last-reel"} {
		_, err := env.stats.AddToHistory(ctx, "user-1", id)
		require.NoError(t, err)
	}

	_, err := env.stories.RandomStory(ctx, "user-1", models.StoryFilter{}, true)
	assert.ErrorIs(t, err, models.ErrNoneAvailable)

	// Without the exclusion the pool is full again.
	_, err = env.stories.RandomStory(ctx, "user-1", models.StoryFilter{}, false)
	require.NoError(t, err)
}

func TestStoryService_RefreshIndexOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.stories.EnsureIndex(ctx))

	index, err := env.stories.RefreshIndex(ctx)
	require.NoError(t, err)
	assert.Len(t, index, 3)
}
