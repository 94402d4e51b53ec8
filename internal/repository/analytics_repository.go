package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Analytics event names used in counter keys.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventScenes    = "scenes"
	EventPlaytime  = "playtime"
)

// AnalyticsRepository maintains monotonically growing counters, tracked both
// globally and per community. Counters are append-only deltas; nothing here
// reads-modifies-writes.
type AnalyticsRepository interface {
	// IncrStoryEvent bumps a per-story counter and the matching total, in
	// the global scope and (when community is non-empty) the community
	// scope, by delta.
	IncrStoryEvent(ctx context.Context, community, storyID, event string, delta int64) error

	// IncrPreference bumps tone/duration preference counters.
	IncrPreference(ctx context.Context, community, tone, duration string) error

	// StoryCounters returns the global started/completed counts for a story.
	StoryCounters(ctx context.Context, storyID string) (started, completed int64, err error)

	// CompletionTimes returns the recorded completion times (seconds) for a
	// story; AppendCompletionTime adds one.
	CompletionTimes(ctx context.Context, storyID string) ([]int64, error)
	AppendCompletionTime(ctx context.Context, storyID string, seconds int64) error
}

var _ AnalyticsRepository = (*redisAnalyticsRepository)(nil)

type redisAnalyticsRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisAnalyticsRepository creates a Redis-backed AnalyticsRepository.
func NewRedisAnalyticsRepository(client *redis.Client, logger *zap.Logger) AnalyticsRepository {
	return &redisAnalyticsRepository{
		client: client,
		logger: logger.Named("RedisAnalyticsRepo"),
	}
}

func (r *redisAnalyticsRepository) IncrStoryEvent(ctx context.Context, community, storyID, event string, delta int64) error {
	scopes := []string{analyticsGlobalScope}
	if community != "" && community != analyticsGlobalScope {
		scopes = append(scopes, community)
	}

	pipe := r.client.Pipeline()
	for _, scope := range scopes {
		pipe.IncrBy(ctx, analyticsStoryCounterKey(scope, storyID, event), delta)
		pipe.IncrBy(ctx, analyticsTotalCounterKey(scope, event), delta)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to increment analytics counters",
			zap.Error(err),
			zap.String("storyID", storyID),
			zap.String("event", event),
		)
		return fmt.Errorf("failed to track %s for story %s: %w", event, storyID, err)
	}
	return nil
}

func (r *redisAnalyticsRepository) IncrPreference(ctx context.Context, community, tone, duration string) error {
	scopes := []string{analyticsGlobalScope}
	if community != "" && community != analyticsGlobalScope {
		scopes = append(scopes, community)
	}

	pipe := r.client.Pipeline()
	for _, scope := range scopes {
		if tone != "" {
			pipe.IncrBy(ctx, analyticsToneKey(scope, tone), 1)
		}
		if duration != "" {
			pipe.IncrBy(ctx, analyticsDurationKey(scope, duration), 1)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to track preference counters: %w", err)
	}
	return nil
}

func (r *redisAnalyticsRepository) StoryCounters(ctx context.Context, storyID string) (int64, int64, error) {
	pipe := r.client.Pipeline()
	startedCmd := pipe.Get(ctx, analyticsStoryCounterKey(analyticsGlobalScope, storyID, EventStarted))
	completedCmd := pipe.Get(ctx, analyticsStoryCounterKey(analyticsGlobalScope, storyID, EventCompleted))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, 0, fmt.Errorf("failed to read counters for story %s: %w", storyID, err)
	}

	started, _ := startedCmd.Int64()
	completed, _ := completedCmd.Int64()
	return started, completed, nil
}

func (r *redisAnalyticsRepository) CompletionTimes(ctx context.Context, storyID string) ([]int64, error) {
	return getJSONList[int64](ctx, r.client, completionTimesKey(storyID))
}

func (r *redisAnalyticsRepository) AppendCompletionTime(ctx context.Context, storyID string, seconds int64) error {
	key := completionTimesKey(storyID)
	times, err := getJSONList[int64](ctx, r.client, key)
	if err != nil {
		return err
	}

	times = append(times, seconds)
	return setJSONValue(ctx, r.client, key, times)
}
