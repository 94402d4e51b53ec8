package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nightpaths-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProgressRepository stores a user's play history, completions, play
// sessions and streak counters. Collections are stored as JSON values under
// user-scoped keys so ResetAll can delete a user's footprint wholesale.
type ProgressRepository interface {
	History(ctx context.Context, userID string) ([]string, error)
	AddToHistory(ctx context.Context, userID, storyID string) ([]string, error)
	ClearHistory(ctx context.Context, userID string) error

	Completions(ctx context.Context, userID string) ([]string, error)
	AddCompletion(ctx context.Context, userID, storyID string) error

	Sessions(ctx context.Context, userID string) ([]models.PlaySession, error)
	AppendSession(ctx context.Context, userID string, session models.PlaySession) error

	Streak(ctx context.Context, userID string) (models.Streak, error)
	SetStreak(ctx context.Context, userID string, streak models.Streak) error

	// ResetAll deletes every key holding the user's history, completions,
	// ratings, streak and sessions. Aggregate story tallies are not
	// adjusted; reset removes the user's records, not their past votes'
	// effect on community counts.
	ResetAll(ctx context.Context, userID string) (int64, error)
}

var _ ProgressRepository = (*redisProgressRepository)(nil)

type redisProgressRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisProgressRepository creates a Redis-backed ProgressRepository.
func NewRedisProgressRepository(client *redis.Client, logger *zap.Logger) ProgressRepository {
	return &redisProgressRepository{
		client: client,
		logger: logger.Named("RedisProgressRepo"),
	}
}

// getJSONList reads a JSON-encoded list value, treating an absent key as an
// empty list.
func getJSONList[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("corrupted data at %s: %w", key, err)
	}
	return list, nil
}

func setJSONValue(ctx context.Context, client *redis.Client, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *redisProgressRepository) History(ctx context.Context, userID string) ([]string, error) {
	return getJSONList[string](ctx, r.client, userHistoryKey(userID))
}

func (r *redisProgressRepository) AddToHistory(ctx context.Context, userID, storyID string) ([]string, error) {
	key := userHistoryKey(userID)
	history, err := getJSONList[string](ctx, r.client, key)
	if err != nil {
		return nil, err
	}

	for _, id := range history {
		if id == storyID {
			// Already recorded; keep insertion order stable.
			return history, nil
		}
	}

	history = append(history, storyID)
	if err := setJSONValue(ctx, r.client, key, history); err != nil {
		return nil, err
	}

	r.logger.Debug("Added story to history",
		zap.String("userID", userID),
		zap.String("storyID", storyID),
		zap.Int("totalPlayed", len(history)),
	)
	return history, nil
}

func (r *redisProgressRepository) ClearHistory(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, userHistoryKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history for user %s: %w", userID, err)
	}
	return nil
}

func (r *redisProgressRepository) Completions(ctx context.Context, userID string) ([]string, error) {
	return getJSONList[string](ctx, r.client, userCompletionsKey(userID))
}

func (r *redisProgressRepository) AddCompletion(ctx context.Context, userID, storyID string) error {
	key := userCompletionsKey(userID)
	completions, err := getJSONList[string](ctx, r.client, key)
	if err != nil {
		return err
	}

	for _, id := range completions {
		if id == storyID {
			return nil
		}
	}

	completions = append(completions, storyID)
	return setJSONValue(ctx, r.client, key, completions)
}

func (r *redisProgressRepository) Sessions(ctx context.Context, userID string) ([]models.PlaySession, error) {
	return getJSONList[models.PlaySession](ctx, r.client, userSessionsKey(userID))
}

func (r *redisProgressRepository) AppendSession(ctx context.Context, userID string, session models.PlaySession) error {
	key := userSessionsKey(userID)
	sessions, err := getJSONList[models.PlaySession](ctx, r.client, key)
	if err != nil {
		return err
	}

	sessions = append(sessions, session)
	return setJSONValue(ctx, r.client, key, sessions)
}

func (r *redisProgressRepository) Streak(ctx context.Context, userID string) (models.Streak, error) {
	raw, err := r.client.Get(ctx, userStreakKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Streak{}, nil
		}
		return models.Streak{}, fmt.Errorf("failed to get streak for user %s: %w", userID, err)
	}

	var streak models.Streak
	if err := json.Unmarshal([]byte(raw), &streak); err != nil {
		return models.Streak{}, fmt.Errorf("corrupted streak data for user %s: %w", userID, err)
	}
	return streak, nil
}

func (r *redisProgressRepository) SetStreak(ctx context.Context, userID string, streak models.Streak) error {
	return setJSONValue(ctx, r.client, userStreakKey(userID), streak)
}

func (r *redisProgressRepository) ResetAll(ctx context.Context, userID string) (int64, error) {
	keys := []string{
		userHistoryKey(userID),
		userCompletionsKey(userID),
		userRatingsKey(userID),
		userStreakKey(userID),
		userSessionsKey(userID),
	}

	deleted, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		r.logger.Error("Failed to reset user stats", zap.Error(err), zap.String("userID", userID))
		return 0, fmt.Errorf("failed to reset stats for user %s: %w", userID, err)
	}

	r.logger.Info("Reset all user data",
		zap.String("userID", userID),
		zap.Int64("deletedKeys", deleted),
	)
	return deleted, nil
}
