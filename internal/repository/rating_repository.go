package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"nightpaths-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxRateRetries bounds the optimistic-concurrency retry loop when a
// concurrent rating by the same user invalidates the watched key.
const maxRateRetries = 3

// RatingRepository stores per-story like/dislike tallies and the per-user
// rating records. The aggregate tally and the user's stored rating are two
// logically coupled writes; Rate and Unrate apply them as one atomic unit
// via WATCH + MULTI/EXEC so concurrent calls from the same user cannot leave
// the tally inconsistent with the recorded rating.
type RatingRepository interface {
	Tally(ctx context.Context, storyID string) (models.Tally, error)
	Tallies(ctx context.Context, storyIDs []string) (map[string]models.Tally, error)
	UserRating(ctx context.Context, userID, storyID string) (models.RatingValue, bool, error)
	UserRatings(ctx context.Context, userID string) (map[string]models.RatingValue, error)

	// Rate records value for (storyID, userID) and adjusts the tally.
	// Repeating the same value is a no-op for the tally.
	Rate(ctx context.Context, userID, storyID string, value models.RatingValue) (models.Tally, error)

	// Unrate removes the user's rating and decrements the matching bucket.
	// models.ErrNotRated when no rating is stored.
	Unrate(ctx context.Context, userID, storyID string) (models.Tally, error)
}

var _ RatingRepository = (*redisRatingRepository)(nil)

type redisRatingRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRatingRepository creates a Redis-backed RatingRepository.
func NewRedisRatingRepository(client *redis.Client, logger *zap.Logger) RatingRepository {
	return &redisRatingRepository{
		client: client,
		logger: logger.Named("RedisRatingRepo"),
	}
}

func parseTally(fields map[string]string) models.Tally {
	likes, _ := strconv.ParseInt(fields[fieldLikes], 10, 64)
	dislikes, _ := strconv.ParseInt(fields[fieldDislikes], 10, 64)
	return models.Tally{Likes: likes, Dislikes: dislikes}
}

func (r *redisRatingRepository) Tally(ctx context.Context, storyID string) (models.Tally, error) {
	fields, err := r.client.HGetAll(ctx, storyRatingsKey(storyID)).Result()
	if err != nil {
		r.logger.Error("Failed to get rating tally", zap.Error(err), zap.String("storyID", storyID))
		return models.Tally{}, fmt.Errorf("failed to get tally for story %s: %w", storyID, err)
	}
	// An absent hash is a zero tally; stories start unrated.
	return parseTally(fields), nil
}

func (r *redisRatingRepository) Tallies(ctx context.Context, storyIDs []string) (map[string]models.Tally, error) {
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(storyIDs))
	for i, id := range storyIDs {
		cmds[i] = pipe.HGetAll(ctx, storyRatingsKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to fetch tallies pipeline", zap.Error(err), zap.Int("count", len(storyIDs)))
		return nil, fmt.Errorf("failed to fetch tallies: %w", err)
	}

	tallies := make(map[string]models.Tally, len(storyIDs))
	for i, id := range storyIDs {
		fields, err := cmds[i].Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read tally for story %s: %w", id, err)
		}
		tallies[id] = parseTally(fields)
	}
	return tallies, nil
}

func (r *redisRatingRepository) UserRating(ctx context.Context, userID, storyID string) (models.RatingValue, bool, error) {
	value, err := r.client.HGet(ctx, userRatingsKey(userID), storyID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.logger.Error("Failed to get user rating",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("storyID", storyID),
		)
		return "", false, fmt.Errorf("failed to get user rating: %w", err)
	}
	return models.RatingValue(value), true, nil
}

func (r *redisRatingRepository) UserRatings(ctx context.Context, userID string) (map[string]models.RatingValue, error) {
	fields, err := r.client.HGetAll(ctx, userRatingsKey(userID)).Result()
	if err != nil {
		r.logger.Error("Failed to get user ratings", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to get ratings for user %s: %w", userID, err)
	}

	ratings := make(map[string]models.RatingValue, len(fields))
	for storyID, value := range fields {
		ratings[storyID] = models.RatingValue(value)
	}
	return ratings, nil
}

func (r *redisRatingRepository) Rate(ctx context.Context, userID, storyID string, value models.RatingValue) (models.Tally, error) {
	userKey := userRatingsKey(userID)
	tallyKey := storyRatingsKey(storyID)

	txn := func(tx *redis.Tx) error {
		previous, err := tx.HGet(ctx, userKey, storyID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read previous rating: %w", err)
		}

		// Same value again: the tally must not move.
		if models.RatingValue(previous) == value {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			switch models.RatingValue(previous) {
			case models.RatingLike:
				pipe.HIncrBy(ctx, tallyKey, fieldLikes, -1)
			case models.RatingDislike:
				pipe.HIncrBy(ctx, tallyKey, fieldDislikes, -1)
			}
			if value == models.RatingLike {
				pipe.HIncrBy(ctx, tallyKey, fieldLikes, 1)
			} else {
				pipe.HIncrBy(ctx, tallyKey, fieldDislikes, 1)
			}
			pipe.HSet(ctx, userKey, storyID, string(value))
			return nil
		})
		return err
	}

	if err := r.watchWithRetry(ctx, txn, userKey); err != nil {
		r.logger.Error("Failed to apply rating",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("storyID", storyID),
			zap.String("value", string(value)),
		)
		return models.Tally{}, fmt.Errorf("failed to rate story %s: %w", storyID, err)
	}

	return r.Tally(ctx, storyID)
}

func (r *redisRatingRepository) Unrate(ctx context.Context, userID, storyID string) (models.Tally, error) {
	userKey := userRatingsKey(userID)
	tallyKey := storyRatingsKey(storyID)

	txn := func(tx *redis.Tx) error {
		previous, err := tx.HGet(ctx, userKey, storyID).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return models.ErrNotRated
			}
			return fmt.Errorf("failed to read current rating: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if models.RatingValue(previous) == models.RatingLike {
				pipe.HIncrBy(ctx, tallyKey, fieldLikes, -1)
			} else {
				pipe.HIncrBy(ctx, tallyKey, fieldDislikes, -1)
			}
			pipe.HDel(ctx, userKey, storyID)
			return nil
		})
		return err
	}

	if err := r.watchWithRetry(ctx, txn, userKey); err != nil {
		if errors.Is(err, models.ErrNotRated) {
			return models.Tally{}, models.ErrNotRated
		}
		r.logger.Error("Failed to remove rating",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("storyID", storyID),
		)
		return models.Tally{}, fmt.Errorf("failed to unrate story %s: %w", storyID, err)
	}

	return r.Tally(ctx, storyID)
}

// watchWithRetry runs txn under WATCH on the given keys, retrying a bounded
// number of times when a concurrent write aborts the transaction.
func (r *redisRatingRepository) watchWithRetry(ctx context.Context, txn func(tx *redis.Tx) error, keys ...string) error {
	var err error
	for attempt := 0; attempt < maxRateRetries; attempt++ {
		err = r.client.Watch(ctx, txn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug("Rating transaction conflicted, retrying",
			zap.Int("attempt", attempt+1),
			zap.Strings("keys", keys),
		)
	}
	return fmt.Errorf("rating transaction kept conflicting after %d attempts: %w", maxRateRetries, err)
}
