package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"nightpaths-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoryRepository stores authored story documents and the metadata index.
// Documents are immutable after seeding, so full documents are cached
// in-process for the lifetime of the server; SeedAll is the only
// invalidation point.
type StoryRepository interface {
	// Index returns the metadata index. models.ErrNotFound when no index
	// has been seeded yet.
	Index(ctx context.Context) ([]models.StoryMetadata, error)

	// GetStory loads a full story document by id, from cache when possible.
	GetStory(ctx context.Context, storyID string) (*models.Story, error)

	// SeedAll overwrites every story document and the metadata index with
	// the given canonical set, and drops the in-process cache.
	SeedAll(ctx context.Context, stories []models.Story) ([]models.StoryMetadata, error)
}

// Compile-time check.
var _ StoryRepository = (*redisStoryRepository)(nil)

type redisStoryRepository struct {
	client *redis.Client
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*models.Story
}

// NewRedisStoryRepository creates a Redis-backed StoryRepository.
func NewRedisStoryRepository(client *redis.Client, logger *zap.Logger) StoryRepository {
	return &redisStoryRepository{
		client: client,
		logger: logger.Named("RedisStoryRepo"),
		cache:  make(map[string]*models.Story),
	}
}

func (r *redisStoryRepository) Index(ctx context.Context) ([]models.StoryMetadata, error) {
	indexJSON, err := r.client.Get(ctx, storyIndexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story index from redis", zap.Error(err))
		return nil, fmt.Errorf("failed to get story index: %w", err)
	}

	var index []models.StoryMetadata
	if err := json.Unmarshal([]byte(indexJSON), &index); err != nil {
		// Corrupt index data; the caller can rebuild via SeedAll.
		r.logger.Error("Corrupted story index in redis", zap.Error(err))
		return nil, fmt.Errorf("corrupted story index data: %w", err)
	}
	return index, nil
}

func (r *redisStoryRepository) GetStory(ctx context.Context, storyID string) (*models.Story, error) {
	r.mu.RLock()
	if story, ok := r.cache[storyID]; ok {
		r.mu.RUnlock()
		return story, nil
	}
	r.mu.RUnlock()

	storyJSON, err := r.client.Get(ctx, storyKey(storyID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Story not found in redis", zap.String("storyID", storyID))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story from redis", zap.Error(err), zap.String("storyID", storyID))
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}

	var story models.Story
	if err := json.Unmarshal([]byte(storyJSON), &story); err != nil {
		r.logger.Error("Corrupted story document in redis",
			zap.Error(err),
			zap.String("storyID", storyID),
		)
		return nil, fmt.Errorf("corrupted story document %s: %w", storyID, err)
	}

	r.mu.Lock()
	r.cache[storyID] = &story
	r.mu.Unlock()

	return &story, nil
}

func (r *redisStoryRepository) SeedAll(ctx context.Context, stories []models.Story) ([]models.StoryMetadata, error) {
	index := make([]models.StoryMetadata, 0, len(stories))

	pipe := r.client.Pipeline()
	for i := range stories {
		story := &stories[i]
		docJSON, err := json.Marshal(story)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal story %s: %w", story.StoryID, err)
		}
		pipe.Set(ctx, storyKey(story.StoryID), docJSON, 0)
		index = append(index, story.Metadata())
	}

	indexJSON, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal story index: %w", err)
	}
	pipe.Set(ctx, storyIndexKey, indexJSON, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to seed stories into redis", zap.Error(err))
		return nil, fmt.Errorf("failed to seed stories: %w", err)
	}

	// Documents may have changed; restart the cache.
	r.mu.Lock()
	r.cache = make(map[string]*models.Story, len(stories))
	r.mu.Unlock()

	r.logger.Info("Seeded story documents and index", zap.Int("count", len(stories)))
	return index, nil
}
