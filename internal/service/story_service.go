package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"

	"go.uber.org/zap"
)

// StoryService serves the authored story catalog: metadata listing, full
// document loads, filtered random selection and index maintenance.
type StoryService interface {
	// EnsureIndex seeds the store from the canonical authored set if no
	// index exists yet. Called once at startup.
	EnsureIndex(ctx context.Context) error

	// ListMetadata returns index records matching the filter, never loading
	// scene text.
	ListMetadata(ctx context.Context, filter models.StoryFilter) ([]models.StoryMetadata, error)

	// GetStory loads a full story document. models.ErrNotFound when the id
	// is not in the index.
	GetStory(ctx context.Context, storyID string) (*models.Story, error)

	// RandomStory picks uniformly at random among filtered candidates,
	// excluding the user's played stories when excludePlayed is set.
	// models.ErrNoneAvailable when the candidate set is empty.
	RandomStory(ctx context.Context, userID string, filter models.StoryFilter, excludePlayed bool) (*models.Story, error)

	// RefreshIndex rebuilds documents and index from the canonical authored
	// set, overwriting whatever is stored.
	RefreshIndex(ctx context.Context) ([]models.StoryMetadata, error)
}

type storyServiceImpl struct {
	storyRepo    repository.StoryRepository
	progressRepo repository.ProgressRepository
	authored     []models.Story
	logger       *zap.Logger
}

// NewStoryService creates a StoryService over the given repositories and the
// canonical authored story set.
func NewStoryService(
	storyRepo repository.StoryRepository,
	progressRepo repository.ProgressRepository,
	authored []models.Story,
	logger *zap.Logger,
) StoryService {
	return &storyServiceImpl{
		storyRepo:    storyRepo,
		progressRepo: progressRepo,
		authored:     authored,
		logger:       logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) EnsureIndex(ctx context.Context) error {
	_, err := s.storyRepo.Index(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check story index: %w", err)
	}

	s.logger.Info("No story index found, seeding store from authored content")
	if _, err := s.storyRepo.SeedAll(ctx, s.authored); err != nil {
		return fmt.Errorf("failed to seed story index: %w", err)
	}
	return nil
}

func (s *storyServiceImpl) ListMetadata(ctx context.Context, filter models.StoryFilter) ([]models.StoryMetadata, error) {
	index, err := s.storyRepo.Index(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.StoryMetadata, 0, len(index))
	for _, m := range index {
		if filter.Matches(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

func (s *storyServiceImpl) GetStory(ctx context.Context, storyID string) (*models.Story, error) {
	index, err := s.storyRepo.Index(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for _, m := range index {
		if m.StoryID == storyID {
			found = true
			break
		}
	}
	if !found {
		return nil, models.ErrNotFound
	}

	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// The index names a story whose backing document is gone. That
			// is store corruption, not a client mistake; fail loudly.
			s.logger.Error("Story present in index but document missing", zap.String("storyID", storyID))
			return nil, fmt.Errorf("%w: story %s indexed but document missing", models.ErrInternal, storyID)
		}
		return nil, err
	}
	return story, nil
}

func (s *storyServiceImpl) RandomStory(ctx context.Context, userID string, filter models.StoryFilter, excludePlayed bool) (*models.Story, error) {
	candidates, err := s.ListMetadata(ctx, filter)
	if err != nil {
		return nil, err
	}

	if excludePlayed {
		played, err := s.progressRepo.History(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(played) > 0 {
			playedSet := make(map[string]struct{}, len(played))
			for _, id := range played {
				playedSet[id] = struct{}{}
			}
			remaining := candidates[:0]
			for _, m := range candidates {
				if _, ok := playedSet[m.StoryID]; !ok {
					remaining = append(remaining, m)
				}
			}
			s.logger.Debug("Excluded played stories from random pick",
				zap.String("userID", userID),
				zap.Int("excluded", len(candidates)-len(remaining)),
				zap.Int("remaining", len(remaining)),
			)
			candidates = remaining
		}
	}

	if len(candidates) == 0 {
		return nil, models.ErrNoneAvailable
	}

	chosen := candidates[rand.Intn(len(candidates))]

	story, err := s.storyRepo.GetStory(ctx, chosen.StoryID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Error("Randomly chosen story missing its document", zap.String("storyID", chosen.StoryID))
			return nil, fmt.Errorf("%w: story %s indexed but document missing", models.ErrInternal, chosen.StoryID)
		}
		return nil, err
	}

	s.logger.Info("Selected random story",
		zap.String("userID", userID),
		zap.String("storyID", story.StoryID),
		zap.String("title", story.StoryTitle),
	)
	return story, nil
}

func (s *storyServiceImpl) RefreshIndex(ctx context.Context) ([]models.StoryMetadata, error) {
	s.logger.Info("Refreshing story index from authored content", zap.Int("stories", len(s.authored)))
	return s.storyRepo.SeedAll(ctx, s.authored)
}
