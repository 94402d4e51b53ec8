package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"

	"go.uber.org/zap"
)

// AnalyticsService records anonymous, aggregate play events and serves the
// community-wide statistics view of a story. Counters only ever grow.
type AnalyticsService interface {
	// TrackStart bumps the started counters for a story and, when tone and
	// duration are supplied, the matching preference counters.
	TrackStart(ctx context.Context, community, storyID string, tone models.Tone, duration models.Duration) error

	// TrackComplete bumps the completed counters for a story.
	TrackComplete(ctx context.Context, community, storyID string) error

	// TrackSceneView bumps the scene-view counters. The scene must exist in
	// the story.
	TrackSceneView(ctx context.Context, community, storyID, sceneID string) error

	// TrackPlaytime adds seconds of play to the playtime counters.
	TrackPlaytime(ctx context.Context, community, storyID string, seconds int64) error

	// StoryStatistics derives the community view from stored counters.
	StoryStatistics(ctx context.Context, storyID string) (models.StoryStatistics, error)
}

type analyticsServiceImpl struct {
	analyticsRepo repository.AnalyticsRepository
	storyRepo     repository.StoryRepository
	logger        *zap.Logger
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	storyRepo repository.StoryRepository,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
		storyRepo:     storyRepo,
		logger:        logger.Named("AnalyticsService"),
	}
}

func (s *analyticsServiceImpl) getStory(ctx context.Context, storyID string) (*models.Story, error) {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to verify story %s: %w", storyID, err)
	}
	return story, nil
}

func (s *analyticsServiceImpl) TrackStart(ctx context.Context, community, storyID string, tone models.Tone, duration models.Duration) error {
	if tone != "" && !tone.IsValid() {
		return fmt.Errorf("%w: unknown tone %q", models.ErrBadRequest, tone)
	}
	if duration != "" && !duration.IsValid() {
		return fmt.Errorf("%w: unknown duration %q", models.ErrBadRequest, duration)
	}
	if _, err := s.getStory(ctx, storyID); err != nil {
		return err
	}

	if err := s.analyticsRepo.IncrStoryEvent(ctx, community, storyID, repository.EventStarted, 1); err != nil {
		return err
	}
	if tone != "" || duration != "" {
		if err := s.analyticsRepo.IncrPreference(ctx, community, string(tone), string(duration)); err != nil {
			return err
		}
	}
	return nil
}

func (s *analyticsServiceImpl) TrackComplete(ctx context.Context, community, storyID string) error {
	if _, err := s.getStory(ctx, storyID); err != nil {
		return err
	}
	return s.analyticsRepo.IncrStoryEvent(ctx, community, storyID, repository.EventCompleted, 1)
}

func (s *analyticsServiceImpl) TrackSceneView(ctx context.Context, community, storyID, sceneID string) error {
	story, err := s.getStory(ctx, storyID)
	if err != nil {
		return err
	}
	if sceneID != "" && story.SceneByID(sceneID) == nil {
		return fmt.Errorf("%w: scene %s not in story %s", models.ErrBadRequest, sceneID, storyID)
	}
	return s.analyticsRepo.IncrStoryEvent(ctx, community, storyID, repository.EventScenes, 1)
}

func (s *analyticsServiceImpl) TrackPlaytime(ctx context.Context, community, storyID string, seconds int64) error {
	if seconds < 0 {
		return fmt.Errorf("%w: playTime cannot be negative", models.ErrBadRequest)
	}
	if _, err := s.getStory(ctx, storyID); err != nil {
		return err
	}
	return s.analyticsRepo.IncrStoryEvent(ctx, community, storyID, repository.EventPlaytime, seconds)
}

func (s *analyticsServiceImpl) StoryStatistics(ctx context.Context, storyID string) (models.StoryStatistics, error) {
	if _, err := s.getStory(ctx, storyID); err != nil {
		return models.StoryStatistics{}, err
	}

	started, completed, err := s.analyticsRepo.StoryCounters(ctx, storyID)
	if err != nil {
		return models.StoryStatistics{}, err
	}

	abandoned := started - completed
	if abandoned < 0 {
		abandoned = 0
	}

	completionRate := 0
	if started > 0 {
		completionRate = int(math.Round(float64(completed) / float64(started) * 100))
	}

	times, err := s.analyticsRepo.CompletionTimes(ctx, storyID)
	if err != nil {
		return models.StoryStatistics{}, err
	}
	var totalPlayTime, averagePlayTime int64
	for _, t := range times {
		totalPlayTime += t
	}
	if len(times) > 0 {
		averagePlayTime = int64(math.Round(float64(totalPlayTime) / float64(len(times))))
	}

	return models.StoryStatistics{
		StoryID:         storyID,
		TotalPlayed:     started,
		TotalCompleted:  completed,
		TotalAbandoned:  abandoned,
		CompletionRate:  completionRate,
		TotalPlayTime:   totalPlayTime,
		AveragePlayTime: averagePlayTime,
	}, nil
}
