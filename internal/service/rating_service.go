package service

import (
	"context"
	"errors"
	"fmt"

	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"

	"go.uber.org/zap"
)

// RatingSummary is what rating endpoints return: the fresh tally plus the
// calling user's own rating, if any.
type RatingSummary struct {
	StoryID    string             `json:"storyId"`
	Likes      int64              `json:"likes"`
	Dislikes   int64              `json:"dislikes"`
	TotalVotes int64              `json:"totalVotes"`
	UserRating models.RatingValue `json:"userRating,omitempty"`
}

// RatingService validates and applies like/dislike votes against existing
// stories and reads tallies back.
type RatingService interface {
	// Rate applies value for the user. Changing an existing vote moves it
	// between buckets; repeating it leaves the tally untouched.
	Rate(ctx context.Context, userID, storyID string, value models.RatingValue) (RatingSummary, error)

	// Unrate withdraws the user's vote. models.ErrNotRated when none exists.
	Unrate(ctx context.Context, userID, storyID string) (RatingSummary, error)

	// GetRatings returns the tally and the user's own rating for a story.
	GetRatings(ctx context.Context, userID, storyID string) (RatingSummary, error)

	// UserRatings returns every rating the user has cast, keyed by story id.
	UserRatings(ctx context.Context, userID string) (map[string]models.RatingValue, error)
}

type ratingServiceImpl struct {
	ratingRepo repository.RatingRepository
	storyRepo  repository.StoryRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewRatingService creates a RatingService.
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storyRepo repository.StoryRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) RatingService {
	return &ratingServiceImpl{
		ratingRepo: ratingRepo,
		storyRepo:  storyRepo,
		metrics:    m,
		logger:     logger.Named("RatingService"),
	}
}

// ensureStoryExists rejects votes on story ids that are not in the catalog.
func (s *ratingServiceImpl) ensureStoryExists(ctx context.Context, storyID string) error {
	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to verify story %s: %w", storyID, err)
	}
	return nil
}

func (s *ratingServiceImpl) Rate(ctx context.Context, userID, storyID string, value models.RatingValue) (RatingSummary, error) {
	if !value.IsValid() {
		return RatingSummary{}, fmt.Errorf("%w: rating must be like or dislike", models.ErrBadRequest)
	}
	if err := s.ensureStoryExists(ctx, storyID); err != nil {
		return RatingSummary{}, err
	}

	tally, err := s.ratingRepo.Rate(ctx, userID, storyID, value)
	if err != nil {
		return RatingSummary{}, err
	}

	s.metrics.RatingsCast.WithLabelValues(string(value)).Inc()
	s.logger.Info("Rating applied",
		zap.String("userID", userID),
		zap.String("storyID", storyID),
		zap.String("value", string(value)),
		zap.Int64("likes", tally.Likes),
		zap.Int64("dislikes", tally.Dislikes),
	)

	return RatingSummary{
		StoryID:    storyID,
		Likes:      tally.Likes,
		Dislikes:   tally.Dislikes,
		TotalVotes: tally.TotalVotes(),
		UserRating: value,
	}, nil
}

func (s *ratingServiceImpl) Unrate(ctx context.Context, userID, storyID string) (RatingSummary, error) {
	if err := s.ensureStoryExists(ctx, storyID); err != nil {
		return RatingSummary{}, err
	}

	tally, err := s.ratingRepo.Unrate(ctx, userID, storyID)
	if err != nil {
		return RatingSummary{}, err
	}

	s.metrics.RatingsCast.WithLabelValues("removed").Inc()
	s.logger.Info("Rating removed",
		zap.String("userID", userID),
		zap.String("storyID", storyID),
	)

	return RatingSummary{
		StoryID:    storyID,
		Likes:      tally.Likes,
		Dislikes:   tally.Dislikes,
		TotalVotes: tally.TotalVotes(),
	}, nil
}

func (s *ratingServiceImpl) GetRatings(ctx context.Context, userID, storyID string) (RatingSummary, error) {
	if err := s.ensureStoryExists(ctx, storyID); err != nil {
		return RatingSummary{}, err
	}

	tally, err := s.ratingRepo.Tally(ctx, storyID)
	if err != nil {
		return RatingSummary{}, err
	}

	summary := RatingSummary{
		StoryID:    storyID,
		Likes:      tally.Likes,
		Dislikes:   tally.Dislikes,
		TotalVotes: tally.TotalVotes(),
	}

	if userID != "" && userID != models.AnonymousUserID {
		rating, ok, err := s.ratingRepo.UserRating(ctx, userID, storyID)
		if err != nil {
			return RatingSummary{}, err
		}
		if ok {
			summary.UserRating = rating
		}
	}
	return summary, nil
}

func (s *ratingServiceImpl) UserRatings(ctx context.Context, userID string) (map[string]models.RatingValue, error) {
	return s.ratingRepo.UserRatings(ctx, userID)
}
