package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// recentActivityLimit caps the recent-activity feed in computed stats.
const recentActivityLimit = 5

// StatsService aggregates a user's play records into statistics and records
// the terminal outcome of play sessions.
type StatsService interface {
	// ComputeStats derives the full statistics picture from stored history,
	// sessions, ratings and streak data. Never fails on an empty user; a
	// user with no records gets zeroed stats.
	ComputeStats(ctx context.Context, userID string) (models.UserStats, error)

	// TrackCompletion records a finished or abandoned playthrough and
	// updates history, completions and streaks. Returns the streak after
	// the update.
	TrackCompletion(ctx context.Context, userID, storyID string, playTimeSeconds int64, status models.SessionStatus) (models.Streak, error)

	History(ctx context.Context, userID string) (models.UserHistory, error)
	AddToHistory(ctx context.Context, userID, storyID string) (models.UserHistory, error)
	ClearHistory(ctx context.Context, userID string) error

	Streak(ctx context.Context, userID string) (models.Streak, error)
	ResetStreak(ctx context.Context, userID string) (models.Streak, error)

	// ResetAll wipes the user's stored records and returns how many keys
	// were deleted. Community tallies keep the user's past votes.
	ResetAll(ctx context.Context, userID string) (int64, error)
}

type statsServiceImpl struct {
	progressRepo  repository.ProgressRepository
	ratingRepo    repository.RatingRepository
	storyRepo     repository.StoryRepository
	analyticsRepo repository.AnalyticsRepository
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(
	progressRepo repository.ProgressRepository,
	ratingRepo repository.RatingRepository,
	storyRepo repository.StoryRepository,
	analyticsRepo repository.AnalyticsRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) StatsService {
	return &statsServiceImpl{
		progressRepo:  progressRepo,
		ratingRepo:    ratingRepo,
		storyRepo:     storyRepo,
		analyticsRepo: analyticsRepo,
		metrics:       m,
		logger:        logger.Named("StatsService"),
	}
}

func (s *statsServiceImpl) ComputeStats(ctx context.Context, userID string) (models.UserStats, error) {
	history, err := s.progressRepo.History(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	completions, err := s.progressRepo.Completions(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	sessions, err := s.progressRepo.Sessions(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	ratings, err := s.ratingRepo.UserRatings(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}
	streak, err := s.progressRepo.Streak(ctx, userID)
	if err != nil {
		return models.UserStats{}, err
	}

	metaByID := s.indexByID(ctx)

	totalStarted := len(history)
	totalCompleted := len(completions)
	totalAbandoned := totalStarted - totalCompleted
	if totalAbandoned < 0 {
		// Completions without history entries mean partially reset or
		// hand-edited records. Clamp rather than report negatives.
		s.logger.Warn("More completions than started stories, clamping abandoned count",
			zap.String("userID", userID),
			zap.Int("started", totalStarted),
			zap.Int("completed", totalCompleted),
		)
		totalAbandoned = 0
	}

	completionRate := 0
	if totalStarted > 0 {
		completionRate = int(math.Round(float64(totalCompleted) / float64(totalStarted) * 100))
	}

	var totalPlayTime int64
	var longest, shortest *models.PlaySession
	for i := range sessions {
		sess := &sessions[i]
		totalPlayTime += sess.PlayTime
		if sess.Status != models.SessionCompleted {
			continue
		}
		if longest == nil || sess.PlayTime > longest.PlayTime {
			longest = sess
		}
		if shortest == nil || sess.PlayTime < shortest.PlayTime {
			shortest = sess
		}
	}

	categoryBreakdown := make(map[string]int)
	durationPreference := make(map[string]int)
	for _, storyID := range completions {
		m, ok := metaByID[storyID]
		if !ok {
			continue
		}
		categoryBreakdown[string(m.Tone)]++
		durationPreference[string(m.Duration)]++
	}

	var favorite *models.FavoriteCategory
	for category, count := range categoryBreakdown {
		switch {
		case favorite == nil,
			count > favorite.Count,
			count == favorite.Count && category < favorite.Category:
			favorite = &models.FavoriteCategory{Category: category, Count: count}
		}
	}

	recent := sessions
	if len(recent) > recentActivityLimit {
		recent = recent[len(recent)-recentActivityLimit:]
	}
	activity := make([]models.ActivityEntry, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		sess := recent[i]
		entry := models.ActivityEntry{
			StoryID:     sess.StoryID,
			Title:       sess.StoryID,
			CompletedAt: sess.CompletedAt,
			TimeSpent:   sess.PlayTime,
			Status:      sess.Status,
		}
		if m, ok := metaByID[sess.StoryID]; ok {
			entry.Title = m.StoryTitle
		}
		if rating, ok := ratings[sess.StoryID]; ok {
			entry.Rating = rating
		}
		activity = append(activity, entry)
	}

	return models.UserStats{
		TotalCompleted:     totalCompleted,
		TotalAbandoned:     totalAbandoned,
		TotalStarted:       totalStarted,
		CompletionRate:     completionRate,
		TotalPlayTime:      totalPlayTime,
		LongestStory:       s.highlight(longest, metaByID),
		ShortestStory:      s.highlight(shortest, metaByID),
		FavoriteCategory:   favorite,
		TotalRatings:       len(ratings),
		StreakData:         streak,
		CategoryBreakdown:  categoryBreakdown,
		DurationPreference: durationPreference,
		RecentActivity:     activity,
	}, nil
}

// indexByID loads the story index as a lookup map. Stats degrade gracefully
// when the index is unavailable; titles fall back to story ids.
func (s *statsServiceImpl) indexByID(ctx context.Context) map[string]models.StoryMetadata {
	index, err := s.storyRepo.Index(ctx)
	if err != nil {
		s.logger.Warn("Story index unavailable while computing stats", zap.Error(err))
		return nil
	}
	byID := make(map[string]models.StoryMetadata, len(index))
	for _, m := range index {
		byID[m.StoryID] = m
	}
	return byID
}

func (s *statsServiceImpl) highlight(sess *models.PlaySession, metaByID map[string]models.StoryMetadata) *models.StoryHighlight {
	if sess == nil {
		return nil
	}
	h := &models.StoryHighlight{
		StoryID:   sess.StoryID,
		Title:     sess.StoryID,
		TimeSpent: sess.PlayTime,
	}
	if m, ok := metaByID[sess.StoryID]; ok {
		h.Title = m.StoryTitle
		h.Duration = string(m.Duration)
	}
	return h
}

func (s *statsServiceImpl) TrackCompletion(ctx context.Context, userID, storyID string, playTimeSeconds int64, status models.SessionStatus) (models.Streak, error) {
	if !status.IsValid() {
		return models.Streak{}, fmt.Errorf("%w: status must be completed or abandoned", models.ErrBadRequest)
	}
	if playTimeSeconds < 0 {
		return models.Streak{}, fmt.Errorf("%w: playTime cannot be negative", models.ErrBadRequest)
	}

	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Streak{}, models.ErrNotFound
		}
		return models.Streak{}, err
	}

	session := models.PlaySession{
		ID:          uuid.NewString(),
		StoryID:     storyID,
		PlayTime:    playTimeSeconds,
		Status:      status,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.progressRepo.AppendSession(ctx, userID, session); err != nil {
		return models.Streak{}, err
	}
	if _, err := s.progressRepo.AddToHistory(ctx, userID, storyID); err != nil {
		return models.Streak{}, err
	}

	streak, err := s.progressRepo.Streak(ctx, userID)
	if err != nil {
		return models.Streak{}, err
	}

	if status == models.SessionCompleted {
		if err := s.progressRepo.AddCompletion(ctx, userID, storyID); err != nil {
			return models.Streak{}, err
		}

		streak.CurrentStreak++
		if streak.CurrentStreak > streak.LongestStreak {
			streak.LongestStreak = streak.CurrentStreak
		}

		// Losing the completion-time sample must not lose the play record.
		if err := s.analyticsRepo.AppendCompletionTime(ctx, storyID, playTimeSeconds); err != nil {
			s.logger.Warn("Failed to record completion time", zap.Error(err), zap.String("storyID", storyID))
		}
	} else {
		streak.CurrentStreak = 0
	}

	if err := s.progressRepo.SetStreak(ctx, userID, streak); err != nil {
		return models.Streak{}, err
	}

	s.metrics.PlaysTracked.WithLabelValues(string(status)).Inc()
	s.logger.Info("Tracked play session",
		zap.String("userID", userID),
		zap.String("storyID", storyID),
		zap.String("status", string(status)),
		zap.Int64("playTime", playTimeSeconds),
		zap.Int("currentStreak", streak.CurrentStreak),
	)
	return streak, nil
}

func (s *statsServiceImpl) History(ctx context.Context, userID string) (models.UserHistory, error) {
	played, err := s.progressRepo.History(ctx, userID)
	if err != nil {
		return models.UserHistory{}, err
	}
	if played == nil {
		played = []string{}
	}
	return models.UserHistory{PlayedStories: played, TotalPlayed: len(played)}, nil
}

func (s *statsServiceImpl) AddToHistory(ctx context.Context, userID, storyID string) (models.UserHistory, error) {
	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.UserHistory{}, models.ErrNotFound
		}
		return models.UserHistory{}, err
	}

	played, err := s.progressRepo.AddToHistory(ctx, userID, storyID)
	if err != nil {
		return models.UserHistory{}, err
	}
	return models.UserHistory{PlayedStories: played, TotalPlayed: len(played)}, nil
}

func (s *statsServiceImpl) ClearHistory(ctx context.Context, userID string) error {
	return s.progressRepo.ClearHistory(ctx, userID)
}

func (s *statsServiceImpl) Streak(ctx context.Context, userID string) (models.Streak, error) {
	return s.progressRepo.Streak(ctx, userID)
}

func (s *statsServiceImpl) ResetStreak(ctx context.Context, userID string) (models.Streak, error) {
	streak, err := s.progressRepo.Streak(ctx, userID)
	if err != nil {
		return models.Streak{}, err
	}
	streak.CurrentStreak = 0
	if err := s.progressRepo.SetStreak(ctx, userID, streak); err != nil {
		return models.Streak{}, err
	}
	return streak, nil
}

func (s *statsServiceImpl) ResetAll(ctx context.Context, userID string) (int64, error) {
	return s.progressRepo.ResetAll(ctx, userID)
}
