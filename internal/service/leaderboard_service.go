package service

import (
	"context"

	"nightpaths-server/internal/models"
	"nightpaths-server/internal/repository"
	"nightpaths-server/internal/scoring"

	"go.uber.org/zap"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

// LeaderboardService ranks the story catalog by community ratings.
type LeaderboardService interface {
	// Top returns up to limit ranked entries, optionally restricted to one
	// tone. limit <= 0 falls back to the default; values above the cap are
	// clamped.
	Top(ctx context.Context, tone models.Tone, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardServiceImpl struct {
	storyRepo  repository.StoryRepository
	ratingRepo repository.RatingRepository
	logger     *zap.Logger
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(
	storyRepo repository.StoryRepository,
	ratingRepo repository.RatingRepository,
	logger *zap.Logger,
) LeaderboardService {
	return &leaderboardServiceImpl{
		storyRepo:  storyRepo,
		ratingRepo: ratingRepo,
		logger:     logger.Named("LeaderboardService"),
	}
}

func (s *leaderboardServiceImpl) Top(ctx context.Context, tone models.Tone, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	index, err := s.storyRepo.Index(ctx)
	if err != nil {
		return nil, err
	}

	// Filter before fetching tallies so a tone board only pays for its own
	// stories.
	filter := models.StoryFilter{Tone: tone}
	candidates := make([]models.StoryMetadata, 0, len(index))
	ids := make([]string, 0, len(index))
	for _, m := range index {
		if filter.Matches(m) {
			candidates = append(candidates, m)
			ids = append(ids, m.StoryID)
		}
	}
	if len(candidates) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	tallies, err := s.ratingRepo.Tallies(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]scoring.Entry, len(candidates))
	for i, m := range candidates {
		t := tallies[m.StoryID]
		entries[i] = scoring.Entry{StoryID: m.StoryID, Likes: t.Likes, Dislikes: t.Dislikes}
	}
	ranked := scoring.Rank(entries)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	metaByID := make(map[string]models.StoryMetadata, len(candidates))
	for _, m := range candidates {
		metaByID[m.StoryID] = m
	}

	board := make([]models.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		m := metaByID[r.StoryID]
		likeRatio := 0.0
		if votes := r.TotalVotes(); votes > 0 {
			likeRatio = float64(r.Likes) / float64(votes)
		}
		board[i] = models.LeaderboardEntry{
			Rank:       i + 1,
			StoryID:    r.StoryID,
			StoryTitle: m.StoryTitle,
			Tone:       m.Tone,
			Duration:   m.Duration,
			Likes:      r.Likes,
			Dislikes:   r.Dislikes,
			TotalVotes: r.TotalVotes(),
			LikeRatio:  likeRatio,
			Score:      r.Score,
		}
	}

	s.logger.Debug("Built leaderboard",
		zap.String("tone", string(tone)),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(board)),
	)
	return board, nil
}
