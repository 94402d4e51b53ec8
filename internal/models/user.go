package models

// SessionStatus tells how a play session ended.
type SessionStatus string

const (
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// IsValid reports whether s is a known terminal status.
func (s SessionStatus) IsValid() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// PlaySession is one recorded playthrough (finished or given up).
type PlaySession struct {
	ID          string        `json:"id"`
	StoryID     string        `json:"storyId"`
	PlayTime    int64         `json:"playTime"` // seconds
	Status      SessionStatus `json:"status"`
	CompletedAt string        `json:"completedAt"` // RFC3339
}

// Streak counts consecutive completions. Abandoning a story resets the
// current streak; the longest streak only ever grows.
type Streak struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// UserHistory is the ordered list of stories a user has started.
type UserHistory struct {
	PlayedStories []string `json:"playedStories"`
	TotalPlayed   int      `json:"totalPlayed"`
}

// StoryHighlight names the longest or shortest completed playthrough.
type StoryHighlight struct {
	StoryID   string `json:"storyId"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	TimeSpent int64  `json:"timeSpent,omitempty"`
}

// FavoriteCategory is the tone the user completes most often.
type FavoriteCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	StoryID     string        `json:"storyId"`
	Title       string        `json:"title"`
	CompletedAt string        `json:"completedAt"`
	Rating      RatingValue   `json:"rating,omitempty"`
	TimeSpent   int64         `json:"timeSpent,omitempty"`
	Status      SessionStatus `json:"status"`
}

// UserStats is the aggregate picture of a user's play history, derived
// entirely from stored history, sessions, ratings and streak data.
type UserStats struct {
	TotalCompleted     int               `json:"totalCompleted"`
	TotalAbandoned     int               `json:"totalAbandoned"`
	TotalStarted       int               `json:"totalStarted"`
	CompletionRate     int               `json:"completionRate"` // percent, rounded
	TotalPlayTime      int64             `json:"totalPlayTime"`  // seconds, all sessions
	LongestStory       *StoryHighlight   `json:"longestStory"`
	ShortestStory      *StoryHighlight   `json:"shortestStory"`
	FavoriteCategory   *FavoriteCategory `json:"favoriteCategory"`
	TotalRatings       int               `json:"totalRatings"`
	StreakData         Streak            `json:"streakData"`
	CategoryBreakdown  map[string]int    `json:"categoryBreakdown"`
	DurationPreference map[string]int    `json:"durationPreference"`
	RecentActivity     []ActivityEntry   `json:"recentActivity"`
}

// StoryStatistics is the community-wide view of a single story.
type StoryStatistics struct {
	StoryID         string `json:"storyId"`
	TotalPlayed     int64  `json:"totalPlayed"`
	TotalCompleted  int64  `json:"totalCompleted"`
	TotalAbandoned  int64  `json:"totalAbandoned"`
	CompletionRate  int    `json:"completionRate"`
	TotalPlayTime   int64  `json:"totalPlayTime"`
	AveragePlayTime int64  `json:"averagePlayTime"`
}
