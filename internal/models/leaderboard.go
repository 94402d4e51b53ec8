package models

// LeaderboardEntry is one ranked row: story summary, raw tally and the
// confidence-adjusted score used for ordering.
type LeaderboardEntry struct {
	Rank       int      `json:"rank"`
	StoryID    string   `json:"storyId"`
	StoryTitle string   `json:"storyTitle"`
	Tone       Tone     `json:"tone"`
	Duration   Duration `json:"duration"`
	Likes      int64    `json:"likes"`
	Dislikes   int64    `json:"dislikes"`
	TotalVotes int64    `json:"totalVotes"`
	LikeRatio  float64  `json:"likeRatio"`
	Score      float64  `json:"score"`
}
