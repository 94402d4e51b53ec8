package models

// RatingValue is a user's verdict on a story.
type RatingValue string

const (
	RatingLike    RatingValue = "like"
	RatingDislike RatingValue = "dislike"
)

// IsValid reports whether v is "like" or "dislike".
func (v RatingValue) IsValid() bool {
	return v == RatingLike || v == RatingDislike
}

// Tally holds the aggregate like/dislike counts for a single story.
type Tally struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// TotalVotes is the number of ratings the tally aggregates.
func (t Tally) TotalVotes() int64 {
	return t.Likes + t.Dislikes
}
