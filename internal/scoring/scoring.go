// Package scoring ranks stories by like/dislike tallies using the Wilson
// score lower bound rather than the raw like ratio. The raw ratio ranks a
// story with 1 like and 0 dislikes above one with 99 likes and 5 dislikes;
// the Wilson lower bound discounts small samples and produces a stable
// leaderboard ordering.
package scoring

import (
	"math"
	"sort"
)

// z95 is the normal quantile for a 95% confidence interval. Changing this
// constant changes every leaderboard ordering; it is part of the contract.
const z95 = 1.96

// Score returns the Wilson score lower bound for the true like proportion,
// in [0, 1]. A story with no votes scores exactly 0.
func Score(likes, dislikes int64) float64 {
	n := float64(likes + dislikes)
	if n == 0 {
		return 0
	}

	p := float64(likes) / n
	z := z95

	score := (p + z*z/(2*n) - z*math.Sqrt((p*(1-p)+z*z/(4*n))/n)) / (1 + z*z/n)
	return math.Max(0, score)
}

// Entry is one story's raw tally going into a ranking.
type Entry struct {
	StoryID  string
	Likes    int64
	Dislikes int64
}

// TotalVotes is the sample size behind the entry.
func (e Entry) TotalVotes() int64 {
	return e.Likes + e.Dislikes
}

// Ranked is an entry annotated with its computed score.
type Ranked struct {
	Entry
	Score float64
}

// Rank orders entries by score descending, breaking ties by total vote
// count descending. Fully equal entries keep their input order. The input
// slice is not modified.
func Rank(entries []Entry) []Ranked {
	ranked := make([]Ranked, len(entries))
	for i, e := range entries {
		ranked[i] = Ranked{Entry: e, Score: Score(e.Likes, e.Dislikes)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TotalVotes() > ranked[j].TotalVotes()
	})

	return ranked
}
