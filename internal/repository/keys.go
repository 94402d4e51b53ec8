package repository

import "fmt"

// Redis key layout. Story documents and the metadata index are written by
// RefreshIndex and read everywhere else; all per-user state lives under
// user-scoped keys so a reset can delete it wholesale.
func storyKey(storyID string) string        { return fmt.Sprintf("story:%s", storyID) }
func storyRatingsKey(storyID string) string { return fmt.Sprintf("story_ratings:%s", storyID) }
func completionTimesKey(storyID string) string {
	return fmt.Sprintf("story_completion_times:%s", storyID)
}

func userRatingsKey(userID string) string { return fmt.Sprintf("user_ratings:%s", userID) }
func userHistoryKey(userID string) string { return fmt.Sprintf("user_history:%s", userID) }
func userCompletionsKey(userID string) string {
	return fmt.Sprintf("user_completions:%s", userID)
}
func userStreakKey(userID string) string   { return fmt.Sprintf("user_streak:%s", userID) }
func userSessionsKey(userID string) string { return fmt.Sprintf("user_play_sessions:%s", userID) }

const storyIndexKey = "story_index"

// Hash fields inside story_ratings:{id}.
const (
	fieldLikes    = "likes"
	fieldDislikes = "dislikes"
)

// Analytics counters, scoped either to "global" or to a community name.
const analyticsGlobalScope = "global"

func analyticsStoryCounterKey(scope, storyID, event string) string {
	return fmt.Sprintf("analytics:%s:story:%s:%s", scope, storyID, event)
}

func analyticsTotalCounterKey(scope, event string) string {
	return fmt.Sprintf("analytics:%s:total:%s", scope, event)
}

func analyticsToneKey(scope, tone string) string {
	return fmt.Sprintf("analytics:%s:tone:%s", scope, tone)
}

func analyticsDurationKey(scope, duration string) string {
	return fmt.Sprintf("analytics:%s:duration:%s", scope, duration)
}
