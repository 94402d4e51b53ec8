package handler

import "nightpaths-server/internal/models"

type rateRequest struct {
	Rating models.RatingValue `json:"rating" validate:"required,oneof=like dislike"`
}

type addHistoryRequest struct {
	StoryID string `json:"storyId" validate:"required"`
}

type trackCompletionRequest struct {
	StoryID  string               `json:"storyId" validate:"required"`
	PlayTime int64                `json:"playTime" validate:"gte=0"`
	Status   models.SessionStatus `json:"status" validate:"required,oneof=completed abandoned"`
}

type trackStartRequest struct {
	StoryID  string          `json:"storyId" validate:"required"`
	Tone     models.Tone     `json:"tone,omitempty"`
	Duration models.Duration `json:"duration,omitempty"`
}

type trackEventRequest struct {
	StoryID string `json:"storyId" validate:"required"`
}

type sceneViewRequest struct {
	StoryID string `json:"storyId" validate:"required"`
	SceneID string `json:"sceneId,omitempty"`
}

type playtimeRequest struct {
	StoryID  string `json:"storyId" validate:"required"`
	PlayTime int64  `json:"playTime" validate:"gte=0"`
}

type identityResponse struct {
	Success   bool   `json:"success"`
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"`
	Community string `json:"community,omitempty"`
}

type storyListResponse struct {
	Success bool                   `json:"success"`
	Stories []models.StoryMetadata `json:"stories"`
	Count   int                    `json:"count"`
}

type storyResponse struct {
	Success bool          `json:"success"`
	Story   *models.Story `json:"story"`
}

type leaderboardResponse struct {
	Success bool                      `json:"success"`
	Entries []models.LeaderboardEntry `json:"entries"`
	Count   int                       `json:"count"`
}

type historyResponse struct {
	Success bool `json:"success"`
	models.UserHistory
}

type streakResponse struct {
	Success bool          `json:"success"`
	Streak  models.Streak `json:"streak"`
}

type statsResponse struct {
	Success bool             `json:"success"`
	Stats   models.UserStats `json:"stats"`
}

type resetResponse struct {
	Success     bool  `json:"success"`
	DeletedKeys int64 `json:"deletedKeys"`
}

type trackedResponse struct {
	Success bool          `json:"success"`
	Streak  models.Streak `json:"streak"`
}

type okResponse struct {
	Success bool `json:"success"`
}
