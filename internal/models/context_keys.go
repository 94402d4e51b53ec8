package models

type contextKey string

// Context keys under which the identity middleware stores platform-supplied
// request identity.
const (
	UserContextKey      contextKey = "user_id"
	UsernameContextKey  contextKey = "username"
	CommunityContextKey contextKey = "community"
)

// AnonymousUserID is used when the platform supplies no identity.
const AnonymousUserID = "anonymous"
