package middleware

import (
	"context"

	"nightpaths-server/internal/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Headers the hosting platform sets on every forwarded request. The platform
// is the identity provider; this service never verifies credentials itself.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUsername  = "X-Username"
	HeaderCommunity = "X-Community"
)

// Identity extracts the platform-supplied user identity and community from
// request headers and places them in the request context. Requests without
// identity are served as "anonymous"; nothing here is rejected.
func Identity(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			userID := req.Header.Get(HeaderUserID)
			if userID == "" {
				userID = models.AnonymousUserID
			}
			username := req.Header.Get(HeaderUsername)
			community := req.Header.Get(HeaderCommunity)

			ctx := req.Context()
			ctx = context.WithValue(ctx, models.UserContextKey, userID)
			ctx = context.WithValue(ctx, models.UsernameContextKey, username)
			ctx = context.WithValue(ctx, models.CommunityContextKey, community)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// UserIDFromContext returns the user id placed by Identity, falling back to
// anonymous when the middleware did not run.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(models.UserContextKey).(string); ok && v != "" {
		return v
	}
	return models.AnonymousUserID
}

// UsernameFromContext returns the platform username, if any.
func UsernameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(models.UsernameContextKey).(string)
	return v
}

// CommunityFromContext returns the community name, if any.
func CommunityFromContext(ctx context.Context) string {
	v, _ := ctx.Value(models.CommunityContextKey).(string)
	return v
}
