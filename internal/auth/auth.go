// Package auth gates the HTTP API. In "none" mode every request acts
// as the default user; in "local" mode requests carry either a session
// cookie (web UI) or a bearer API token.
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/entities"
)

// Keys under which the middleware stores the caller's identity in the
// gin context.
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type"
)

// AuthType names the credential a request presented.
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// DefaultUserID owns all data when authentication is disabled.
const DefaultUserID = uint(0)

// GetUserID returns the calling user's ID, or DefaultUserID when the
// request is unauthenticated.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return DefaultUserID
}

// GetUsername returns the calling user's name, if known.
func GetUsername(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyUsername); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// GetUserRole returns the calling user's role, if known.
func GetUserRole(c *gin.Context) entities.UserRole {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType reports which credential authenticated the request.
func GetAuthType(c *gin.Context) AuthType {
	if v, ok := c.Get(ContextKeyAuthType); ok {
		if at, ok := v.(AuthType); ok {
			return at
		}
	}
	return AuthTypeNone
}
