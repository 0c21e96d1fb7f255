package util

import (
	"github.com/gin-gonic/gin"

	"github.com/planlane/planlane/dao/model"
)

const (
	UserIDKey   = "x-user-id"
	UsernameKey = "x-user-name"
	RoleKey     = "x-user-role"
)

// SessionCookie carries the signed session token.
const SessionCookie = "planlane_session"

func SetJWTContext(c *gin.Context, msg JWTMessage) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UsernameKey, msg.Username)
	c.Set(RoleKey, msg.Role)
}

func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	msg.UserID = ctx.GetUint(UserIDKey)
	msg.Username = ctx.GetString(UsernameKey)

	role, _ := ctx.Get(RoleKey)
	msg.Role = role.(model.GlobalRole)
	return msg
}

// IsAdmin reports whether the caller holds the platform admin role.
func (m JWTMessage) IsAdmin() bool {
	return m.Role == model.GlobalRoleAdmin
}
