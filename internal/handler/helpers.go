package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
)

// IDReq binds the numeric :id path parameter.
type IDReq struct {
	ID uint `uri:"id" binding:"required"`
}

// denyResponse translates an authorization verdict into the right
// response class: policy denials are 403, last-admin violations are
// conflicts, anything else is an infrastructure failure.
func denyResponse(c *gin.Context, err error) {
	switch {
	case authz.Denied(err):
		resputil.Forbidden(c, err.Error())
	case errors.Is(err, authz.ErrLastAdmin):
		resputil.Conflict(c, err.Error())
	default:
		resputil.Error(c, err)
	}
}

// getOrNotFound loads an entity by primary key and writes the 404
// response itself when the row is absent. A missing parent resource is
// reported before any authorization runs, so "does not exist" stays
// distinguishable from "you may not see it".
func getOrNotFound[T any](c *gin.Context, db *gorm.DB, id uint, name string) (*T, bool) {
	var entity T
	err := db.WithContext(c).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		resputil.NotFound(c, name+" not found")
		return nil, false
	}
	if err != nil {
		resputil.Error(c, err)
		return nil, false
	}
	return &entity, true
}

// isUniqueViolation reports whether err is a unique-constraint failure
// from the database.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The postgres driver surfaces SQLSTATE 23505 in the message when
	// translation is not configured.
	return err != nil && strings.Contains(err.Error(), "23505")
}
