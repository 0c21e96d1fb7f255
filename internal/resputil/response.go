// Package resputil is the single place where responses are shaped.
// Errors always carry a human-readable message; validation errors
// additionally enumerate the offending fields.
package resputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/planlane/planlane/pkg/logutils"
)

type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorBody struct {
	Message string                  `json:"message"`
	Errors  []ValidationErrorDetail `json:"errors,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func BadRequest(c *gin.Context, msg string, details ...ValidationErrorDetail) {
	c.JSON(http.StatusBadRequest, ErrorBody{Message: msg, Errors: details})
}

// BindError converts a gin binding failure into a 400 with per-field
// details when the underlying error carries them.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]ValidationErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, ValidationErrorDetail{
				Field:   fe.Field(),
				Message: "failed on the '" + fe.Tag() + "' rule",
			})
		}
		BadRequest(c, "invalid request", details...)
		return
	}
	BadRequest(c, err.Error())
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorBody{Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorBody{Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorBody{Message: msg})
}

// Conflict covers duplicate usernames/emails, duplicate integration
// types and last-admin violations. The client contract classifies
// these as bad requests.
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Message: msg})
}

// Error reports an infrastructure failure. The detail is logged server
// side; the client only sees a generic message.
func Error(c *gin.Context, err error) {
	logutils.Log.WithFields(logutils.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error(err)
	c.JSON(http.StatusInternalServerError, ErrorBody{Message: "internal server error"})
}
