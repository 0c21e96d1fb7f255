package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/internal/util"
)

func adminTestRouter(role model.GlobalRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		util.SetJWTContext(c, util.JWTMessage{UserID: 1, Username: "tester", Role: role})
	}, AuthAdmin())
	r.GET("/admin-only", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthAdminAllowsAdmin(t *testing.T) {
	r := adminTestRouter(model.GlobalRoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthAdminRejectsUser(t *testing.T) {
	r := adminTestRouter(model.GlobalRoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-only", http.NoBody))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthProtectedRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthProtected())
	r.GET("/me", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
