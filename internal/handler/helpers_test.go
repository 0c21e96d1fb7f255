package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/planlane/planlane/internal/authz"
	"github.com/planlane/planlane/internal/resputil"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	return c, w
}

func TestDenyResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not member", authz.ErrNotMember, http.StatusForbidden},
		{"role required", authz.ErrRoleRequired, http.StatusForbidden},
		{"last admin", authz.ErrLastAdmin, http.StatusBadRequest},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()
			denyResponse(c, tt.err)
			assert.Equal(t, tt.wantCode, w.Code)

			var body resputil.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestDenyResponseHidesInternalDetail(t *testing.T) {
	c, w := testContext()
	denyResponse(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_project_user" (SQLSTATE 23505)`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short note", summarize("short note"))

	long := strings.Repeat("planning ", 20)
	got := summarize(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Less(t, len(got), len(long))
}
