package resputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	return c, w
}

func TestConflictIsBadRequest(t *testing.T) {
	c, w := testContext()
	Conflict(c, "integration type already configured")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "integration type already configured", body.Message)
	assert.Empty(t, body.Errors)
}

func TestBindErrorWithFieldDetails(t *testing.T) {
	type loginReq struct {
		Username string `binding:"required" json:"username"`
		Password string `binding:"required,min=8" json:"password"`
	}

	// Gin configures its validator to read binding tags; a bare
	// validator.New() would look at validate tags and see no rules.
	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(loginReq{Password: "short"})
	require.Error(t, err)

	c, w := testContext()
	BindError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid request", body.Message)
	require.Len(t, body.Errors, 2)

	fields := []string{body.Errors[0].Field, body.Errors[1].Field}
	assert.Contains(t, fields, "Username")
	assert.Contains(t, fields, "Password")
}

func TestBindErrorWithPlainError(t *testing.T) {
	c, w := testContext()
	BindError(c, assert.AnError)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Empty(t, body.Errors)
}

func TestErrorHidesDetail(t *testing.T) {
	c, w := testContext()
	Error(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
