package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planlane/planlane/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	msg := &JWTMessage{UserID: 42, Username: "alice", Role: model.GlobalRoleAdmin}
	token, err := tm.CreateToken(msg)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tm.CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, *msg, got)
	assert.True(t, got.IsAdmin())
}

func TestExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.CreateToken(&JWTMessage{UserID: 1, Username: "bob", Role: model.GlobalRoleUser})
	require.NoError(t, err)

	_, err = tm.CheckToken(token)
	assert.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, err := tm.CreateToken(&JWTMessage{UserID: 1, Username: "bob", Role: model.GlobalRoleUser})
	require.NoError(t, err)

	_, err = other.CheckToken(token)
	assert.Error(t, err)
}
