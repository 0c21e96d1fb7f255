package util

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/planlane/planlane/dao/model"
	"github.com/planlane/planlane/pkg/config"
)

type (
	JWTClaims struct {
		UserID   uint             `json:"ui"`
		Username string           `json:"un"`
		Role     model.GlobalRole `json:"ro"`
		jwt.RegisteredClaims
	}

	// JWTMessage is the authenticated identity carried through the
	// request context: who the caller is and their platform role.
	JWTMessage struct {
		UserID   uint             `json:"userID"`
		Username string           `json:"username"`
		Role     model.GlobalRole `json:"role"`
	}
)

type TokenManager struct {
	secretKey  string
	sessionTTL time.Duration
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		conf := config.GetConfig()
		tokenMgr = NewTokenManager(conf.Auth.SessionSecret,
			time.Duration(conf.Auth.SessionExpiryHour)*time.Hour)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, sessionTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:  secretKey,
		sessionTTL: sessionTTL,
	}
}

// SessionTTL is the lifetime of a session token and of the cookie that
// carries it.
func (tm *TokenManager) SessionTTL() time.Duration {
	return tm.sessionTTL
}

// CreateToken signs a session token for the given identity.
func (tm *TokenManager) CreateToken(msg *JWTMessage) (string, error) {
	expiresAt := time.Now().Add(tm.sessionTTL)

	claims := &JWTClaims{
		UserID:   msg.UserID,
		Username: msg.Username,
		Role:     msg.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CheckToken parses and validates a session token.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	return JWTMessage{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, err
}
