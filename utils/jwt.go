package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification outcomes. Callers branch with errors.Is; expiry must stay
// distinguishable from every other failure (different 401 message).
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the user identity inside the session token. Email and name
// are display-only: the server authorizes on UserID alone.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

var (
	mu        sync.RWMutex
	secretKey = []byte("supersecret")
	tokenTTL  = 2 * time.Hour
)

// Configure sets the signing secret and validity window. Issuer and verifier
// share the secret; main calls this once from config before serving.
func Configure(secret string, ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if secret != "" {
		secretKey = []byte(secret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func signingKey() ([]byte, time.Duration) {
	mu.RLock()
	defer mu.RUnlock()
	return secretKey, tokenTTL
}

func GenerateToken(userID int64, email, name string) (string, error) {
	key, ttl := signingKey()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Name:   name,
	})
	return token.SignedString(key)
}

// VerifyToken checks signature and expiry and returns the decoded claims.
// Failures map to exactly one of ErrTokenExpired or ErrTokenInvalid.
func VerifyToken(tokenString string) (Claims, error) {
	key, _ := signingKey()
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !parsed.Valid || claims.UserID == 0 {
		return Claims{}, ErrTokenInvalid
	}
	return *claims, nil
}
