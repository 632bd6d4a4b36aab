package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/weeklygoals/weekly-goals-be/internal/models"
	"github.com/weeklygoals/weekly-goals-be/internal/store"
)

// Claims defines the JWT claims structure.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

type contextKey string

const requesterKey = contextKey("requester")

// RequesterID returns the authenticated user id the middleware stored
// in the request context, or "" outside an authenticated request.
func RequesterID(ctx context.Context) string {
	id, _ := ctx.Value(requesterKey).(string)
	return id
}

// UserFinder resolves a token's user id to an account.
type UserFinder interface {
	UserByID(ctx context.Context, id string) (models.User, error)
}

// TokenManager issues and validates bearer tokens. It owns the signing
// key; nothing else in the process reads it.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager creates a TokenManager signing with the given secret.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), expiry: expiry}
}

// Generate creates a signed token for a user id.
func (m *TokenManager) Generate(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses and verifies a token string.
func (m *TokenManager) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Middleware protects routes with bearer-token auth. The token's user
// must still exist; its id is then available via RequesterID.
func (m *TokenManager) Middleware(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenStr == "" {
				unauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := m.Validate(tokenStr)
			if err != nil {
				unauthorized(w, "Not authorized")
				return
			}

			user, err := users.UserByID(r.Context(), claims.UserID)
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(w, "User not found")
				return
			}
			if err != nil {
				// A storage failure is not the caller's fault; a 401 here
				// would tell clients to discard a working token.
				respondMessage(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), requesterKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	respondMessage(w, http.StatusUnauthorized, message)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
