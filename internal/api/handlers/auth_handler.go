package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/weeklygoals/weekly-goals-be/internal/auth"
	"github.com/weeklygoals/weekly-goals-be/internal/models"
	"github.com/weeklygoals/weekly-goals-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			respondError(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, services.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, services.ErrTimeout):
			respondError(w, http.StatusGatewayTimeout, "Registration request timed out. Please try again.")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
			respondError(w, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, services.ErrTimeout):
			respondError(w, http.StatusGatewayTimeout, "Login request timed out. Please try again.")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed login attempt")
			respondError(w, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// respondWithToken writes the auth response shape. Built field by field
// so the password hash can never leak into it.
func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, status, map[string]string{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}
