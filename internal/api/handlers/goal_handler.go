package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/weeklygoals/weekly-goals-be/internal/auth"
	"github.com/weeklygoals/weekly-goals-be/internal/services"
)

// GoalHandler handles HTTP requests for weekly goals.
type GoalHandler struct {
	goals services.GoalServiceProvider
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goals services.GoalServiceProvider) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GoalTextPayload defines the body for creating or editing a goal.
type GoalTextPayload struct {
	Text string `json:"text"`
}

// GetCurrent lists the requester's goals for the current ISO week.
func (h *GoalHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())

	goals, err := h.goals.CurrentWeekGoals(r.Context(), requester)
	if err != nil {
		log.Error().Err(err).Str("user_id", requester).Msg("Failed to fetch goals")
		respondError(w, http.StatusInternalServerError, "Failed to fetch goals")
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

// Create adds a goal to the requester's current week.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())

	var payload GoalTextPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := h.goals.CreateGoal(r.Context(), requester, payload.Text)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			respondError(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, services.ErrQuotaExceeded):
			respondError(w, http.StatusBadRequest, "Maximum 5 goals allowed per week")
		default:
			log.Error().Err(err).Str("user_id", requester).Msg("Failed to create goal")
			respondError(w, http.StatusInternalServerError, "Failed to create goal")
		}
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

// Toggle flips a goal's completed flag.
func (h *GoalHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())
	goalID := chi.URLParam(r, "id")

	goal, err := h.goals.ToggleCompletion(r.Context(), goalID, requester)
	if err != nil {
		h.respondGoalError(w, err, requester, goalID, "Failed to toggle goal")
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

// UpdateText replaces a goal's text.
func (h *GoalHandler) UpdateText(w http.ResponseWriter, r *http.Request) {
	requester := auth.RequesterID(r.Context())
	goalID := chi.URLParam(r, "id")

	var payload GoalTextPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	goal, err := h.goals.UpdateText(r.Context(), goalID, requester, payload.Text)
	if err != nil {
		h.respondGoalError(w, err, requester, goalID, "Failed to update goal")
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) respondGoalError(w http.ResponseWriter, err error, requester, goalID, logMsg string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "Goal not found")
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "Not authorized to update this goal")
	default:
		log.Error().Err(err).Str("user_id", requester).Str("goal_id", goalID).Msg(logMsg)
		respondError(w, http.StatusInternalServerError, logMsg)
	}
}
