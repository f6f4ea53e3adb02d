package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/projetgotham/gotham/internal/service"
)

// WorkoutService defines the interface for workout operations
// required by the WorkoutHandler.
type WorkoutService interface {
	// CreateExercise registers a new exercise owned by one user.
	CreateExercise(ctx context.Context, in service.CreateExerciseInput) error
	// LogPerformance records one training set.
	LogPerformance(ctx context.Context, in service.LogPerformanceInput) error
	// Leaderboard returns the standings of all active users by rank.
	Leaderboard(ctx context.Context) ([]service.Standing, error)
	// ExerciseSummaries returns a user's per-exercise aggregates.
	ExerciseSummaries(ctx context.Context, userID string) ([]service.ExerciseSummary, error)
	// LeastExercise returns the user's least-worked exercise.
	LeastExercise(ctx context.Context, userID string) (service.LeastExercise, error)
	// History returns a user's sets, most recent first.
	History(ctx context.Context, userID, exerciseID string) ([]service.HistoryEntry, error)
	// Progression returns the max weight per date for one exercise.
	Progression(ctx context.Context, userID, exerciseID string) ([]service.ProgressionPoint, error)
}

// WorkoutHandler handles HTTP requests around exercises and logged
// performances.
type WorkoutHandler struct {
	WorkoutService WorkoutService
}

// CreateExerciseRequest represents the JSON payload for exercise
// creation.
type CreateExerciseRequest struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Zone     string `json:"zone"`
	VideoURL string `json:"video_url,omitempty"`
}

// CreateExercise handles POST /api/exercises.
func (h *WorkoutHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	var req CreateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.WorkoutService.CreateExercise(r.Context(), service.CreateExerciseInput{
		UserID:   req.UserID,
		Name:     req.Name,
		Zone:     req.Zone,
		VideoURL: req.VideoURL,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// LogPerformanceRequest represents the JSON payload for logging one
// set. Values are raw cell strings; weight and notes are optional.
type LogPerformanceRequest struct {
	UserID     string `json:"user_id"`
	ExerciseID string `json:"exercise_id"`
	Date       string `json:"date"`
	Weight     string `json:"weight,omitempty"`
	Reps       string `json:"reps"`
	Ressenti   string `json:"ressenti"`
	Notes      string `json:"notes,omitempty"`
}

// LogPerformance handles POST /api/performances.
func (h *WorkoutHandler) LogPerformance(w http.ResponseWriter, r *http.Request) {
	var req LogPerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.WorkoutService.LogPerformance(r.Context(), service.LogPerformanceInput{
		UserID:     req.UserID,
		ExerciseID: req.ExerciseID,
		Date:       req.Date,
		Weight:     req.Weight,
		Reps:       req.Reps,
		Ressenti:   req.Ressenti,
		Notes:      req.Notes,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

// Leaderboard handles GET /api/leaderboard.
func (h *WorkoutHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := h.WorkoutService.Leaderboard(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// ExerciseSummaries handles GET /api/users/{userID}/exercises/summaries.
func (h *WorkoutHandler) ExerciseSummaries(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	summaries, err := h.WorkoutService.ExerciseSummaries(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// LeastExercise handles GET /api/users/{userID}/exercises/least.
func (h *WorkoutHandler) LeastExercise(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	least, err := h.WorkoutService.LeastExercise(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, least)
}

// History handles GET /api/users/{userID}/history. An exercise_id
// query narrows the listing; format=csv streams it as a CSV download.
func (h *WorkoutHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	entries, err := h.WorkoutService.History(r.Context(), userID, r.URL.Query().Get("exercise_id"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeHistoryCSV(w, entries)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeHistoryCSV(w http.ResponseWriter, entries []service.HistoryEntry) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="gotham_history.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"date", "exercise", "weight", "reps", "ressenti", "notes"})
	for _, e := range entries {
		_ = cw.Write([]string{e.Date, e.Exercise, e.Weight, e.Reps, e.Ressenti, e.Notes})
	}
	cw.Flush()
}

// Progression handles GET /api/users/{userID}/progression. The
// exercise_id query parameter is required.
func (h *WorkoutHandler) Progression(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	exerciseID := r.URL.Query().Get("exercise_id")
	if exerciseID == "" {
		http.Error(w, "exercise_id is required", http.StatusBadRequest)
		return
	}

	points, err := h.WorkoutService.Progression(r.Context(), userID, exerciseID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, points)
}
