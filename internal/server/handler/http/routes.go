package http

import (
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/projetgotham/gotham/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// Gotham API. It applies JSON content-type enforcement and request
// logging, mounts the public account and read endpoints, and guards
// the write endpoints behind the session cookie.
//
// Routes:
//
//	POST /api/register                             → authHandler.Register
//	POST /api/login                                → authHandler.Login
//	POST /api/logout                               → authHandler.Logout
//	GET  /api/leaderboard                          → workoutHandler.Leaderboard
//	GET  /api/users/{userID}/exercises/summaries   → workoutHandler.ExerciseSummaries
//	GET  /api/users/{userID}/exercises/least       → workoutHandler.LeastExercise
//	GET  /api/users/{userID}/history               → workoutHandler.History
//	GET  /api/users/{userID}/progression           → workoutHandler.Progression
//	POST /api/exercises                            → workoutHandler.CreateExercise (session)
//	POST /api/performances                         → workoutHandler.LogPerformance (session)
func NewRouter(
	authHandler *AuthHandler,
	workoutHandler *WorkoutHandler,
	sessionStore sessions.Store,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json (bodyless
	// GETs pass through unchecked).
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Get("/leaderboard", workoutHandler.Leaderboard)
		r.Get("/users/{userID}/exercises/summaries", workoutHandler.ExerciseSummaries)
		r.Get("/users/{userID}/exercises/least", workoutHandler.LeastExercise)
		r.Get("/users/{userID}/history", workoutHandler.History)
		r.Get("/users/{userID}/progression", workoutHandler.Progression)

		// Protected group: requires a logged-in session
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessionStore))
			r.Post("/exercises", workoutHandler.CreateExercise)
			r.Post("/performances", workoutHandler.LogPerformance)
		})
	})

	return r
}
