// Package main initializes and starts the Gotham HTTP server, setting
// up configuration, logging, the row-store connection, the table
// cache, services and handlers.
package main

import (
	"cmp"
	"fmt"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/projetgotham/gotham/internal/cache"
	"github.com/projetgotham/gotham/internal/config"
	"github.com/projetgotham/gotham/internal/logger"
	"github.com/projetgotham/gotham/internal/middleware"
	"github.com/projetgotham/gotham/internal/rowstore"
	"github.com/projetgotham/gotham/internal/server/handler/http"
	"github.com/projetgotham/gotham/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Connect to the backing row store.
	db, err := rowstore.Open(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init row store", zap.Error(err))
	}
	store := rowstore.NewPostgres(db)

	// One cache entry per table, shared by every service.
	tableCache := cache.New(cache.DefaultTTL, rowstore.Tables...)

	// Cookie store for the login session.
	sessionStore := middleware.NewSessionStore(options.SessionKey)

	// Initialize business-logic services.
	authService := service.NewAuthService(store, tableCache, zapLogger)
	workoutService := service.NewWorkoutService(store, tableCache, zapLogger)

	// Create HTTP handlers for account and workout endpoints.
	authHandler := &http.AuthHandler{AuthService: authService, Sessions: sessionStore}
	workoutHandler := &http.WorkoutHandler{WorkoutService: workoutService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, workoutHandler, sessionStore, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
