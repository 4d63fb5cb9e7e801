package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/hoevejo/hoeve-Family-picks/handlers"
	"github.com/hoevejo/hoeve-Family-picks/internal/espn"
	"github.com/hoevejo/hoeve-Family-picks/internal/notification"
	"github.com/hoevejo/hoeve-Family-picks/middleware"
	"github.com/hoevejo/hoeve-Family-picks/services"
)

var (
	db              *firestore.Client
	gamesService    *services.GamesService
	resultsService  *services.ResultsService
	seasonService   *services.SeasonService
	reminderService *services.ReminderService
)

// firebaseCredentials prefers a Base64-encoded service account from the
// environment and falls back to a local key file.
func firebaseCredentials() option.ClientOption {
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Fatal("Failed to decode FIREBASE_SERVICE_ACCOUNT_JSON:", err)
		}
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable")
		return option.WithCredentialsJSON(decoded)
	}

	keyFile := "./serviceAccountKey.json"
	if _, err := os.Stat(keyFile); os.IsNotExist(err) {
		log.Fatal("No Firebase credentials: set FIREBASE_SERVICE_ACCOUNT_JSON or provide ./serviceAccountKey.json")
	}
	log.Printf("Firebase: initializing from local file %s", keyFile)
	return option.WithCredentialsFile(keyFile)
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app, err := firebase.NewApp(ctx, nil, firebaseCredentials())
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	db, err = app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to create Firestore client:", err)
	}
	log.Println("Successfully connected to Firestore")

	feed := espn.NewClient(os.Getenv("SCOREBOARD_BASE_URL"))

	leaderboardService := services.NewLeaderboardService(db)
	recapService := services.NewRecapService(db)
	gamesService = services.NewGamesService(db, feed)
	resultsService = services.NewResultsService(db, feed, leaderboardService, recapService)
	seasonService = services.NewSeasonService(db)

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		fcm := notification.NewFCMService(messagingClient)
		resultsService.SetNotifier(fcm)
		reminderService = services.NewReminderService(db, fcm)
		log.Println("FCM push provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		db.Close()
	}()

	jobsHandler := handlers.NewJobsHandler(gamesService, resultsService, seasonService, reminderService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		iter := db.Collections(ctx)
		if _, err := iter.Next(); err != nil && err != iterator.Done {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "firestore connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "family-picks-jobs"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// JOB TRIGGER ROUTES (SCHEDULER ONLY)
	// -------------------------------------------------------------------------
	jobs := r.PathPrefix("/api/v1/jobs").Subrouter()
	jobs.Use(middleware.JobAuthMiddleware)

	jobs.HandleFunc("/fetch-games", jobsHandler.FetchGames).Methods("POST")
	jobs.HandleFunc("/refresh-results", jobsHandler.RefreshResults).Methods("POST")
	jobs.HandleFunc("/weekly-results", jobsHandler.WeeklyResults).Methods("POST")
	jobs.HandleFunc("/reminder", jobsHandler.Reminder).Methods("POST")
	jobs.HandleFunc("/new-season", jobsHandler.NewSeason).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "X-Job-Secret"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Minute, // weekly results can outlive a default write window
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
