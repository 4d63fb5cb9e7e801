package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/job"
	"github.com/hoevejo/hoeve-Family-picks/middleware"
	"github.com/hoevejo/hoeve-Family-picks/services"
)

// JobsHandler exposes the scheduler trigger endpoints. Every endpoint takes
// no body and answers with a job.Result; a deliberate no-op ("not all games
// final yet") is a 200 with success:false, only real failures are 5xx.
type JobsHandler struct {
	games    *services.GamesService
	results  *services.ResultsService
	season   *services.SeasonService
	reminder *services.ReminderService
}

func NewJobsHandler(games *services.GamesService, results *services.ResultsService, season *services.SeasonService, reminder *services.ReminderService) *JobsHandler {
	return &JobsHandler{
		games:    games,
		results:  results,
		season:   season,
		reminder: reminder,
	}
}

const jobTimeout = 2 * time.Minute

func (h *JobsHandler) run(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context) (*job.Result, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), jobTimeout)
	defer cancel()

	runID := uuid.NewString()
	log.Printf("Job %s started (run %s)", name, runID)

	result, err := fn(ctx)
	if err != nil {
		log.Printf("Job %s failed (run %s): %v", name, runID, err)
		middleware.ObserveJob(name, "error")
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	outcome := "success"
	if !result.Success {
		outcome = "not_ready"
		log.Printf("Job %s not ready (run %s): %s", name, runID, result.Message)
	} else {
		log.Printf("Job %s completed (run %s)", name, runID)
	}
	middleware.ObserveJob(name, outcome)
	respondWithJSON(w, http.StatusOK, result)
}

func (h *JobsHandler) FetchGames(w http.ResponseWriter, r *http.Request) {
	opts := services.FetchOptions{}
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("week")); err == nil {
		opts.Week = v
	}
	if v, err := strconv.Atoi(q.Get("seasonYear")); err == nil {
		opts.SeasonYear = v
	}
	opts.SeasonType = q.Get("seasonType")
	opts.UseNextWeek = q.Get("nextWeek") == "true"

	h.run(w, r, "fetch_games", func(ctx context.Context) (*job.Result, error) {
		return h.games.FetchAndStoreGames(ctx, opts)
	})
}

func (h *JobsHandler) RefreshResults(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "refresh_results", h.games.RefreshGameResults)
}

func (h *JobsHandler) WeeklyResults(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "weekly_results", h.results.CalculateWeeklyResults)
}

func (h *JobsHandler) NewSeason(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "new_season", h.season.ResetForNewSeason)
}

func (h *JobsHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	if h.reminder == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Push provider is not configured")
		return
	}
	h.run(w, r, "reminder", h.reminder.SendPredictionReminder)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
