package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/leaderboard"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/recap"
)

// RecapService derives the weekly superlatives and persists the recap and
// history snapshots.
type RecapService struct {
	db *firestore.Client
}

func NewRecapService(db *firestore.Client) *RecapService {
	return &RecapService{db: db}
}

// buildRecap computes score and movement extremes. Score extremes only
// consider users who actually submitted a pick this week; movement extremes
// cover the whole board since everyone's rank can shift. Every entry matching
// an extremum is listed, ties included.
func buildRecap(cfg *config.Config, details []recap.ScoreLine, entries []leaderboard.Entry, now time.Time) recap.WeeklyRecap {
	rec := recap.WeeklyRecap{
		Week:       cfg.Week,
		SeasonType: cfg.Season().Slug(),
		SeasonYear: cfg.SeasonYear,
		Scores:     details,
		CreatedAt:  now,
	}

	played := make(map[string]bool, len(details))
	for _, d := range details {
		played[d.UID] = true
	}

	first := true
	for _, e := range entries {
		if !played[e.UID] {
			continue
		}
		if first || e.LastWeekPoints > rec.HighestScore {
			rec.HighestScore = e.LastWeekPoints
		}
		if first || e.LastWeekPoints < rec.LowestScore {
			rec.LowestScore = e.LastWeekPoints
		}
		first = false
	}
	for _, e := range entries {
		if !played[e.UID] {
			continue
		}
		if e.LastWeekPoints == rec.HighestScore {
			rec.TopScorers = append(rec.TopScorers, e)
		}
		if e.LastWeekPoints == rec.LowestScore {
			rec.LowestScorers = append(rec.LowestScorers, e)
		}
	}

	if len(entries) > 0 {
		maxRise, maxDrop := entries[0].PositionChange, entries[0].PositionChange
		for _, e := range entries[1:] {
			if e.PositionChange > maxRise {
				maxRise = e.PositionChange
			}
			if e.PositionChange < maxDrop {
				maxDrop = e.PositionChange
			}
		}
		for _, e := range entries {
			if e.PositionChange == maxRise {
				rec.BiggestRisers = append(rec.BiggestRisers, e)
			}
			if e.PositionChange == maxDrop {
				rec.BiggestFallers = append(rec.BiggestFallers, e)
			}
		}
	}

	return rec
}

// WriteWeek writes the recap and the history snapshot for the configured
// week. Both are keyed by week, so a re-run overwrites rather than appends.
func (s *RecapService) WriteWeek(ctx context.Context, cfg *config.Config, details []recap.ScoreLine, entries []leaderboard.Entry, picks []recap.GradedPick) error {
	now := time.Now()
	rec := buildRecap(cfg, details, entries, now)
	key := cfg.WeekKey()

	if _, err := s.db.Collection("weeklyRecap").Doc(key).Set(ctx, rec); err != nil {
		return fmt.Errorf("failed to write weekly recap %s: %w", key, err)
	}

	hist := recap.History{
		Week:        cfg.Week,
		SeasonType:  cfg.Season().Slug(),
		SeasonYear:  cfg.SeasonYear,
		Leaderboard: entries,
		Recap:       rec,
		Picks:       picks,
		CreatedAt:   now,
	}
	if _, err := s.db.Collection("history").Doc(key).Set(ctx, hist); err != nil {
		return fmt.Errorf("failed to write history %s: %w", key, err)
	}

	log.Printf("Recap and history written for %s", key)
	return nil
}
