package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hoevejo/hoeve-Family-picks/internal/espn"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/game"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/job"
	"github.com/hoevejo/hoeve-Family-picks/utils"
)

// GamesService ingests the external feed: it creates and refreshes game
// documents and advances the config week. It is the only writer of config.
type GamesService struct {
	db   *firestore.Client
	feed *espn.Client
}

func NewGamesService(db *firestore.Client, feed *espn.Client) *GamesService {
	return &GamesService{db: db, feed: feed}
}

// FetchOptions override the config-derived target week.
type FetchOptions struct {
	Week        int
	SeasonYear  int
	SeasonType  string
	UseNextWeek bool
}

// FetchAndStoreGames fetches and stores games for a target week. With no
// explicit week and a passed deadline it advances to the next week, moving
// the deadline to the earliest kickoff and keeping or drawing the game of
// the week.
func (s *GamesService) FetchAndStoreGames(ctx context.Context, opts FetchOptions) (*job.Result, error) {
	cfgRef := s.db.Collection("config").Doc("config")
	cfg := config.Config{SeasonYear: time.Now().Year(), SeasonType: string(config.SeasonRegular), Week: 1}

	snap, err := cfgRef.Get(ctx)
	switch {
	case err == nil:
		if err := snap.DataTo(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case status.Code(err) == codes.NotFound:
		// first run bootstraps the config from defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if opts.SeasonYear != 0 {
		cfg.SeasonYear = opts.SeasonYear
	}
	if opts.SeasonType != "" {
		cfg.SeasonType = opts.SeasonType
	}
	if opts.Week != 0 {
		cfg.Week = opts.Week
	}

	deadlinePassed := !cfg.Deadline.IsZero() && time.Now().After(cfg.Deadline)
	targetWeek := cfg.Week
	if opts.UseNextWeek || (opts.Week == 0 && deadlinePassed) {
		targetWeek = cfg.Week + 1
	}
	season := cfg.Season()

	sb, err := s.feed.ScoreboardFor(ctx, cfg.SeasonYear, season, targetWeek)
	if err != nil {
		return nil, err
	}
	if len(sb.Events) == 0 {
		return job.NotReady(fmt.Sprintf("No games found for year=%d, type=%s, week=%d", cfg.SeasonYear, season, targetWeek)), nil
	}
	if end, ok := sb.SeasonEnd(); ok && time.Now().After(end) {
		return job.NotReady("Season is over. Skipping fetch."), nil
	}

	queue := utils.NewBatchQueue(s.db)
	var earliest time.Time
	for i := range sb.Events {
		ev := &sb.Events[i]
		g := gameFromEvent(ev, cfg.SeasonYear, season, targetWeek)

		docID := fmt.Sprintf("%d-%s-week%d-%s", cfg.SeasonYear, season.Slug(), targetWeek, g.ID)
		if err := queue.Set(ctx, s.db.Collection("games").Doc(docID), g, firestore.MergeAll); err != nil {
			return nil, err
		}

		if kickoff, err := time.Parse(time.RFC3339, ev.Date); err == nil {
			if earliest.IsZero() || kickoff.Before(earliest) {
				earliest = kickoff
			}
		}
	}
	if err := queue.Flush(ctx); err != nil {
		return nil, err
	}

	// keep the existing game of the week when re-fetching the same week,
	// otherwise draw one deterministically for the new week
	gotw := cfg.GameOfTheWeekID
	if cfg.Week != targetWeek || gotw == "" {
		gotw = drawGameOfTheWeek(cfg.SeasonYear, season, targetWeek, sb.Events)
	}

	update := map[string]any{
		"week":            targetWeek,
		"seasonYear":      cfg.SeasonYear,
		"seasonType":      string(season),
		"seasonTypeSlug":  season.Slug(),
		"recapWeek":       max(0, targetWeek-1),
		"gameOfTheWeekId": gotw,
		"lastUpdated":     time.Now().Format(time.RFC3339),
	}
	if !earliest.IsZero() {
		update["deadline"] = earliest
	}
	if end, ok := sb.SeasonEnd(); ok {
		update["endOfSeason"] = end
	}
	if _, err := cfgRef.Set(ctx, update, firestore.MergeAll); err != nil {
		return nil, fmt.Errorf("failed to update config: %w", err)
	}

	log.Printf("Stored %d games for week %d, game of the week %s", len(sb.Events), targetWeek, gotw)
	return &job.Result{
		Success:         true,
		Week:            targetWeek,
		GamesFetched:    len(sb.Events),
		GameOfTheWeekID: gotw,
	}, nil
}

// RefreshGameResults reconciles stored game documents for the configured
// week against the live scoreboard: scores, status, winner or confirmed tie.
// Picks are untouched; the weekly results job grades them once everything is
// final.
func (s *GamesService) RefreshGameResults(ctx context.Context) (*job.Result, error) {
	snap, err := s.db.Collection("config").Doc("config").Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}
	var cfg config.Config
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sb, err := s.feed.Scoreboard(ctx)
	if err != nil {
		return nil, err
	}
	events := sb.EventsByID()

	iter := s.db.Collection("games").
		Where("seasonYear", "==", cfg.SeasonYear).
		Where("week", "==", cfg.Week).
		Where("seasonType", "in", cfg.Season().Variants()).
		Documents(ctx)
	defer iter.Stop()

	queue := utils.NewBatchQueue(s.db)
	updated := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read games: %w", err)
		}

		var g game.Game
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to decode game %s: %w", doc.Ref.ID, err)
		}
		if g.HasResult || g.FinalTie {
			continue
		}

		ev := events[g.ID]
		if ev == nil || !ev.Final() {
			continue
		}

		winner, tie := ev.Winner()
		update := map[string]any{
			"status":      ev.StatusName(),
			"lastUpdated": time.Now().Format(time.RFC3339),
		}
		for _, c := range ev.Competitors() {
			switch c.HomeAway {
			case "home":
				update["homeTeam.score"] = int(c.Score)
			case "away":
				update["awayTeam.score"] = int(c.Score)
			}
		}
		switch {
		case winner != nil && winner.Team.ID != "":
			update["winnerId"] = winner.Team.ID
			update["hasResult"] = true
		case tie:
			update["finalTie"] = true
			update["hasResult"] = false
		default:
			continue
		}

		if err := queue.Set(ctx, doc.Ref, update, firestore.MergeAll); err != nil {
			return nil, err
		}
		updated++
	}

	if err := queue.Flush(ctx); err != nil {
		return nil, err
	}

	log.Printf("Refreshed results for %d games", updated)
	return &job.Result{Success: true, Week: cfg.Week, UpdatedGames: updated}, nil
}

// gameFromEvent maps a feed event onto a game document.
func gameFromEvent(ev *espn.Event, year int, season config.SeasonType, week int) game.Game {
	g := game.Game{
		ID:          ev.ID,
		Name:        ev.Name,
		ShortName:   ev.ShortName,
		Date:        ev.Date,
		Status:      ev.StatusName(),
		SeasonType:  string(season),
		SeasonYear:  year,
		Week:        week,
		LastUpdated: time.Now().Format(time.RFC3339),
	}

	for _, c := range ev.Competitors() {
		t := game.Team{
			ID:           c.Team.ID,
			Name:         c.Team.DisplayName,
			Mascot:       c.Team.Name,
			Abbreviation: c.Team.Abbreviation,
			Score:        int(c.Score),
			Logo:         c.Team.Logo,
		}
		if len(c.Records) > 0 {
			t.Record = c.Records[0].Summary
		}
		switch c.HomeAway {
		case "home":
			g.HomeTeam = t
		case "away":
			g.AwayTeam = t
		}
	}

	winner, tie := ev.Winner()
	switch {
	case winner != nil && winner.Team.ID != "":
		g.WinnerID = winner.Team.ID
		g.HasResult = ev.Final()
	case tie:
		g.FinalTie = true
	}
	return g
}

// drawGameOfTheWeek picks a deterministic event for a given week so that
// repeated fetches of the same week agree without storing extra state.
func drawGameOfTheWeek(year int, season config.SeasonType, week int, events []espn.Event) string {
	if len(events) == 0 {
		return ""
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%d-%s-week%d", year, season.Slug(), week)
	return events[int(h.Sum32())%len(events)].ID
}
