package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/hoevejo/hoeve-Family-picks/internal/espn"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/game"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/job"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/pick"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/recap"
)

// Notifier is the fire-and-forget push side effect. A failed broadcast is
// logged and never fails a job.
type Notifier interface {
	Broadcast(ctx context.Context, title, body string, data map[string]any) error
}

// ResultsService runs the weekly scoring cycle: resolve outcomes, grade
// picks, rank the leaderboards, write the recap and history snapshots.
type ResultsService struct {
	db          *firestore.Client
	feed        *espn.Client
	leaderboard *LeaderboardService
	recap       *RecapService
	notifier    Notifier

	// StrictAllFinal aborts the whole run with no writes while any game of
	// the week is still unresolved.
	StrictAllFinal bool
}

func NewResultsService(db *firestore.Client, feed *espn.Client, lb *LeaderboardService, rc *RecapService) *ResultsService {
	return &ResultsService{
		db:             db,
		feed:           feed,
		leaderboard:    lb,
		recap:          rc,
		StrictAllFinal: true,
	}
}

func (s *ResultsService) SetNotifier(n Notifier) {
	s.notifier = n
}

// outcomes is the resolver's verdict for a week: winners, confirmed final
// ties, and everything else (still unresolved).
type outcomes struct {
	winners    map[string]string // gameId -> winning team id
	ties       map[string]bool
	unresolved []string
}

// resolveOutcomes reconciles stored game documents with the live feed.
// Priority per game: a stored result, then the feed's winner flag, then
// score comparison on a final event, then a confirmed final tie. A feed
// event with missing fields simply leaves its game unresolved.
func resolveOutcomes(games []game.Game, events map[string]*espn.Event) outcomes {
	oc := outcomes{
		winners: make(map[string]string),
		ties:    make(map[string]bool),
	}
	for _, g := range games {
		switch {
		case g.HasResult && g.WinnerID != "":
			oc.winners[g.ID] = g.WinnerID
			continue
		case g.FinalTie:
			oc.ties[g.ID] = true
			continue
		}

		ev := events[g.ID]
		if ev == nil {
			oc.unresolved = append(oc.unresolved, g.ID)
			continue
		}
		winner, tie := ev.Winner()
		switch {
		case winner != nil && winner.Team.ID != "":
			oc.winners[g.ID] = winner.Team.ID
		case tie:
			oc.ties[g.ID] = true
		default:
			oc.unresolved = append(oc.unresolved, g.ID)
		}
	}
	return oc
}

// pickGrade is the grader's output for one pick document.
type pickGrade struct {
	score int
	// isCorrect values to write, keyed by game id; a nil value writes the
	// stored null that marks a push.
	updates     map[string]*bool
	wagerResult *pick.WagerResult
	writeWager  bool
}

// gradePick marks each prediction against the resolved outcomes and settles
// the wager. Writes are only queued for fields whose stored value would
// change, so a re-run on graded data produces no writes at all.
func gradePick(p *pick.Pick, oc outcomes, cfg *config.Config, now time.Time) pickGrade {
	g := pickGrade{updates: make(map[string]*bool)}

	for gameID, pred := range p.Predictions {
		if winnerID, ok := oc.winners[gameID]; ok {
			isCorrect := pred.TeamID == winnerID
			if pred.IsCorrect == nil || *pred.IsCorrect != isCorrect {
				v := isCorrect
				g.updates[gameID] = &v
			}
			if isCorrect {
				g.score++
			}
			continue
		}
		if oc.ties[gameID] {
			// a tied final counts for nobody; isCorrect stays null
			if pred.IsCorrect != nil {
				g.updates[gameID] = nil
			}
			continue
		}
		// not part of this grading pass
	}

	if wr := settleWager(p, oc, cfg, now); wr != nil {
		g.score += wr.Applied
		if p.WagerResult == nil || p.WagerResult.Outcome != wr.Outcome || p.WagerResult.Applied != wr.Applied {
			g.writeWager = true
		}
		g.wagerResult = wr
	}
	return g
}

// settleWager returns the wager settlement, or nil when there is nothing to
// settle (no wager, wagers disabled, the wagered game unresolved, or a wager
// that does not target the configured game of the week — the latter is
// ignored defensively, the write path validates it upstream).
func settleWager(p *pick.Pick, oc outcomes, cfg *config.Config, now time.Time) *pick.WagerResult {
	if !cfg.Wager.Enabled || p.Wager == nil || cfg.GameOfTheWeekID == "" {
		return nil
	}
	if p.Wager.GameID != cfg.GameOfTheWeekID {
		return nil
	}

	lossApplied := func() int {
		if cfg.Wager.Mode == config.WagerWinZero {
			return 0
		}
		return -p.Wager.Points
	}

	if winnerID, ok := oc.winners[p.Wager.GameID]; ok {
		if p.Wager.TeamID == winnerID {
			return &pick.WagerResult{Outcome: pick.WagerWin, Applied: p.Wager.Points, GradedAt: now}
		}
		return &pick.WagerResult{Outcome: pick.WagerLose, Applied: lossApplied(), GradedAt: now}
	}

	if oc.ties[p.Wager.GameID] {
		switch cfg.Wager.TieBehavior {
		case config.TieWrong:
			return &pick.WagerResult{Outcome: pick.WagerLose, Applied: lossApplied(), GradedAt: now}
		case config.TieZero:
			return &pick.WagerResult{Outcome: pick.WagerZero, Applied: 0, GradedAt: now}
		default:
			return &pick.WagerResult{Outcome: pick.WagerPush, Applied: 0, GradedAt: now}
		}
	}
	return nil
}

// readiness decides whether the cycle may grade. It runs before any pick,
// leaderboard or recap write; a non-nil result aborts the whole run with
// success:false and nothing modified.
func (s *ResultsService) readiness(oc outcomes) *job.Result {
	if s.StrictAllFinal && len(oc.unresolved) > 0 {
		log.Printf("Games without a result yet, aborting grading: %v", oc.unresolved)
		return job.NotReady("Not all games are final yet.")
	}
	if len(oc.winners) == 0 && len(oc.ties) == 0 {
		return job.NotReady("No winners available.")
	}
	return nil
}

// CalculateWeeklyResults is the full scoring cycle for the configured week.
func (s *ResultsService) CalculateWeeklyResults(ctx context.Context) (*job.Result, error) {
	log.Println("Starting weekly results calculation...")

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	season := cfg.Season()

	games, err := s.gamesForWeek(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// only hit the feed when the stored documents leave gaps
	events := map[string]*espn.Event{}
	if anyMissingResult(games) {
		sb, err := s.feed.Scoreboard(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch live scoreboard: %w", err)
		}
		events = sb.EventsByID()
	}

	oc := resolveOutcomes(games, events)
	if res := s.readiness(oc); res != nil {
		return res, nil
	}

	userScores, details, gradedPicks, err := s.gradeWeek(ctx, cfg, oc)
	if err != nil {
		return nil, err
	}

	entries, err := s.leaderboard.ApplyWeeklyScores(ctx, season.Slug(), cfg.WeekKey(), userScores)
	if err != nil {
		return nil, err
	}
	if err := s.leaderboard.ApplyAllTime(ctx, userScores); err != nil {
		return nil, err
	}

	if err := s.recap.WriteWeek(ctx, cfg, details, entries, gradedPicks); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		title := "Results are in!"
		body := fmt.Sprintf("Week %d has been scored. Check the leaderboard.", cfg.Week)
		if err := s.notifier.Broadcast(ctx, title, body, map[string]any{"week": cfg.Week}); err != nil {
			log.Printf("Results notification failed (ignored): %v", err)
		}
	}

	log.Println("Weekly results calculation completed.")
	return &job.Result{
		Success:     true,
		Week:        cfg.Week,
		GradedPicks: len(details),
		RankedUsers: len(entries),
	}, nil
}

// gradeWeek grades every pick for the configured week and flushes the
// updates in bounded batches.
func (s *ResultsService) gradeWeek(ctx context.Context, cfg *config.Config, oc outcomes) (map[string]int, []recap.ScoreLine, []recap.GradedPick, error) {
	userScores := make(map[string]int)
	var details []recap.ScoreLine
	var gradedPicks []recap.GradedPick

	queue := newPickUpdateQueue(s.db)
	now := time.Now()

	iter := s.db.Collection("picks").
		Where("seasonYear", "==", cfg.SeasonYear).
		Where("week", "==", cfg.Week).
		Where("seasonType", "in", cfg.Season().Variants()).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read picks: %w", err)
		}

		var p pick.Pick
		if err := doc.DataTo(&p); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to decode pick %s: %w", doc.Ref.ID, err)
		}

		g := gradePick(&p, oc, cfg, now)
		if err := queue.enqueue(ctx, doc.Ref, g); err != nil {
			return nil, nil, nil, err
		}

		userScores[p.UserID] += g.score
		details = append(details, recap.ScoreLine{UID: p.UserID, FullName: p.FullName, Score: g.score})

		written := make(map[string]bool, len(g.updates))
		for gameID, v := range g.updates {
			if v != nil {
				written[gameID] = *v
			}
		}
		gradedPicks = append(gradedPicks, recap.GradedPick{
			PickID:   doc.Ref.ID,
			UserID:   p.UserID,
			FullName: p.FullName,
			Graded:   written,
		})
	}

	if err := queue.flush(ctx); err != nil {
		return nil, nil, nil, err
	}
	return userScores, details, gradedPicks, nil
}

func (s *ResultsService) loadConfig(ctx context.Context) (*config.Config, error) {
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
	return &cfg, nil
}

func (s *ResultsService) gamesForWeek(ctx context.Context, cfg *config.Config) ([]game.Game, error) {
	iter := s.db.Collection("games").
		Where("seasonYear", "==", cfg.SeasonYear).
		Where("week", "==", cfg.Week).
		Where("seasonType", "in", cfg.Season().Variants()).
		Documents(ctx)
	defer iter.Stop()

	var games []game.Game
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
		games = append(games, g)
	}
	return games, nil
}

func anyMissingResult(games []game.Game) bool {
	for _, g := range games {
		if !g.HasResult && !g.FinalTie {
			return true
		}
	}
	return false
}
