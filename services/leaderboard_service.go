package services

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/leaderboard"
	"github.com/hoevejo/hoeve-Family-picks/utils"
)

// LeaderboardService recomputes totals and ranks. All updates follow the
// subtract-then-add rule, so re-running a week (after a late correction, or
// after a mid-batch failure) never compounds points.
type LeaderboardService struct {
	db *firestore.Client
}

func NewLeaderboardService(db *firestore.Client) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// applyWeekly folds the week's scores into the entries in place:
// newTotal = oldTotal - oldLastWeekPoints + weeklyScore. Users without a
// pick this week score zero, which also unwinds any stale contribution.
func applyWeekly(entries []leaderboard.Entry, scores map[string]int) {
	for i := range entries {
		score := scores[entries[i].UID]
		entries[i].TotalPoints = entries[i].TotalPoints - entries[i].LastWeekPoints + score
		entries[i].LastWeekPoints = score
	}
}

// assignRanks sorts by total descending and assigns competition ranks: a tie
// shares its predecessor's rank, anything else gets its 1-based sorted
// position. PositionChange is previousRank - currentRank (positive = up),
// where previousRank is the rank the entry held before this run. A re-run of
// the same week (detected via the stored week key) keeps previousRank where
// it was, so movement survives re-grading instead of collapsing to zero.
func assignRanks(entries []leaderboard.Entry, weekKey string) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		newRank := i + 1
		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			newRank = entries[i-1].CurrentRank
		}

		rerun := entries[i].LastAppliedWeek == weekKey
		prevRank := entries[i].PreviousRank
		switch {
		case entries[i].CurrentRank == 0:
			prevRank = newRank // never ranked before, starts flat
		case !rerun || newRank != entries[i].CurrentRank:
			prevRank = entries[i].CurrentRank
		case prevRank == 0:
			prevRank = newRank
		}

		entries[i].PreviousRank = prevRank
		entries[i].CurrentRank = newRank
		entries[i].PositionChange = prevRank - newRank
		entries[i].LastAppliedWeek = weekKey
	}
}

// ApplyWeeklyScores updates the seasonal leaderboard for the given season
// slug and week key and returns the ranked entries. Writes merge only the
// fields this pass owns; display name and avatar survive untouched.
func (s *LeaderboardService) ApplyWeeklyScores(ctx context.Context, seasonSlug, weekKey string, scores map[string]int) ([]leaderboard.Entry, error) {
	collection := leaderboard.ForSeason(seasonSlug)

	entries, err := s.readAll(ctx, collection)
	if err != nil {
		return nil, err
	}

	applyWeekly(entries, scores)
	assignRanks(entries, weekKey)

	queue := utils.NewBatchQueue(s.db)
	for _, e := range entries {
		err := queue.Set(ctx, s.db.Collection(collection).Doc(e.UID), map[string]any{
			"uid":             e.UID,
			"totalPoints":     e.TotalPoints,
			"lastWeekPoints":  e.LastWeekPoints,
			"currentRank":     e.CurrentRank,
			"previousRank":    e.PreviousRank,
			"positionChange":  e.PositionChange,
			"lastAppliedWeek": e.LastAppliedWeek,
		}, firestore.MergeAll)
		if err != nil {
			return nil, err
		}
	}
	if err := queue.Flush(ctx); err != nil {
		return nil, err
	}
	return entries, nil
}

// ApplyAllTime folds the week into the all-time leaderboard with the same
// idempotent rule. All-time carries no ranks; it is sorted at display time.
func (s *LeaderboardService) ApplyAllTime(ctx context.Context, scores map[string]int) error {
	entries, err := s.readAll(ctx, leaderboard.AllTime)
	if err != nil {
		return err
	}

	applyWeekly(entries, scores)

	queue := utils.NewBatchQueue(s.db)
	for _, e := range entries {
		err := queue.Set(ctx, s.db.Collection(leaderboard.AllTime).Doc(e.UID), map[string]any{
			"uid":            e.UID,
			"totalPoints":    e.TotalPoints,
			"lastWeekPoints": e.LastWeekPoints,
		}, firestore.MergeAll)
		if err != nil {
			return err
		}
	}
	return queue.Flush(ctx)
}

func (s *LeaderboardService) readAll(ctx context.Context, collection string) ([]leaderboard.Entry, error) {
	iter := s.db.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var entries []leaderboard.Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", collection, err)
		}
		var e leaderboard.Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, doc.Ref.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
