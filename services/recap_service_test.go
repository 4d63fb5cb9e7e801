package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/leaderboard"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/recap"
)

func uids(entries []leaderboard.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.UID
	}
	return out
}

func TestBuildRecapExtremes(t *testing.T) {
	cfg := baseConfig()
	details := []recap.ScoreLine{
		{UID: "a", FullName: "A", Score: 11},
		{UID: "b", FullName: "B", Score: 11},
		{UID: "c", FullName: "C", Score: 4},
	}
	entries := []leaderboard.Entry{
		{UID: "a", LastWeekPoints: 11, PositionChange: 2},
		{UID: "b", LastWeekPoints: 11, PositionChange: 0},
		{UID: "c", LastWeekPoints: 4, PositionChange: -3},
		{UID: "d", LastWeekPoints: 0, PositionChange: 1}, // no pick this week
	}

	rec := buildRecap(cfg, details, entries, time.Now())

	assert.Equal(t, 11, rec.HighestScore)
	assert.Equal(t, 4, rec.LowestScore, "users without a pick are excluded from score extremes")
	assert.ElementsMatch(t, []string{"a", "b"}, uids(rec.TopScorers), "all tied top scorers are listed")
	assert.ElementsMatch(t, []string{"c"}, uids(rec.LowestScorers))

	assert.ElementsMatch(t, []string{"a"}, uids(rec.BiggestRisers))
	assert.ElementsMatch(t, []string{"c"}, uids(rec.BiggestFallers))

	assert.Equal(t, 3, rec.Week)
	assert.Equal(t, "regular", rec.SeasonType)
	assert.Equal(t, 2025, rec.SeasonYear)
	assert.Len(t, rec.Scores, 3)
}

func TestBuildRecapMovementCoversWholeBoard(t *testing.T) {
	cfg := baseConfig()
	details := []recap.ScoreLine{{UID: "a", Score: 5}}
	entries := []leaderboard.Entry{
		{UID: "a", LastWeekPoints: 5, PositionChange: 0},
		{UID: "idle", LastWeekPoints: 0, PositionChange: -2}, // slid down without playing
	}

	rec := buildRecap(cfg, details, entries, time.Now())

	assert.ElementsMatch(t, []string{"idle"}, uids(rec.BiggestFallers),
		"rank movement counts even for users who skipped the week")
	assert.ElementsMatch(t, []string{"a"}, uids(rec.BiggestRisers))
}

func TestBuildRecapSingleUser(t *testing.T) {
	cfg := baseConfig()
	details := []recap.ScoreLine{{UID: "a", Score: 0}}
	entries := []leaderboard.Entry{{UID: "a", LastWeekPoints: 0, PositionChange: 0}}

	rec := buildRecap(cfg, details, entries, time.Now())

	assert.Equal(t, 0, rec.HighestScore)
	assert.Equal(t, 0, rec.LowestScore)
	assert.ElementsMatch(t, []string{"a"}, uids(rec.TopScorers))
	assert.ElementsMatch(t, []string{"a"}, uids(rec.LowestScorers))
}

func TestBuildRecapEmptyWeek(t *testing.T) {
	cfg := baseConfig()

	rec := buildRecap(cfg, nil, nil, time.Now())

	assert.Equal(t, 0, rec.HighestScore)
	assert.Empty(t, rec.TopScorers)
	assert.Empty(t, rec.BiggestRisers)
}
