package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoevejo/hoeve-Family-picks/internal/espn"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/game"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/pick"
)

func boolPtr(b bool) *bool { return &b }

func finalEvent(id string, homeID string, homeScore int, awayID string, awayScore int, withWinnerFlag bool) *espn.Event {
	home := espn.Competitor{
		HomeAway: "home",
		Score:    espn.Score(homeScore),
		Team:     espn.TeamInfo{ID: homeID},
	}
	away := espn.Competitor{
		HomeAway: "away",
		Score:    espn.Score(awayScore),
		Team:     espn.TeamInfo{ID: awayID},
	}
	if withWinnerFlag && homeScore != awayScore {
		if homeScore > awayScore {
			home.Winner = boolPtr(true)
			away.Winner = boolPtr(false)
		} else {
			away.Winner = boolPtr(true)
			home.Winner = boolPtr(false)
		}
	}
	return &espn.Event{
		ID:     id,
		Status: espn.Status{Type: espn.StatusType{Name: "STATUS_FINAL", State: "post", Completed: true}},
		Competitions: []espn.Competition{{
			Competitors: []espn.Competitor{home, away},
		}},
	}
}

func TestResolveOutcomes(t *testing.T) {
	t.Run("stored result takes priority over the feed", func(t *testing.T) {
		games := []game.Game{{ID: "g1", HasResult: true, WinnerID: "teamA"}}
		events := map[string]*espn.Event{"g1": finalEvent("g1", "teamB", 30, "teamA", 10, true)}

		oc := resolveOutcomes(games, events)
		assert.Equal(t, "teamA", oc.winners["g1"])
		assert.Empty(t, oc.unresolved)
	})

	t.Run("feed winner flag fills a gap", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}}
		events := map[string]*espn.Event{"g1": finalEvent("g1", "teamA", 24, "teamB", 17, true)}

		oc := resolveOutcomes(games, events)
		assert.Equal(t, "teamA", oc.winners["g1"])
	})

	t.Run("score comparison when the winner flag is missing", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}}
		events := map[string]*espn.Event{"g1": finalEvent("g1", "teamA", 13, "teamB", 20, false)}

		oc := resolveOutcomes(games, events)
		assert.Equal(t, "teamB", oc.winners["g1"])
	})

	t.Run("equal scores on a final is a confirmed tie", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}}
		events := map[string]*espn.Event{"g1": finalEvent("g1", "teamA", 20, "teamB", 20, false)}

		oc := resolveOutcomes(games, events)
		assert.True(t, oc.ties["g1"])
		assert.Empty(t, oc.winners)
		assert.Empty(t, oc.unresolved)
	})

	t.Run("stored final tie is honored without the feed", func(t *testing.T) {
		games := []game.Game{{ID: "g1", FinalTie: true}}

		oc := resolveOutcomes(games, nil)
		assert.True(t, oc.ties["g1"])
	})

	t.Run("missing event leaves the game unresolved", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}, {ID: "g2", HasResult: true, WinnerID: "x"}}

		oc := resolveOutcomes(games, map[string]*espn.Event{})
		assert.Equal(t, []string{"g1"}, oc.unresolved)
	})

	t.Run("malformed event with no competitors stays unresolved", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}}
		ev := &espn.Event{ID: "g1", Status: espn.Status{Type: espn.StatusType{Completed: true}}}

		oc := resolveOutcomes(games, map[string]*espn.Event{"g1": ev})
		assert.Equal(t, []string{"g1"}, oc.unresolved)
	})

	t.Run("in-progress event stays unresolved", func(t *testing.T) {
		games := []game.Game{{ID: "g1"}}
		ev := finalEvent("g1", "teamA", 7, "teamB", 3, false)
		ev.Status = espn.Status{Type: espn.StatusType{Name: "STATUS_IN_PROGRESS", State: "in"}}
		ev.Competitions[0].Status = espn.Status{}

		oc := resolveOutcomes(games, map[string]*espn.Event{"g1": ev})
		assert.Equal(t, []string{"g1"}, oc.unresolved)
	})
}

func TestReadinessGate(t *testing.T) {
	t.Run("one unresolved game aborts before anything is written", func(t *testing.T) {
		s := &ResultsService{StrictAllFinal: true}
		oc := outcomes{
			winners:    map[string]string{"g1": "teamA", "g2": "teamB"},
			ties:       map[string]bool{},
			unresolved: []string{"g3"},
		}

		res := s.readiness(oc)
		require.NotNil(t, res)
		assert.False(t, res.Success)
		assert.Equal(t, "Not all games are final yet.", res.Message)
	})

	t.Run("nothing resolved aborts", func(t *testing.T) {
		s := &ResultsService{StrictAllFinal: true}
		res := s.readiness(outcomes{winners: map[string]string{}, ties: map[string]bool{}})
		require.NotNil(t, res)
		assert.False(t, res.Success)
		assert.Equal(t, "No winners available.", res.Message)
	})

	t.Run("all final proceeds", func(t *testing.T) {
		s := &ResultsService{StrictAllFinal: true}
		oc := outcomes{winners: map[string]string{"g1": "teamA"}, ties: map[string]bool{"g2": true}}
		assert.Nil(t, s.readiness(oc))
	})
}

func baseConfig() *config.Config {
	return &config.Config{
		SeasonYear: 2025,
		SeasonType: "Regular",
		Week:       3,
	}
}

func TestGradePickBasic(t *testing.T) {
	cfg := baseConfig()
	oc := outcomes{
		winners: map[string]string{"gameA": "teamX", "gameB": "teamY"},
		ties:    map[string]bool{},
	}
	p := &pick.Pick{
		UserID: "u1",
		Predictions: map[string]pick.Prediction{
			"gameA": {TeamID: "teamX"},
			"gameB": {TeamID: "teamZ"},
		},
	}

	g := gradePick(p, oc, cfg, time.Now())

	assert.Equal(t, 1, g.score)
	require.Contains(t, g.updates, "gameA")
	require.Contains(t, g.updates, "gameB")
	assert.True(t, *g.updates["gameA"])
	assert.False(t, *g.updates["gameB"])
}

func TestGradePickIdempotent(t *testing.T) {
	cfg := baseConfig()
	oc := outcomes{winners: map[string]string{"gameA": "teamX"}}
	p := &pick.Pick{
		UserID: "u1",
		Predictions: map[string]pick.Prediction{
			"gameA": {TeamID: "teamX", IsCorrect: boolPtr(true)},
		},
	}

	g := gradePick(p, oc, cfg, time.Now())

	assert.Equal(t, 1, g.score, "score is recomputed even when nothing is written")
	assert.Empty(t, g.updates, "already-graded predictions produce no writes")
}

func TestGradePickCorrectsStaleGrade(t *testing.T) {
	cfg := baseConfig()
	oc := outcomes{winners: map[string]string{"gameA": "teamX"}}
	p := &pick.Pick{
		Predictions: map[string]pick.Prediction{
			"gameA": {TeamID: "teamY", IsCorrect: boolPtr(true)}, // stale, teamY lost
		},
	}

	g := gradePick(p, oc, cfg, time.Now())

	assert.Equal(t, 0, g.score)
	require.Contains(t, g.updates, "gameA")
	assert.False(t, *g.updates["gameA"])
}

func TestGradePickTie(t *testing.T) {
	cfg := baseConfig()
	oc := outcomes{winners: map[string]string{}, ties: map[string]bool{"gameA": true}}

	t.Run("graded flag is nulled on a tie", func(t *testing.T) {
		p := &pick.Pick{
			Predictions: map[string]pick.Prediction{
				"gameA": {TeamID: "teamX", IsCorrect: boolPtr(true)},
			},
		}
		g := gradePick(p, oc, cfg, time.Now())

		assert.Equal(t, 0, g.score)
		require.Contains(t, g.updates, "gameA")
		assert.Nil(t, g.updates["gameA"])
	})

	t.Run("already-null tie produces no write", func(t *testing.T) {
		p := &pick.Pick{
			Predictions: map[string]pick.Prediction{
				"gameA": {TeamID: "teamX"},
			},
		}
		g := gradePick(p, oc, cfg, time.Now())

		assert.Equal(t, 0, g.score)
		assert.Empty(t, g.updates)
	})
}

func TestGradePickUntouchedGame(t *testing.T) {
	cfg := baseConfig()
	oc := outcomes{winners: map[string]string{"gameA": "teamX"}}
	p := &pick.Pick{
		Predictions: map[string]pick.Prediction{
			"gameA": {TeamID: "teamX"},
			"gameB": {TeamID: "teamQ"}, // gameB not resolved this pass
		},
	}

	g := gradePick(p, oc, cfg, time.Now())

	assert.Equal(t, 1, g.score)
	assert.NotContains(t, g.updates, "gameB")
}

func wagerConfig(mode config.WagerMode, tie config.TieBehavior) *config.Config {
	cfg := baseConfig()
	cfg.GameOfTheWeekID = "gotw"
	cfg.Wager = config.WagerConfig{Enabled: true, MaxPoints: 10, Mode: mode, TieBehavior: tie}
	return cfg
}

func wagerPick(teamID string, points int) *pick.Pick {
	return &pick.Pick{
		UserID: "u1",
		Predictions: map[string]pick.Prediction{
			"gotw": {TeamID: teamID},
		},
		Wager: &pick.Wager{GameID: "gotw", TeamID: teamID, Points: points},
	}
}

func TestSettleWager(t *testing.T) {
	now := time.Now()
	won := outcomes{winners: map[string]string{"gotw": "teamX"}}
	tied := outcomes{winners: map[string]string{}, ties: map[string]bool{"gotw": true}}

	t.Run("win pays the stake", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 5), won, wagerConfig(config.WagerWinLose, config.TiePush), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerWin, wr.Outcome)
		assert.Equal(t, 5, wr.Applied)
	})

	t.Run("loss under win_lose costs the stake", func(t *testing.T) {
		wr := settleWager(wagerPick("teamY", 5), won, wagerConfig(config.WagerWinLose, config.TiePush), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerLose, wr.Outcome)
		assert.Equal(t, -5, wr.Applied)
	})

	t.Run("loss under win_zero costs nothing", func(t *testing.T) {
		wr := settleWager(wagerPick("teamY", 5), won, wagerConfig(config.WagerWinZero, config.TiePush), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerLose, wr.Outcome)
		assert.Equal(t, 0, wr.Applied)
	})

	t.Run("tie pushes", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 7), tied, wagerConfig(config.WagerWinLose, config.TiePush), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerPush, wr.Outcome)
		assert.Equal(t, 0, wr.Applied)
	})

	t.Run("tie counted wrong under win_lose", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 7), tied, wagerConfig(config.WagerWinLose, config.TieWrong), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerLose, wr.Outcome)
		assert.Equal(t, -7, wr.Applied)
	})

	t.Run("wrong_tie_win_zero", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 7), tied, wagerConfig(config.WagerWinZero, config.TieWrong), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerLose, wr.Outcome)
		assert.Equal(t, 0, wr.Applied)
	})

	t.Run("tie under zero behavior is distinct from push", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 7), tied, wagerConfig(config.WagerWinLose, config.TieZero), now)
		require.NotNil(t, wr)
		assert.Equal(t, pick.WagerZero, wr.Outcome)
		assert.Equal(t, 0, wr.Applied)
	})

	t.Run("wager outside the game of the week is ignored", func(t *testing.T) {
		p := wagerPick("teamX", 5)
		p.Wager.GameID = "other"
		wr := settleWager(p, won, wagerConfig(config.WagerWinLose, config.TiePush), now)
		assert.Nil(t, wr)
	})

	t.Run("disabled wagers settle nothing", func(t *testing.T) {
		cfg := wagerConfig(config.WagerWinLose, config.TiePush)
		cfg.Wager.Enabled = false
		wr := settleWager(wagerPick("teamX", 5), won, cfg, now)
		assert.Nil(t, wr)
	})

	t.Run("unresolved wagered game settles nothing", func(t *testing.T) {
		wr := settleWager(wagerPick("teamX", 5), outcomes{winners: map[string]string{}}, wagerConfig(config.WagerWinLose, config.TiePush), now)
		assert.Nil(t, wr)
	})
}

func TestGradePickWagerLossReducesScore(t *testing.T) {
	cfg := wagerConfig(config.WagerWinLose, config.TiePush)
	oc := outcomes{winners: map[string]string{"gotw": "teamX", "gameB": "teamY"}}
	p := &pick.Pick{
		UserID: "u1",
		Predictions: map[string]pick.Prediction{
			"gotw":  {TeamID: "teamY"}, // lost the featured game
			"gameB": {TeamID: "teamY"}, // won a standard pick
		},
		Wager: &pick.Wager{GameID: "gotw", TeamID: "teamY", Points: 5},
	}

	g := gradePick(p, oc, cfg, time.Now())

	require.NotNil(t, g.wagerResult)
	assert.Equal(t, pick.WagerLose, g.wagerResult.Outcome)
	assert.Equal(t, -5, g.wagerResult.Applied)
	assert.Equal(t, -4, g.score, "1 correct standard pick minus 5 wagered points")
	assert.True(t, g.writeWager)
}

func TestGradePickWagerWriteSkippedWhenUnchanged(t *testing.T) {
	cfg := wagerConfig(config.WagerWinLose, config.TiePush)
	oc := outcomes{winners: map[string]string{"gotw": "teamX"}}
	p := wagerPick("teamX", 5)
	p.Predictions["gotw"] = pick.Prediction{TeamID: "teamX", IsCorrect: boolPtr(true)}
	p.WagerResult = &pick.WagerResult{Outcome: pick.WagerWin, Applied: 5, GradedAt: time.Now()}

	g := gradePick(p, oc, cfg, time.Now())

	assert.Equal(t, 6, g.score)
	assert.False(t, g.writeWager)
	assert.Empty(t, g.updates)
}
