package espn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `{
  "leagues": [{"season": {"endDate": "2026-02-12T07:59Z"}}],
  "events": [
    {
      "id": "401001",
      "date": "2025-09-21T17:00Z",
      "name": "Detroit Lions at Kansas City Chiefs",
      "shortName": "DET @ KC",
      "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
      "competitions": [{
        "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
        "competitors": [
          {"homeAway": "home", "winner": true, "score": "27",
           "team": {"id": "12", "displayName": "Kansas City Chiefs", "name": "Chiefs", "abbreviation": "KC"},
           "records": [{"summary": "2-1"}]},
          {"homeAway": "away", "winner": false, "score": "20",
           "team": {"id": "8", "displayName": "Detroit Lions", "name": "Lions", "abbreviation": "DET"}}
        ]
      }]
    },
    {
      "id": "401002",
      "date": "2025-09-21T20:25Z",
      "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
      "competitions": [{
        "status": {"type": {"completed": true}},
        "competitors": [
          {"homeAway": "home", "score": 13, "team": {"id": "20"}},
          {"homeAway": "away", "score": {"value": 19}, "team": {"id": "21"}}
        ]
      }]
    },
    {
      "id": "401003",
      "date": "2025-09-22T00:20Z",
      "status": {"type": {"name": "STATUS_FINAL", "state": "post", "completed": true}},
      "competitions": [{
        "status": {"type": {"completed": true}},
        "competitors": [
          {"homeAway": "home", "score": "17", "team": {"id": "30"}},
          {"homeAway": "away", "score": "17", "team": {"id": "31"}}
        ]
      }]
    },
    {
      "id": "401004",
      "date": "2025-09-22T00:20Z",
      "status": {"type": {"name": "STATUS_IN_PROGRESS", "state": "in", "completed": false}},
      "competitions": [{
        "status": {"type": {"name": "STATUS_IN_PROGRESS", "state": "in", "completed": false}},
        "competitors": [
          {"homeAway": "home", "score": "3", "team": {"id": "40"}},
          {"homeAway": "away", "score": "0", "team": {"id": "41"}}
        ]
      }]
    }
  ]
}`

func TestScoreboardParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoreboardFixture))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	sb, err := client.Scoreboard(context.Background())
	require.NoError(t, err)
	require.Len(t, sb.Events, 4)

	events := sb.EventsByID()

	t.Run("explicit winner flag", func(t *testing.T) {
		winner, tie := events["401001"].Winner()
		require.NotNil(t, winner)
		assert.False(t, tie)
		assert.Equal(t, "12", winner.Team.ID)
		assert.Equal(t, Score(27), winner.Score)
		assert.Equal(t, "2-1", winner.Records[0].Summary)
	})

	t.Run("score comparison fallback with mixed score shapes", func(t *testing.T) {
		winner, tie := events["401002"].Winner()
		require.NotNil(t, winner)
		assert.False(t, tie)
		assert.Equal(t, "21", winner.Team.ID, "19 beats 13")
	})

	t.Run("final with equal scores is a tie", func(t *testing.T) {
		winner, tie := events["401003"].Winner()
		assert.Nil(t, winner)
		assert.True(t, tie)
	})

	t.Run("in-progress game has no verdict", func(t *testing.T) {
		winner, tie := events["401004"].Winner()
		assert.Nil(t, winner)
		assert.False(t, tie)
		assert.False(t, events["401004"].Final())
	})

	t.Run("season end date", func(t *testing.T) {
		end, ok := sb.SeasonEnd()
		require.True(t, ok)
		assert.Equal(t, 2026, end.Year())
	})
}

func TestScoreboardForBuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"events": []}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ScoreboardFor(context.Background(), 2025, "Postseason", 2)
	require.NoError(t, err)
	assert.Equal(t, "year=2025&seasontype=3&week=2", gotQuery)
}

func TestScoreboardNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream sad", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Scoreboard(context.Background())
	assert.Error(t, err)
}

func TestWinnerFlagWaitsForFinal(t *testing.T) {
	flag := true
	ev := Event{
		Status: Status{Type: StatusType{Name: "STATUS_IN_PROGRESS", State: "in"}},
		Competitions: []Competition{{
			Competitors: []Competitor{
				{HomeAway: "home", Winner: &flag, Score: 21, Team: TeamInfo{ID: "1"}},
				{HomeAway: "away", Score: 7, Team: TeamInfo{ID: "2"}},
			},
		}},
	}

	winner, tie := ev.Winner()
	assert.Nil(t, winner, "a winner flag on a live event means nothing until the final")
	assert.False(t, tie)
}

func TestScoreUnmarshalGarbage(t *testing.T) {
	var s Score
	require.NoError(t, json.Unmarshal([]byte(`"not-a-number"`), &s))
	assert.Equal(t, Score(0), s, "unparseable scores degrade to zero instead of failing the batch")
}
