package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"

// Client fetches the NFL scoreboard. One blocking round-trip per call; the
// jobs await the result before any grading proceeds.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Scoreboard fetches the current scoreboard (the live view of this week).
func (c *Client) Scoreboard(ctx context.Context) (*Scoreboard, error) {
	return c.get(ctx, c.baseURL+"/scoreboard")
}

// ScoreboardFor fetches the scoreboard for an explicit year/type/week.
func (c *Client) ScoreboardFor(ctx context.Context, year int, season config.SeasonType, week int) (*Scoreboard, error) {
	seasonNum := 2
	if season == config.SeasonPostseason {
		seasonNum = 3
	}
	url := fmt.Sprintf("%s/scoreboard?year=%d&seasontype=%d&week=%d", c.baseURL, year, seasonNum, week)
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) (*Scoreboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoreboard request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoreboard fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard fetch returned status %d", resp.StatusCode)
	}

	var sb Scoreboard
	if err := json.NewDecoder(resp.Body).Decode(&sb); err != nil {
		return nil, fmt.Errorf("failed to decode scoreboard: %w", err)
	}
	return &sb, nil
}

// EventsByID indexes a scoreboard's events by external event id.
func (sb *Scoreboard) EventsByID() map[string]*Event {
	out := make(map[string]*Event, len(sb.Events))
	for i := range sb.Events {
		out[sb.Events[i].ID] = &sb.Events[i]
	}
	return out
}

// SeasonEnd parses the league end date when the feed provides one.
func (sb *Scoreboard) SeasonEnd() (time.Time, bool) {
	if len(sb.Leagues) == 0 || sb.Leagues[0].Season.EndDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, sb.Leagues[0].Season.EndDate)
	if err != nil {
		// the feed has used both RFC3339 and a bare date
		t, err = time.Parse("2006-01-02T15:04Z", sb.Leagues[0].Season.EndDate)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}
