package config

import (
	"fmt"
	"strings"
	"time"
)

// SeasonType is the canonical season phase. The stored documents historically
// carried "Regular", "regular" and even "Regular Season"; Normalize is the one
// place raw strings are turned into this enum.
type SeasonType string

const (
	SeasonRegular    SeasonType = "Regular"
	SeasonPostseason SeasonType = "Postseason"
)

// Normalize maps any stored/legacy spelling onto the canonical enum.
func Normalize(raw string) SeasonType {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "post") {
		return SeasonPostseason
	}
	return SeasonRegular
}

// Slug is the lowercase form used in document ids ("2025-regular-week3-...").
func (s SeasonType) Slug() string {
	return strings.ToLower(string(s))
}

// Variants returns every spelling of this season type that may exist in old
// documents, for use in Firestore "in" filters.
func (s SeasonType) Variants() []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range []string{string(s), s.Slug(), strings.ToUpper(s.Slug()[:1]) + s.Slug()[1:]} {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// WagerMode controls what a lost wager costs.
type WagerMode string

const (
	WagerWinLose WagerMode = "win_lose" // lost wager subtracts the staked points
	WagerWinZero WagerMode = "win_zero" // lost wager costs nothing
)

// TieBehavior controls how a wager on a game that ends in a tie settles.
type TieBehavior string

const (
	TiePush  TieBehavior = "push"  // stake returned, applied 0
	TieWrong TieBehavior = "wrong" // settled as a loss under the active mode
	TieZero  TieBehavior = "zero"  // applied 0, recorded distinctly from push
)

// WagerConfig is the admin-set game-of-the-week wager policy.
type WagerConfig struct {
	Enabled     bool        `firestore:"enabled" json:"enabled"`
	MaxPoints   int         `firestore:"maxPoints" json:"maxPoints"`
	Mode        WagerMode   `firestore:"mode" json:"mode"`
	TieBehavior TieBehavior `firestore:"tieBehavior" json:"tieBehavior"`
}

// Config is the singleton admin document at config/config. The jobs only ever
// read it; the fetch-games job is the one writer (week advance).
type Config struct {
	SeasonYear      int         `firestore:"seasonYear" json:"seasonYear"`
	SeasonType      string      `firestore:"seasonType" json:"seasonType"`
	Week            int         `firestore:"week" json:"week"`
	Deadline        time.Time   `firestore:"deadline" json:"deadline"`
	EndOfSeason     time.Time   `firestore:"endOfSeason" json:"endOfSeason"`
	RecapWeek       int         `firestore:"recapWeek" json:"recapWeek"`
	GameOfTheWeekID string      `firestore:"gameOfTheWeekId" json:"gameOfTheWeekId"`
	Wager           WagerConfig `firestore:"wager" json:"wager"`
	LastUpdated     string      `firestore:"lastUpdated" json:"lastUpdated"`
}

// Season returns the canonical season type.
func (c *Config) Season() SeasonType {
	return Normalize(c.SeasonType)
}

// Validate checks the fields every job depends on. A failure here is fatal
// for the invocation, nothing gets written.
func (c *Config) Validate() error {
	if c.SeasonYear == 0 {
		return fmt.Errorf("config: seasonYear is not set")
	}
	if c.Week == 0 {
		return fmt.Errorf("config: week is not set")
	}
	if c.SeasonType == "" {
		return fmt.Errorf("config: seasonType is not set")
	}
	return nil
}

// WeekKey builds the "<year>-<slug>-week<n>" document id prefix shared by
// games, recap and history documents.
func (c *Config) WeekKey() string {
	return fmt.Sprintf("%d-%s-week%d", c.SeasonYear, c.Season().Slug(), c.Week)
}
