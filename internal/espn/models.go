package espn

import (
	"encoding/json"
	"strconv"
)

// Scoreboard is the site API scoreboard response, trimmed to the fields the
// jobs read.
type Scoreboard struct {
	Leagues []League `json:"leagues"`
	Events  []Event  `json:"events"`
}

type League struct {
	Season LeagueSeason `json:"season"`
}

type LeagueSeason struct {
	EndDate string `json:"endDate"`
}

type Event struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Name         string        `json:"name"`
	ShortName    string        `json:"shortName"`
	Status       Status        `json:"status"`
	Competitions []Competition `json:"competitions"`
}

type Competition struct {
	Status      Status       `json:"status"`
	Competitors []Competitor `json:"competitors"`
}

type Status struct {
	Type StatusType `json:"type"`
}

type StatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type Competitor struct {
	HomeAway string   `json:"homeAway"`
	Winner   *bool    `json:"winner"`
	Score    Score    `json:"score"`
	Team     TeamInfo `json:"team"`
	Records  []Record `json:"records"`
}

type TeamInfo struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
}

type Record struct {
	Summary string `json:"summary"`
}

// Score tolerates the three shapes the feed has been seen to use for a
// competitor score: a string, a bare number, or {"value": n}.
type Score int

func (s *Score) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		n, err := strconv.ParseFloat(str, 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(int(n))
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = Score(int(num))
		return nil
	}
	var obj struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*s = Score(int(obj.Value))
		return nil
	}
	*s = 0
	return nil
}

// Final reports whether the event finished, checking the completion flag
// first and falling back to the state and status name.
func (e *Event) Final() bool {
	for _, st := range []Status{e.competitionStatus(), e.Status} {
		if st.Type.Completed || st.Type.State == "post" || st.Type.Name == "STATUS_FINAL" {
			return true
		}
	}
	return false
}

func (e *Event) competitionStatus() Status {
	if len(e.Competitions) > 0 {
		return e.Competitions[0].Status
	}
	return Status{}
}

// StatusName is the event status name with the competition-level value
// preferred, defaulting to scheduled.
func (e *Event) StatusName() string {
	if n := e.competitionStatus().Type.Name; n != "" {
		return n
	}
	if n := e.Status.Type.Name; n != "" {
		return n
	}
	return "STATUS_SCHEDULED"
}

// Competitors returns the competitor list of the first competition.
func (e *Event) Competitors() []Competitor {
	if len(e.Competitions) == 0 {
		return nil
	}
	return e.Competitions[0].Competitors
}

// Winner resolves the winning competitor of a completed event: the explicit
// winner flag when present, otherwise score comparison. The second return is
// true when the event is a confirmed final tie. Nothing resolves before the
// event is final, not even a winner flag.
func (e *Event) Winner() (*Competitor, bool) {
	if !e.Final() {
		return nil, false
	}
	comps := e.Competitors()
	for i := range comps {
		if comps[i].Winner != nil && *comps[i].Winner {
			return &comps[i], false
		}
	}
	if len(comps) < 2 {
		return nil, false
	}
	a, b := &comps[0], &comps[1]
	switch {
	case a.Score > b.Score:
		return a, false
	case b.Score > a.Score:
		return b, false
	default:
		return nil, true
	}
}
