package game

// Team is one side of a game as stored on the game document.
type Team struct {
	ID           string `firestore:"id" json:"id"`
	Name         string `firestore:"name" json:"name"`
	Mascot       string `firestore:"mascot" json:"mascot"`
	Abbreviation string `firestore:"abbreviation" json:"abbreviation"`
	Score        int    `firestore:"score" json:"score"`
	Logo         string `firestore:"logo" json:"logo"`
	Record       string `firestore:"record" json:"record"`
}

// Game is a document in the games collection, keyed
// "<year>-<seasonSlug>-week<n>-<externalId>". HasResult is distinct from a
// final status: a tied final has no result.
type Game struct {
	ID          string `firestore:"id" json:"id"` // external (ESPN) event id
	Name        string `firestore:"name" json:"name"`
	ShortName   string `firestore:"shortName" json:"shortName"`
	Date        string `firestore:"date" json:"date"` // scheduled kickoff, ISO 8601
	Status      string `firestore:"status" json:"status"`
	SeasonType  string `firestore:"seasonType" json:"seasonType"`
	SeasonYear  int    `firestore:"seasonYear" json:"seasonYear"`
	Week        int    `firestore:"week" json:"week"`
	HomeTeam    Team   `firestore:"homeTeam" json:"homeTeam"`
	AwayTeam    Team   `firestore:"awayTeam" json:"awayTeam"`
	WinnerID    string `firestore:"winnerId" json:"winnerId"`
	HasResult   bool   `firestore:"hasResult" json:"hasResult"`
	FinalTie    bool   `firestore:"finalTie" json:"finalTie"`
	LastUpdated string `firestore:"lastUpdated" json:"lastUpdated"`
}

const StatusFinal = "STATUS_FINAL"

// Final reports whether the game document itself records a finished game.
func (g *Game) Final() bool {
	return g.Status == StatusFinal || g.HasResult || g.FinalTie
}
