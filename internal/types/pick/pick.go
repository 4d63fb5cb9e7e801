package pick

import "time"

// Outcome is the graded state of a single prediction. Storage keeps a
// nullable bool (isCorrect), where null covers both "not graded yet" and
// "game pushed"; the grader works in terms of this enum so the two cases
// never get conflated in logic.
type Outcome int

const (
	Ungraded Outcome = iota
	Correct
	Incorrect
	Push
)

// Prediction is one game's prediction inside a pick document.
type Prediction struct {
	TeamID    string `firestore:"teamId" json:"teamId"`
	IsCorrect *bool  `firestore:"isCorrect" json:"isCorrect"`
}

// Outcome translates the stored nullable bool. A stored null on a game known
// to be a final tie is a Push; the caller supplies that knowledge.
func (p Prediction) Outcome(finalTie bool) Outcome {
	switch {
	case p.IsCorrect == nil && finalTie:
		return Push
	case p.IsCorrect == nil:
		return Ungraded
	case *p.IsCorrect:
		return Correct
	default:
		return Incorrect
	}
}

// WagerOutcome is how a game-of-the-week wager settled.
type WagerOutcome string

const (
	WagerWin  WagerOutcome = "win"
	WagerLose WagerOutcome = "lose"
	WagerPush WagerOutcome = "push"
	WagerZero WagerOutcome = "zero" // tie under tieBehavior=zero; distinct from push
)

// Wager is the user-authored stake on the game of the week. Written by the
// wager surface before the deadline; the grader never modifies it.
type Wager struct {
	GameID   string `firestore:"gameId" json:"gameId"`
	TeamID   string `firestore:"teamId" json:"teamId"`
	Points   int    `firestore:"points" json:"points"`
	PlacedAt string `firestore:"placedAt" json:"placedAt"`
}

// WagerResult is the grader-derived settlement of a wager.
type WagerResult struct {
	Outcome  WagerOutcome `firestore:"outcome" json:"outcome"`
	Applied  int          `firestore:"applied" json:"applied"`
	GradedAt time.Time    `firestore:"gradedAt" json:"gradedAt"`
}

// Pick is one user's full submission for a week, keyed
// "<year>-<seasonType>-week<n>-<uid>". Predictions are keyed by external
// game id and upserted per game, so grading must only ever touch the
// isCorrect leaf of each prediction.
type Pick struct {
	UserID      string                `firestore:"userId" json:"userId"`
	FullName    string                `firestore:"fullName" json:"fullName"`
	SeasonYear  int                   `firestore:"seasonYear" json:"seasonYear"`
	SeasonType  string                `firestore:"seasonType" json:"seasonType"`
	Week        int                   `firestore:"week" json:"week"`
	Predictions map[string]Prediction `firestore:"predictions" json:"predictions"`
	Wager       *Wager                `firestore:"wager" json:"wager"`
	WagerResult *WagerResult          `firestore:"wagerResult" json:"wagerResult"`
}
