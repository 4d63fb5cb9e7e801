package recap

import (
	"time"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/leaderboard"
)

// ScoreLine is one user's weekly score inside a recap document.
type ScoreLine struct {
	UID      string `firestore:"uid" json:"uid"`
	FullName string `firestore:"fullName" json:"fullName"`
	Score    int    `firestore:"score" json:"score"`
}

// WeeklyRecap is the derived weekly summary, keyed
// "<year>-<seasonSlug>-week<n>". Rewriting the same key overwrites; the
// document is immutable between runs of the weekly job.
type WeeklyRecap struct {
	Week           int                 `firestore:"week" json:"week"`
	SeasonType     string              `firestore:"seasonType" json:"seasonType"` // slug
	SeasonYear     int                 `firestore:"seasonYear" json:"seasonYear"`
	HighestScore   int                 `firestore:"highestScore" json:"highestScore"`
	LowestScore    int                 `firestore:"lowestScore" json:"lowestScore"`
	TopScorers     []leaderboard.Entry `firestore:"topScorers" json:"topScorers"`
	LowestScorers  []leaderboard.Entry `firestore:"lowestScorers" json:"lowestScorers"`
	BiggestRisers  []leaderboard.Entry `firestore:"biggestRisers" json:"biggestRisers"`
	BiggestFallers []leaderboard.Entry `firestore:"biggestFallers" json:"biggestFallers"`
	Scores         []ScoreLine         `firestore:"scores" json:"scores"`
	CreatedAt      time.Time           `firestore:"createdAt" json:"createdAt"`
}

// GradedPick is the compact per-user grading record kept in history.
type GradedPick struct {
	PickID   string          `firestore:"id" json:"id"`
	UserID   string          `firestore:"userId" json:"userId"`
	FullName string          `firestore:"fullName" json:"fullName"`
	Graded   map[string]bool `firestore:"graded" json:"graded"` // gameId -> isCorrect written this run
}

// History is the permanent audit snapshot for a week: the recap plus the
// full leaderboard state and the grading writes that produced it.
type History struct {
	Week        int                 `firestore:"week" json:"week"`
	SeasonType  string              `firestore:"seasonType" json:"seasonType"` // slug
	SeasonYear  int                 `firestore:"seasonYear" json:"seasonYear"`
	Leaderboard []leaderboard.Entry `firestore:"leaderboard" json:"leaderboard"`
	Recap       WeeklyRecap         `firestore:"recap" json:"recap"`
	Picks       []GradedPick        `firestore:"picks" json:"picks"`
	CreatedAt   time.Time           `firestore:"createdAt" json:"createdAt"`
}
