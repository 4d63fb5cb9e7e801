package leaderboard

import "time"

// Entry is one user's row in a leaderboard collection (regular, postseason
// or all-time). Only the rank engine mutates the point/rank fields; identity
// fields (uid, fullName, profilePicture) belong to the profile surface and
// must survive every merge write. LastAppliedWeek is the week key of the last
// run that touched the entry; the rank engine uses it to tell a re-run of the
// same week apart from the next week's run.
type Entry struct {
	UID             string    `firestore:"uid" json:"uid"`
	FullName        string    `firestore:"fullName" json:"fullName"`
	ProfilePicture  string    `firestore:"profilePicture" json:"profilePicture"`
	TotalPoints     int       `firestore:"totalPoints" json:"totalPoints"`
	LastWeekPoints  int       `firestore:"lastWeekPoints" json:"lastWeekPoints"`
	CurrentRank     int       `firestore:"currentRank" json:"currentRank"`
	PreviousRank    int       `firestore:"previousRank" json:"previousRank"`
	PositionChange  int       `firestore:"positionChange" json:"positionChange"`
	LastAppliedWeek string    `firestore:"lastAppliedWeek" json:"lastAppliedWeek"`
	SeasonResetAt   time.Time `firestore:"seasonResetAt,omitempty" json:"seasonResetAt,omitempty"`
}

// LifetimeEntry aggregates across seasons, fed by rollover from the all-time
// leaderboard before it is reset.
type LifetimeEntry struct {
	UID              string    `firestore:"uid" json:"uid"`
	FullName         string    `firestore:"fullName" json:"fullName"`
	ProfilePicture   string    `firestore:"profilePicture" json:"profilePicture"`
	TotalPoints      int       `firestore:"totalPoints" json:"totalPoints"`
	SeasonsPlayed    int       `firestore:"seasonsPlayed" json:"seasonsPlayed"`
	LastSeasonPoints int       `firestore:"lastSeasonPoints" json:"lastSeasonPoints"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Collection names.
const (
	Regular    = "leaderboard"
	Postseason = "leaderboardPostseason"
	AllTime    = "leaderboardAllTime"
	Lifetime   = "lifetimeLeaderboard"
)

// ForSeason picks the weekly leaderboard collection for a season slug.
func ForSeason(slug string) string {
	if slug == "postseason" {
		return Postseason
	}
	return Regular
}
