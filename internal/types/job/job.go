package job

// Result is what every job endpoint returns. Success=false with a Message is
// a deliberate no-op ("not all games final yet"), not an error; errors are
// reported separately with a 5xx status.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Week            int    `json:"week,omitempty"`
	GamesFetched    int    `json:"gamesFetched,omitempty"`
	UpdatedGames    int    `json:"updatedGames,omitempty"`
	GradedPicks     int    `json:"gradedPicks,omitempty"`
	RankedUsers     int    `json:"rankedUsers,omitempty"`
	ArchivedDocs    int    `json:"archivedDocs,omitempty"`
	ResetEntries    int    `json:"resetEntries,omitempty"`
	LifetimeMerged  int    `json:"lifetimeMerged,omitempty"`
	GameOfTheWeekID string `json:"gameOfTheWeekId,omitempty"`
}

// NotReady builds the non-fatal "try again later" result.
func NotReady(message string) *Result {
	return &Result{Success: false, Message: message}
}
