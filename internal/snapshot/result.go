package snapshot

import (
	"fmt"
	"time"
)

// Result tracks counts and errors from a snapshot run.
type Result struct {
	TeamsFetched   int      `json:"teams_fetched"`
	PlayersFetched int      `json:"players_fetched"`
	MatchesFetched int      `json:"matches_fetched"`
	Errors         []string `json:"errors,omitempty"`

	Duration time.Duration `json:"duration"`
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.TeamsFetched += other.TeamsFetched
	r.PlayersFetched += other.PlayersFetched
	r.MatchesFetched += other.MatchesFetched
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// OK reports whether the run finished without errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"teams=%d players=%d matches=%d errors=%d duration=%s",
		r.TeamsFetched, r.PlayersFetched, r.MatchesFetched, len(r.Errors),
		r.Duration.Round(time.Millisecond),
	)
}
