// Package snapshot pulls everything a manager's account exposes in one pass:
// the user, each owned team with its roster and each team's match history.
package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/htstatus/chpp-client/internal/provider"
)

// Source is the subset of the CHPP client a snapshot needs.
type Source interface {
	User(ctx context.Context) (*provider.User, error)
	Team(ctx context.Context, teamID int) (*provider.Team, error)
	MatchesArchive(ctx context.Context, teamID int, isYouth bool) ([]provider.Match, error)
}

// Options selects what Collect fetches beyond the user and teams.
type Options struct {
	Matches      bool
	YouthMatches bool

	// Workers is the number of teams fetched concurrently. Values below 1
	// mean one.
	Workers int
}

// Record is a team's win/draw/loss tally over a match list. Matches without
// a final score are counted apart and never as results.
type Record struct {
	Wins      int `json:"wins"`
	Draws     int `json:"draws"`
	Losses    int `json:"losses"`
	NotPlayed int `json:"not_played"`
	Partial   int `json:"partial"`
}

// Played is the number of matches with a final score.
func (r Record) Played() int { return r.Wins + r.Draws + r.Losses }

// Tally builds the record of teamID over matches.
func Tally(teamID int, matches []provider.Match) Record {
	var rec Record
	for i := range matches {
		m := &matches[i]
		switch m.Score() {
		case provider.ScoreNotPlayed:
			rec.NotPlayed++
			continue
		case provider.ScorePartial:
			rec.Partial++
			continue
		}
		switch m.Outcome(teamID) {
		case provider.OutcomeWin:
			rec.Wins++
		case provider.OutcomeDraw:
			rec.Draws++
		case provider.OutcomeLoss:
			rec.Losses++
		}
	}
	return rec
}

// TeamSnapshot is one team with its match history.
type TeamSnapshot struct {
	Team    *provider.Team   `json:"team"`
	Matches []provider.Match `json:"matches,omitempty"`
	Record  *Record          `json:"record,omitempty"`
}

// Snapshot is the collected account.
type Snapshot struct {
	User         *provider.User   `json:"user"`
	Teams        []TeamSnapshot   `json:"teams"`
	YouthMatches []provider.Match `json:"youth_matches,omitempty"`
}

// Collect runs the snapshot flow: user -> teams with rosters -> matches.
// A failing team or match list is recorded in the Result and skipped; only a
// failure to load the user stops the run. Teams are fetched by a pool of
// opts.Workers goroutines and returned in the user's team order.
func Collect(ctx context.Context, src Source, opts Options, logger *slog.Logger) (*Snapshot, Result) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	var result Result

	// 1. User
	user, err := src.User(ctx)
	if err != nil {
		result.AddErrorf("fetch user: %v", err)
		result.Duration = time.Since(start)
		return nil, result
	}
	logger.Info("Snapshot user loaded", "user_id", user.UserID, "teams", len(user.TeamIDs))

	// 2. Teams and rosters, then match history per team
	slots := make([]*TeamSnapshot, len(user.TeamIDs))
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(user.TeamIDs) {
		workers = len(user.TeamIDs)
	}

	ch := make(chan int, len(user.TeamIDs))
	for i := range user.TeamIDs {
		ch <- i
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				ts, r := collectTeam(ctx, src, user.TeamIDs[i], opts, logger)
				mu.Lock()
				slots[i] = ts
				result.Add(r)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	snap := &Snapshot{User: user, Teams: make([]TeamSnapshot, 0, len(slots))}
	for _, ts := range slots {
		if ts != nil {
			snap.Teams = append(snap.Teams, *ts)
		}
	}

	// 3. Youth matches
	if opts.YouthMatches && user.YouthTeamID != nil && ctx.Err() == nil {
		matches, err := src.MatchesArchive(ctx, *user.YouthTeamID, true)
		if err != nil {
			result.AddErrorf("fetch youth matches for team %d: %v", *user.YouthTeamID, err)
		} else {
			result.MatchesFetched += len(matches)
			snap.YouthMatches = matches
		}
	}

	result.Duration = time.Since(start)
	logger.Info("Snapshot complete", "summary", result.Summary())
	return snap, result
}

func collectTeam(ctx context.Context, src Source, teamID int, opts Options, logger *slog.Logger) (*TeamSnapshot, Result) {
	var result Result
	if err := ctx.Err(); err != nil {
		result.AddErrorf("team %d skipped: %v", teamID, err)
		return nil, result
	}

	team, err := src.Team(ctx, teamID)
	if err != nil {
		result.AddErrorf("fetch team %d: %v", teamID, err)
		return nil, result
	}
	result.TeamsFetched++
	result.PlayersFetched += len(team.Players())
	ts := &TeamSnapshot{Team: team}

	if opts.Matches {
		matches, err := src.MatchesArchive(ctx, teamID, false)
		if err != nil {
			result.AddErrorf("fetch matches for team %d: %v", teamID, err)
		} else {
			result.MatchesFetched += len(matches)
			rec := Tally(teamID, matches)
			ts.Matches = matches
			ts.Record = &rec
		}
	}
	logger.Info("Snapshot team done", "team_id", teamID, "players", len(team.Players()), "matches", len(ts.Matches))
	return ts, result
}
