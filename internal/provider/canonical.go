// Package provider defines the typed records the CHPP client produces and the
// tolerant extractors its parsers read provider XML with.
//
// Records are value objects built once per call. Identifiers are always parsed
// first and resolve to 0 when absent; 0 is never a usable id, check Valid()
// before trusting a record. Optional fields are pointers and stay nil when the
// provider omitted them.
package provider

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrRosterAttached is returned when a roster is attached to a team twice.
var ErrRosterAttached = errors.New("team roster already attached")

// User is the authenticated manager from managercompendium.
type User struct {
	UserID      int    `json:"user_id"`
	LoginName   string `json:"login_name"`
	TeamIDs     []int  `json:"team_ids"`
	YouthTeamID *int   `json:"youth_team_id,omitempty"`
	SourceFile  string `json:"source_file"`
}

// Valid reports whether the user carries a real provider id.
func (u *User) Valid() bool { return u.UserID != 0 }

// Team is the team metadata from teamdetails. The roster is served by a
// different endpoint and is attached once with AttachPlayers.
type Team struct {
	TeamID    int    `json:"team_id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`

	LeagueName          *string `json:"league_name,omitempty"`
	LeagueLevel         *int    `json:"league_level,omitempty"`
	LeagueLevelUnitID   *int    `json:"league_level_unit_id,omitempty"`
	LeagueLevelUnitName *string `json:"league_level_unit_name,omitempty"`
	RegionID            *int    `json:"region_id,omitempty"`
	FoundedDate         *string `json:"founded_date,omitempty"`

	ArenaID   *int    `json:"arena_id,omitempty"`
	ArenaName *string `json:"arena_name,omitempty"`

	FanclubSize       *int    `json:"fanclub_size,omitempty"`
	FansMood          *string `json:"fans_mood,omitempty"`
	FansMatchAttitude *string `json:"fans_match_attitude,omitempty"`

	DressURI          *string `json:"dress_uri,omitempty"`
	DressAlternateURI *string `json:"dress_alternate_uri,omitempty"`
	LogoURL           *string `json:"logo_url,omitempty"`

	PowerRating              *int `json:"power_rating,omitempty"`
	PowerRatingGlobalRanking *int `json:"power_rating_global_ranking,omitempty"`
	PowerRatingLeagueRanking *int `json:"power_rating_league_ranking,omitempty"`
	PowerRatingRegionRanking *int `json:"power_rating_region_ranking,omitempty"`

	CupName    *string `json:"cup_name,omitempty"`
	CupLevel   *int    `json:"cup_level,omitempty"`
	StillInCup bool    `json:"still_in_cup"`

	NumberOfVictories  *int `json:"number_of_victories,omitempty"`
	NumberOfUndefeated *int `json:"number_of_undefeated,omitempty"`

	SourceFile string `json:"source_file"`

	players  []Player
	rostered bool
}

// Valid reports whether the team carries a real provider id.
func (t *Team) Valid() bool { return t.TeamID != 0 }

// Players returns the attached roster in provider order. It is empty, never
// nil, until AttachPlayers is called.
func (t *Team) Players() []Player {
	if t.players == nil {
		return []Player{}
	}
	return t.players
}

// HasRoster reports whether AttachPlayers has run.
func (t *Team) HasRoster() bool { return t.rostered }

// AttachPlayers sets the roster. It may be called exactly once.
func (t *Team) AttachPlayers(players []Player) error {
	if t.rostered {
		return ErrRosterAttached
	}
	if players == nil {
		players = []Player{}
	}
	t.players = players
	t.rostered = true
	return nil
}

// MarshalJSON includes the attached roster under "players".
func (t Team) MarshalJSON() ([]byte, error) {
	type alias Team
	return json.Marshal(struct {
		alias
		Players []Player `json:"players"`
	}{alias(t), t.Players()})
}

// BidderTeam is the team holding the highest bid on a listed player.
type BidderTeam struct {
	TeamID   int    `json:"team_id"`
	TeamName string `json:"team_name"`
}

// TransferDetails is present only for transfer-listed players.
type TransferDetails struct {
	AskingPrice int         `json:"asking_price"`
	Deadline    string      `json:"deadline"`
	HighestBid  int         `json:"highest_bid"`
	MaxBid      *int        `json:"max_bid,omitempty"`
	BidderTeam  *BidderTeam `json:"bidder_team,omitempty"`
}

// Player is a single player from the players roster or playerdetails.
//
// The seven skill ratings are plain ints: a missing rating is 0, never absent.
type Player struct {
	PlayerID     int     `json:"player_id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	NickName     *string `json:"nick_name,omitempty"`
	Age          int     `json:"age"`
	AgeDays      int     `json:"age_days"`
	TSI          int     `json:"tsi"`
	PlayerNumber int     `json:"player_number"`
	CategoryID   *int    `json:"category_id,omitempty"`

	Form       int `json:"form"`
	Stamina    int `json:"stamina"`
	Experience int `json:"experience"`
	Loyalty    int `json:"loyalty"`
	Leadership int `json:"leadership"`

	Keeper    int `json:"keeper"`
	Defender  int `json:"defender"`
	Playmaker int `json:"playmaker"`
	Winger    int `json:"winger"`
	Passing   int `json:"passing"`
	Scorer    int `json:"scorer"`
	SetPieces int `json:"set_pieces"`

	Specialty       int        `json:"specialty"`
	ArrivalDate     *time.Time `json:"arrival_date,omitempty"`
	Cards           int        `json:"cards"`
	InjuryLevel     int        `json:"injury_level"`
	MotherClubBonus bool       `json:"mother_club_bonus"`
	Agreeability    *string    `json:"agreeability,omitempty"`
	Aggressiveness  *string    `json:"aggressiveness,omitempty"`
	Honesty         *string    `json:"honesty,omitempty"`
	Statement       *string    `json:"statement,omitempty"`
	OwnerNotes      *string    `json:"owner_notes,omitempty"`

	CountryID      *int `json:"country_id,omitempty"`
	NationalTeamID *int `json:"national_team_id,omitempty"`
	Salary         *int `json:"salary,omitempty"`
	Caps           int  `json:"caps"`
	CapsU20        int  `json:"caps_u20"`

	CareerGoals        int `json:"career_goals"`
	CareerHattricks    int `json:"career_hattricks"`
	CareerAssists      int `json:"career_assists"`
	LeagueGoals        int `json:"league_goals"`
	CupGoals           int `json:"cup_goals"`
	FriendliesGoals    int `json:"friendlies_goals"`
	MatchesCurrentTeam int `json:"matches_current_team"`
	GoalsCurrentTeam   int `json:"goals_current_team"`
	AssistsCurrentTeam int `json:"assists_current_team"`

	TransferListed  bool             `json:"transfer_listed"`
	TransferDetails *TransferDetails `json:"transfer_details,omitempty"`

	SourceFile string `json:"source_file"`
}

// Valid reports whether the player carries a real provider id.
func (p *Player) Valid() bool { return p.PlayerID != 0 }

// Skills returns the seven skill ratings keyed by field name.
func (p *Player) Skills() map[string]int {
	return map[string]int{
		"keeper":     p.Keeper,
		"defender":   p.Defender,
		"playmaker":  p.Playmaker,
		"winger":     p.Winger,
		"passing":    p.Passing,
		"scorer":     p.Scorer,
		"set_pieces": p.SetPieces,
	}
}

// ScoreState separates matches with a result from matches without one.
type ScoreState int

const (
	// ScoreNotPlayed means the match has no result yet: both goal fields are
	// absent or the provider marked it as not finished.
	ScoreNotPlayed ScoreState = iota
	// ScorePartial means exactly one goal field is present. The data is
	// incomplete and must not be counted as a result.
	ScorePartial
	// ScoreFinal means both goal fields are present.
	ScoreFinal
)

func (s ScoreState) String() string {
	switch s {
	case ScoreFinal:
		return "final"
	case ScorePartial:
		return "partial"
	default:
		return "not_played"
	}
}

// Outcome is a match result from one participant's point of view.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDraw
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	case OutcomeLoss:
		return "loss"
	default:
		return "none"
	}
}

// Match is one entry of a team's match list.
type Match struct {
	MatchID      int     `json:"match_id"`
	Date         *string `json:"date,omitempty"`
	Status       *string `json:"status,omitempty"`
	HomeTeamID   int     `json:"home_team_id"`
	HomeTeamName string  `json:"home_team_name"`
	AwayTeamID   int     `json:"away_team_id"`
	AwayTeamName string  `json:"away_team_name"`
	HomeGoals    *int    `json:"home_goals,omitempty"`
	AwayGoals    *int    `json:"away_goals,omitempty"`

	MatchType     *int `json:"match_type,omitempty"`
	ContextID     *int `json:"context_id,omitempty"`
	RuleID        *int `json:"rule_id,omitempty"`
	CupLevel      *int `json:"cup_level,omitempty"`
	CupLevelIndex *int `json:"cup_level_index,omitempty"`

	SourceFile string `json:"source_file"`
}

// Valid reports whether the match carries a real provider id.
func (m *Match) Valid() bool { return m.MatchID != 0 }

// Time parses Date. It returns false when the date is missing or malformed.
func (m *Match) Time() (time.Time, bool) {
	if m.Date == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(DateTimeLayout, *m.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Score classifies the goal fields. A 0-0 result is ScoreFinal; a match with
// no goal fields is ScoreNotPlayed.
func (m *Match) Score() ScoreState {
	if m.Status != nil && !strings.EqualFold(*m.Status, "FINISHED") {
		return ScoreNotPlayed
	}
	switch {
	case m.HomeGoals != nil && m.AwayGoals != nil:
		return ScoreFinal
	case m.HomeGoals == nil && m.AwayGoals == nil:
		return ScoreNotPlayed
	default:
		return ScorePartial
	}
}

// Outcome returns the result for teamID. Matches without a final score and
// teams that did not take part yield OutcomeNone.
func (m *Match) Outcome(teamID int) Outcome {
	if m.Score() != ScoreFinal || teamID == 0 {
		return OutcomeNone
	}
	var own, other int
	switch teamID {
	case m.HomeTeamID:
		own, other = *m.HomeGoals, *m.AwayGoals
	case m.AwayTeamID:
		own, other = *m.AwayGoals, *m.HomeGoals
	default:
		return OutcomeNone
	}
	switch {
	case own > other:
		return OutcomeWin
	case own < other:
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}
