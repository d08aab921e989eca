package provider

import "sort"

// Records also support lookup by field name for callers that address fields
// dynamically (templates, column pickers). Each table maps a key to a typed
// getter; optional fields come back as their pointer type.

type fieldTable[T any] map[string]func(*T) any

func (ft fieldTable[T]) get(rec *T, key string) (any, bool) {
	fn, ok := ft[key]
	if !ok {
		return nil, false
	}
	return fn(rec), true
}

func (ft fieldTable[T]) keys() []string {
	keys := make([]string, 0, len(ft))
	for k := range ft {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var userFields = fieldTable[User]{
	"user_id":       func(u *User) any { return u.UserID },
	"login_name":    func(u *User) any { return u.LoginName },
	"team_ids":      func(u *User) any { return u.TeamIDs },
	"youth_team_id": func(u *User) any { return u.YouthTeamID },
	"source_file":   func(u *User) any { return u.SourceFile },
}

// Get returns the field stored under key.
func (u *User) Get(key string) (any, bool) { return userFields.get(u, key) }

// Fields lists every key accepted by Get.
func (u *User) Fields() []string { return userFields.keys() }

var teamFields = fieldTable[Team]{
	"team_id":                     func(t *Team) any { return t.TeamID },
	"name":                        func(t *Team) any { return t.Name },
	"short_name":                  func(t *Team) any { return t.ShortName },
	"league_name":                 func(t *Team) any { return t.LeagueName },
	"league_level":                func(t *Team) any { return t.LeagueLevel },
	"league_level_unit_id":        func(t *Team) any { return t.LeagueLevelUnitID },
	"league_level_unit_name":      func(t *Team) any { return t.LeagueLevelUnitName },
	"region_id":                   func(t *Team) any { return t.RegionID },
	"founded_date":                func(t *Team) any { return t.FoundedDate },
	"arena_id":                    func(t *Team) any { return t.ArenaID },
	"arena_name":                  func(t *Team) any { return t.ArenaName },
	"fanclub_size":                func(t *Team) any { return t.FanclubSize },
	"fans_mood":                   func(t *Team) any { return t.FansMood },
	"fans_match_attitude":         func(t *Team) any { return t.FansMatchAttitude },
	"dress_uri":                   func(t *Team) any { return t.DressURI },
	"dress_alternate_uri":         func(t *Team) any { return t.DressAlternateURI },
	"logo_url":                    func(t *Team) any { return t.LogoURL },
	"power_rating":                func(t *Team) any { return t.PowerRating },
	"power_rating_global_ranking": func(t *Team) any { return t.PowerRatingGlobalRanking },
	"power_rating_league_ranking": func(t *Team) any { return t.PowerRatingLeagueRanking },
	"power_rating_region_ranking": func(t *Team) any { return t.PowerRatingRegionRanking },
	"cup_name":                    func(t *Team) any { return t.CupName },
	"cup_level":                   func(t *Team) any { return t.CupLevel },
	"still_in_cup":                func(t *Team) any { return t.StillInCup },
	"number_of_victories":         func(t *Team) any { return t.NumberOfVictories },
	"number_of_undefeated":        func(t *Team) any { return t.NumberOfUndefeated },
	"players":                     func(t *Team) any { return t.Players() },
	"source_file":                 func(t *Team) any { return t.SourceFile },
}

// Get returns the field stored under key.
func (t *Team) Get(key string) (any, bool) { return teamFields.get(t, key) }

// Fields lists every key accepted by Get.
func (t *Team) Fields() []string { return teamFields.keys() }

var playerFields = fieldTable[Player]{
	"player_id":            func(p *Player) any { return p.PlayerID },
	"id":                   func(p *Player) any { return p.PlayerID },
	"first_name":           func(p *Player) any { return p.FirstName },
	"last_name":            func(p *Player) any { return p.LastName },
	"nick_name":            func(p *Player) any { return p.NickName },
	"age":                  func(p *Player) any { return p.Age },
	"age_days":             func(p *Player) any { return p.AgeDays },
	"tsi":                  func(p *Player) any { return p.TSI },
	"player_number":        func(p *Player) any { return p.PlayerNumber },
	"number":               func(p *Player) any { return p.PlayerNumber },
	"category_id":          func(p *Player) any { return p.CategoryID },
	"form":                 func(p *Player) any { return p.Form },
	"stamina":              func(p *Player) any { return p.Stamina },
	"experience":           func(p *Player) any { return p.Experience },
	"loyalty":              func(p *Player) any { return p.Loyalty },
	"leadership":           func(p *Player) any { return p.Leadership },
	"keeper":               func(p *Player) any { return p.Keeper },
	"defender":             func(p *Player) any { return p.Defender },
	"playmaker":            func(p *Player) any { return p.Playmaker },
	"winger":               func(p *Player) any { return p.Winger },
	"passing":              func(p *Player) any { return p.Passing },
	"scorer":               func(p *Player) any { return p.Scorer },
	"set_pieces":           func(p *Player) any { return p.SetPieces },
	"specialty":            func(p *Player) any { return p.Specialty },
	"arrival_date":         func(p *Player) any { return p.ArrivalDate },
	"cards":                func(p *Player) any { return p.Cards },
	"injury_level":         func(p *Player) any { return p.InjuryLevel },
	"mother_club_bonus":    func(p *Player) any { return p.MotherClubBonus },
	"agreeability":         func(p *Player) any { return p.Agreeability },
	"aggressiveness":       func(p *Player) any { return p.Aggressiveness },
	"honesty":              func(p *Player) any { return p.Honesty },
	"statement":            func(p *Player) any { return p.Statement },
	"owner_notes":          func(p *Player) any { return p.OwnerNotes },
	"country_id":           func(p *Player) any { return p.CountryID },
	"national_team_id":     func(p *Player) any { return p.NationalTeamID },
	"salary":               func(p *Player) any { return p.Salary },
	"caps":                 func(p *Player) any { return p.Caps },
	"caps_u20":             func(p *Player) any { return p.CapsU20 },
	"career_goals":         func(p *Player) any { return p.CareerGoals },
	"career_hattricks":     func(p *Player) any { return p.CareerHattricks },
	"career_assists":       func(p *Player) any { return p.CareerAssists },
	"league_goals":         func(p *Player) any { return p.LeagueGoals },
	"cup_goals":            func(p *Player) any { return p.CupGoals },
	"friendlies_goals":     func(p *Player) any { return p.FriendliesGoals },
	"matches_current_team": func(p *Player) any { return p.MatchesCurrentTeam },
	"goals_current_team":   func(p *Player) any { return p.GoalsCurrentTeam },
	"assists_current_team": func(p *Player) any { return p.AssistsCurrentTeam },
	"transfer_listed":      func(p *Player) any { return p.TransferListed },
	"transfer_details":     func(p *Player) any { return p.TransferDetails },
	"source_file":          func(p *Player) any { return p.SourceFile },
}

// Get returns the field stored under key. "id" and "number" alias player_id
// and player_number.
func (p *Player) Get(key string) (any, bool) { return playerFields.get(p, key) }

// Fields lists every key accepted by Get.
func (p *Player) Fields() []string { return playerFields.keys() }

var transferFields = fieldTable[TransferDetails]{
	"asking_price": func(d *TransferDetails) any { return d.AskingPrice },
	"deadline":     func(d *TransferDetails) any { return d.Deadline },
	"highest_bid":  func(d *TransferDetails) any { return d.HighestBid },
	"max_bid":      func(d *TransferDetails) any { return d.MaxBid },
	"bidder_team":  func(d *TransferDetails) any { return d.BidderTeam },
}

// Get returns the field stored under key.
func (d *TransferDetails) Get(key string) (any, bool) { return transferFields.get(d, key) }

// Fields lists every key accepted by Get.
func (d *TransferDetails) Fields() []string { return transferFields.keys() }

var matchFields = fieldTable[Match]{
	"match_id":        func(m *Match) any { return m.MatchID },
	"date":            func(m *Match) any { return m.Date },
	"status":          func(m *Match) any { return m.Status },
	"home_team_id":    func(m *Match) any { return m.HomeTeamID },
	"home_team_name":  func(m *Match) any { return m.HomeTeamName },
	"away_team_id":    func(m *Match) any { return m.AwayTeamID },
	"away_team_name":  func(m *Match) any { return m.AwayTeamName },
	"home_goals":      func(m *Match) any { return m.HomeGoals },
	"away_goals":      func(m *Match) any { return m.AwayGoals },
	"match_type":      func(m *Match) any { return m.MatchType },
	"context_id":      func(m *Match) any { return m.ContextID },
	"rule_id":         func(m *Match) any { return m.RuleID },
	"cup_level":       func(m *Match) any { return m.CupLevel },
	"cup_level_index": func(m *Match) any { return m.CupLevelIndex },
	"source_file":     func(m *Match) any { return m.SourceFile },
}

// Get returns the field stored under key.
func (m *Match) Get(key string) (any, bool) { return matchFields.get(m, key) }

// Fields lists every key accepted by Get.
func (m *Match) Fields() []string { return matchFields.keys() }
