package chpp

import (
	"github.com/beevik/etree"

	"github.com/htstatus/chpp-client/internal/provider"
)

// ParseUser reads a managercompendium document. A manager without teams or
// without a youth team is not an error.
func ParseUser(root *etree.Element) *provider.User {
	u := &provider.User{
		UserID:     provider.Int(root, ".//Manager/UserId", 0),
		LoginName:  provider.Text(root, ".//Manager/Loginname", ""),
		TeamIDs:    []int{},
		SourceFile: EndpointManagerCompendium.File,
	}
	for _, el := range root.FindElements(".//Teams/Team/TeamId") {
		if id := provider.Int(el, ".", 0); id != 0 {
			u.TeamIDs = append(u.TeamIDs, id)
		}
	}
	u.YouthTeamID = provider.OptInt(root, ".//YouthTeam/YouthTeamId")
	return u
}

// ParseTeam reads team metadata from a teamdetails document. The roster is
// not part of this document.
func ParseTeam(root *etree.Element) *provider.Team {
	t := &provider.Team{
		TeamID:    provider.Int(root, ".//Team/TeamID", 0),
		Name:      provider.Text(root, ".//Team/TeamName", ""),
		ShortName: provider.Text(root, ".//Team/ShortTeamName", ""),

		LeagueName:  provider.OptText(root, ".//League/LeagueName"),
		LeagueLevel: provider.OptInt(root, ".//League/LeagueLevel"),
		RegionID:    provider.OptInt(root, ".//Region/RegionID"),
		FoundedDate: provider.OptText(root, ".//Team/FoundedDate"),

		ArenaID:   provider.OptInt(root, ".//Arena/ArenaID"),
		ArenaName: provider.OptText(root, ".//Arena/ArenaName"),

		FanclubSize:       provider.OptInt(root, ".//FanClub/FanClubSize"),
		FansMood:          provider.OptText(root, ".//Fans/FansMood"),
		FansMatchAttitude: provider.OptText(root, ".//Fans/FansMatchAttitude"),

		DressURI:          provider.OptText(root, ".//Team/DressURI"),
		DressAlternateURI: provider.OptText(root, ".//Team/DressAlternateURI"),
		LogoURL:           provider.OptText(root, ".//Team/LogoURL"),

		PowerRating:              provider.OptInt(root, ".//PowerRating/PowerRating"),
		PowerRatingGlobalRanking: provider.OptInt(root, ".//PowerRating/GlobalRanking"),
		PowerRatingLeagueRanking: provider.OptInt(root, ".//PowerRating/LeagueRanking"),
		PowerRatingRegionRanking: provider.OptInt(root, ".//PowerRating/RegionRanking"),

		LeagueLevelUnitID:   provider.OptInt(root, ".//LeagueLevelUnit/LeagueLevelUnitID"),
		LeagueLevelUnitName: provider.OptText(root, ".//LeagueLevelUnit/LeagueLevelUnitName"),

		CupName:    provider.OptText(root, ".//Cup/CupName"),
		CupLevel:   provider.OptInt(root, ".//Cup/CupLevel"),
		StillInCup: provider.Bool(root, ".//Cup/StillInCup", false),

		NumberOfVictories:  provider.OptInt(root, ".//NumberOfVictories"),
		NumberOfUndefeated: provider.OptInt(root, ".//NumberOfUndefeated"),

		SourceFile: EndpointTeamDetails.File,
	}
	if t.ArenaID == nil {
		t.ArenaID = provider.OptInt(root, ".//Arena/ArenaId")
	}
	if t.RegionID == nil {
		t.RegionID = provider.OptInt(root, ".//Team/RegionId")
	}
	// The level of the series the team plays in is more specific than the
	// league's.
	if level := provider.OptInt(root, ".//LeagueLevelUnit/LeagueLevel"); level != nil {
		t.LeagueLevel = level
	}
	return t
}

// ParsePlayers reads every player of a players document, in document order.
func ParsePlayers(root *etree.Element) []provider.Player {
	nodes := root.FindElements(".//PlayerList/Player")
	players := make([]provider.Player, 0, len(nodes))
	for _, node := range nodes {
		p := parsePlayerNode(node)
		p.SourceFile = EndpointPlayers.File
		players = append(players, p)
	}
	return players
}

// ParsePlayer reads the single player of a playerdetails document. A document
// without a Player element yields ErrNoPlayer wrapped in an AuthError.
func ParsePlayer(root *etree.Element) (*provider.Player, error) {
	node := root.FindElement(".//Player")
	if node == nil {
		return nil, authErr("parse "+EndpointPlayerDetails.File, ErrNoPlayer)
	}
	p := parsePlayerNode(node)
	p.InjuryLevel = provider.Int(node, "InjuryLevel", -1)
	p.SourceFile = EndpointPlayerDetails.File

	if p.TransferListed {
		p.TransferDetails = parseTransferDetails(node.FindElement("TransferDetails"))
	}
	return &p, nil
}

func parsePlayerNode(node *etree.Element) provider.Player {
	p := provider.Player{
		PlayerID:     provider.Int(node, "PlayerID", 0),
		FirstName:    provider.Text(node, "FirstName", ""),
		LastName:     provider.Text(node, "LastName", ""),
		NickName:     provider.OptText(node, "NickName"),
		Age:          provider.Int(node, "Age", 0),
		AgeDays:      provider.Int(node, "AgeDays", 0),
		TSI:          provider.Int(node, "TSI", 0),
		PlayerNumber: provider.Int(node, "PlayerNumber", 0),
		CategoryID:   provider.OptInt(node, "PlayerCategoryID"),

		Form:       provider.Int(node, "PlayerForm", 0),
		Experience: provider.Int(node, "Experience", 0),
		Loyalty:    provider.Int(node, "Loyalty", 0),
		Leadership: provider.Int(node, "Leadership", 0),

		Specialty:       provider.Int(node, "Specialty", 0),
		ArrivalDate:     provider.OptTime(node, "ArrivalDate"),
		Cards:           provider.Int(node, "Cards", 0),
		InjuryLevel:     provider.Int(node, "InjuryLevel", 0),
		MotherClubBonus: provider.Bool(node, "MotherClubBonus", false),
		Agreeability:    provider.OptText(node, "Agreeability"),
		Aggressiveness:  provider.OptText(node, "Aggressiveness"),
		Honesty:         provider.OptText(node, "Honesty"),
		Statement:       provider.OptText(node, "Statement"),
		OwnerNotes:      provider.OptText(node, "OwnerNotes"),

		CountryID:      provider.OptInt(node, "NativeLeagueID"),
		NationalTeamID: provider.OptInt(node, "NationalTeamID"),
		Salary:         provider.OptInt(node, "Salary"),
		Caps:           provider.Int(node, "Caps", 0),
		CapsU20:        provider.Int(node, "CapsU20", 0),

		CareerGoals:        provider.Int(node, "CareerGoals", 0),
		CareerHattricks:    provider.Int(node, "CareerHattricks", 0),
		CareerAssists:      provider.Int(node, "CareerAssists", 0),
		LeagueGoals:        provider.Int(node, "LeagueGoals", 0),
		CupGoals:           provider.Int(node, "CupGoals", 0),
		FriendliesGoals:    provider.Int(node, "FriendliesGoals", 0),
		MatchesCurrentTeam: provider.Int(node, "MatchesCurrentTeam", 0),
		GoalsCurrentTeam:   provider.Int(node, "GoalsCurrentTeam", 0),
		AssistsCurrentTeam: provider.Int(node, "AssistsCurrentTeam", 0),

		TransferListed: provider.Bool(node, "TransferListed", false),
	}

	// Skills live in a PlayerSkills block when the owner may see them. Some
	// responses carry them directly on the player instead.
	if skills := node.FindElement("PlayerSkills"); skills != nil {
		p.Stamina = provider.Int(skills, "StaminaSkill", 0)
		p.Keeper = provider.Int(skills, "KeeperSkill", 0)
		p.Defender = provider.Int(skills, "DefenderSkill", 0)
		p.Playmaker = provider.Int(skills, "PlaymakerSkill", 0)
		p.Winger = provider.Int(skills, "WingerSkill", 0)
		p.Passing = provider.Int(skills, "PassingSkill", 0)
		p.Scorer = provider.Int(skills, "ScorerSkill", 0)
		p.SetPieces = provider.Int(skills, "SetPiecesSkill", 0)
	} else {
		p.Stamina = provider.Int(node, "StaminaSkill", provider.Int(node, "Stamina", 0))
		p.Keeper = provider.Int(node, "KeeperSkill", provider.Int(node, "Keeper", 0))
		p.Defender = provider.Int(node, "DefenderSkill", provider.Int(node, "Defender", 0))
		p.Playmaker = provider.Int(node, "PlaymakerSkill", provider.Int(node, "Playmaker", 0))
		p.Winger = provider.Int(node, "WingerSkill", provider.Int(node, "Winger", 0))
		p.Passing = provider.Int(node, "PassingSkill", provider.Int(node, "Passing", 0))
		p.Scorer = provider.Int(node, "ScorerSkill", provider.Int(node, "Scorer", 0))
		p.SetPieces = provider.Int(node, "SetPiecesSkill", provider.Int(node, "SetPieces", 0))
	}
	return p
}

func parseTransferDetails(node *etree.Element) *provider.TransferDetails {
	if node == nil {
		return nil
	}
	d := &provider.TransferDetails{
		AskingPrice: provider.Int(node, "AskingPrice", 0),
		Deadline:    provider.Text(node, "Deadline", ""),
		HighestBid:  provider.Int(node, "HighestBid", 0),
		MaxBid:      provider.OptInt(node, "MaxBid"),
	}
	if bidder := node.FindElement("BidderTeam"); bidder != nil {
		if id := provider.Int(bidder, "TeamID", 0); id != 0 {
			d.BidderTeam = &provider.BidderTeam{
				TeamID:   id,
				TeamName: provider.Text(bidder, "TeamName", ""),
			}
		}
	}
	return d
}

// ParseMatches reads a team's match list. It accepts the matches and
// matchesarchive layouts. Matches without a result keep nil goals.
func ParseMatches(root *etree.Element, source string) []provider.Match {
	nodes := root.FindElements(".//Team/MatchList/Match")
	if len(nodes) == 0 {
		nodes = root.FindElements(".//MatchList/Match")
	}
	if len(nodes) == 0 {
		nodes = root.FindElements(".//Match")
	}

	matches := make([]provider.Match, 0, len(nodes))
	for _, node := range nodes {
		m := provider.Match{
			MatchID:      provider.Int(node, "MatchID", 0),
			Date:         provider.OptText(node, "MatchDate"),
			Status:       provider.OptText(node, "Status"),
			HomeTeamID:   provider.Int(node, "HomeTeam/HomeTeamID", provider.Int(node, "HomeTeamID", 0)),
			HomeTeamName: provider.Text(node, "HomeTeam/HomeTeamName", provider.Text(node, "HomeTeamName", "")),
			AwayTeamID:   provider.Int(node, "AwayTeam/AwayTeamID", provider.Int(node, "AwayTeamID", 0)),
			AwayTeamName: provider.Text(node, "AwayTeam/AwayTeamName", provider.Text(node, "AwayTeamName", "")),
			HomeGoals:    provider.OptInt(node, "HomeGoals"),
			AwayGoals:    provider.OptInt(node, "AwayGoals"),

			MatchType:     provider.OptInt(node, "MatchType"),
			ContextID:     provider.OptInt(node, "MatchContextId"),
			RuleID:        provider.OptInt(node, "MatchRuleId"),
			CupLevel:      provider.OptInt(node, "CupLevel"),
			CupLevelIndex: provider.OptInt(node, "CupLevelIndex"),

			SourceFile: source,
		}
		if m.ContextID == nil {
			m.ContextID = provider.OptInt(node, "ContextID")
		}
		if m.RuleID == nil {
			m.RuleID = provider.OptInt(node, "RuleID")
		}
		matches = append(matches, m)
	}
	return matches
}
