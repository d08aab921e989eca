package chpp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/beevik/etree"

	"github.com/htstatus/chpp-client/internal/provider"
)

// call wraps Request errors with the endpoint and parameters. The error kind
// is left untouched.
func (c *Client) call(ctx context.Context, ep Endpoint, params url.Values) (*etree.Element, error) {
	root, err := c.Request(ctx, ep, params)
	if err != nil {
		return nil, &CallError{File: ep.File, Version: ep.Version, Params: params, Err: err}
	}
	return root, nil
}

// tokenHTTPClient is the unsigned client for token exchanges: the configured
// transport with the per-request timeout.
func (c *Client) tokenHTTPClient() *http.Client {
	hc := &http.Client{Timeout: c.cfg.RequestTimeout}
	if c.cfg.HTTPClient != nil {
		hc.Transport = c.cfg.HTTPClient.Transport
	}
	return hc
}

// GetAuth starts the OAuth handshake with the client's consumer credentials.
func (c *Client) GetAuth(ctx context.Context, callbackURL, scope string) (*AuthRequest, error) {
	return GetRequestToken(ctx, c.tokenHTTPClient(), c.oauth.Endpoint, c.cfg.ConsumerKey, c.cfg.ConsumerSecret, callbackURL, scope)
}

// GetAccessToken completes the OAuth handshake.
func (c *Client) GetAccessToken(ctx context.Context, requestToken, requestSecret, verifier string) (*AccessToken, error) {
	return GetAccessToken(ctx, c.tokenHTTPClient(), c.oauth.Endpoint, c.cfg.ConsumerKey, c.cfg.ConsumerSecret, requestToken, requestSecret, verifier)
}

// User returns the manager owning the access token.
func (c *Client) User(ctx context.Context) (*provider.User, error) {
	root, err := c.call(ctx, EndpointManagerCompendium, nil)
	if err != nil {
		return nil, err
	}
	return ParseUser(root), nil
}

// Team returns team metadata with its roster attached. It costs two calls:
// teamdetails, then players. A zero teamID selects the manager's primary team.
func (c *Client) Team(ctx context.Context, teamID int) (*provider.Team, error) {
	return c.team(ctx, teamID, false)
}

// TeamDetailed is Team with every roster entry replaced by its playerdetails
// record, which carries transfer and personality data the roster lacks. A
// player whose details cannot be fetched keeps the roster record; the failure
// is logged and does not fail the team.
func (c *Client) TeamDetailed(ctx context.Context, teamID int) (*provider.Team, error) {
	return c.team(ctx, teamID, true)
}

func (c *Client) team(ctx context.Context, teamID int, detailed bool) (*provider.Team, error) {
	params := url.Values{}
	if teamID != 0 {
		params.Set("teamId", strconv.Itoa(teamID))
	}
	root, err := c.call(ctx, EndpointTeamDetails, params)
	if err != nil {
		return nil, err
	}
	team := ParseTeam(root)

	rosterParams := url.Values{}
	switch {
	case teamID != 0:
		rosterParams.Set("teamId", strconv.Itoa(teamID))
	case team.Valid():
		rosterParams.Set("teamId", strconv.Itoa(team.TeamID))
	}
	root, err = c.call(ctx, EndpointPlayers, rosterParams)
	if err != nil {
		return nil, err
	}
	players := ParsePlayers(root)

	if detailed {
		for i, p := range players {
			if err := ctx.Err(); err != nil {
				return nil, authErr("fetch player details", err)
			}
			full, err := c.Player(ctx, p.PlayerID)
			if err != nil {
				c.logger.Warn("player details unavailable, using roster entry",
					"player_id", p.PlayerID, "team_id", team.TeamID, "error", err)
				continue
			}
			players[i] = *full
		}
	}

	if err := team.AttachPlayers(players); err != nil {
		return nil, err
	}
	return team, nil
}

// Player returns a single player from playerdetails.
func (c *Client) Player(ctx context.Context, playerID int) (*provider.Player, error) {
	params := url.Values{}
	params.Set("playerID", strconv.Itoa(playerID))
	params.Set("includeMatchInfo", "true")
	root, err := c.call(ctx, EndpointPlayerDetails, params)
	if err != nil {
		return nil, err
	}
	p, err := ParsePlayer(root)
	if err != nil {
		return nil, &CallError{File: EndpointPlayerDetails.File, Version: EndpointPlayerDetails.Version, Params: params, Err: err}
	}
	return p, nil
}

// Matches returns the recent and upcoming matches of a team.
func (c *Client) Matches(ctx context.Context, teamID int, isYouth bool) ([]provider.Match, error) {
	params := url.Values{}
	params.Set("teamID", strconv.Itoa(teamID))
	params.Set("isYouth", strconv.FormatBool(isYouth))
	root, err := c.call(ctx, EndpointMatches, params)
	if err != nil {
		return nil, err
	}
	return ParseMatches(root, EndpointMatches.File), nil
}

// MatchesArchive returns a team's match history from the matches endpoint.
func (c *Client) MatchesArchive(ctx context.Context, teamID int, isYouth bool) ([]provider.Match, error) {
	return c.Matches(ctx, teamID, isYouth)
}

// ArchiveQuery narrows a matchesarchive call. Season, when set, overrides the
// date range. Dates use the YYYY-MM-DD format; CHPP defaults to the last
// three months when neither is given.
type ArchiveQuery struct {
	IsYouth        bool
	Season         int
	FirstMatchDate string
	LastMatchDate  string
}

func (q ArchiveQuery) values(teamID int) url.Values {
	params := url.Values{}
	params.Set("teamID", strconv.Itoa(teamID))
	params.Set("isYouthTeam", strconv.FormatBool(q.IsYouth))
	if q.Season > 0 {
		params.Set("season", strconv.Itoa(q.Season))
		return params
	}
	if q.FirstMatchDate != "" {
		params.Set("FirstMatchDate", q.FirstMatchDate)
	}
	if q.LastMatchDate != "" {
		params.Set("LastMatchDate", q.LastMatchDate)
	}
	return params
}

// MatchesArchiveRange returns a team's match history from matchesarchive,
// filtered by season or date range.
func (c *Client) MatchesArchiveRange(ctx context.Context, teamID int, q ArchiveQuery) ([]provider.Match, error) {
	root, err := c.call(ctx, EndpointMatchesArchive, q.values(teamID))
	if err != nil {
		return nil, err
	}
	return ParseMatches(root, EndpointMatchesArchive.File), nil
}
