package chpp

import (
	"slices"
	"strings"
	"time"
)

// Hattrick CHPP endpoints.
const (
	DefaultBaseURL  = "https://chpp.hattrick.org/chppxml.ashx"
	DefaultOAuthURL = "https://chpp.hattrick.org/oauth/"

	requestTokenPath    = "request_token.ashx"
	authorizePath       = "authorize.aspx"
	accessTokenPath     = "access_token.ashx"
	checkTokenPath      = "check_token.ashx"
	invalidateTokenPath = "invalidate_token.ashx"
)

// Transport defaults.
const (
	DefaultRetryTotal     = 5
	DefaultRetryBackoff   = 500 * time.Millisecond
	DefaultRetryJitter    = 0.1
	DefaultRetryRedirects = 5
	DefaultRequestTimeout = 15 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Endpoint is a CHPP file name plus the schema version the parsers expect.
type Endpoint struct {
	File    string
	Version string
}

func (e Endpoint) String() string { return e.File + " v" + e.Version }

var (
	EndpointManagerCompendium = Endpoint{File: "managercompendium", Version: "1.6"}
	EndpointTeamDetails       = Endpoint{File: "teamdetails", Version: "3.6"}
	EndpointPlayers           = Endpoint{File: "players", Version: "2.7"}
	EndpointPlayerDetails     = Endpoint{File: "playerdetails", Version: "2.4"}
	EndpointMatches           = Endpoint{File: "matches", Version: "2.6"}
	EndpointMatchesArchive    = Endpoint{File: "matchesarchive", Version: "1.5"}
)

// errorLabels maps documented CHPP error codes to a readable label. The table
// is incomplete; codes missing from it are labeled "Unknown error".
var errorLabels = map[int]string{
	50: "Unknown team ID",
	51: "Unknown match ID",
	52: "Unknown action type",
	54: "Unknown youth team ID",
	55: "Unknown youth player ID",
	56: "Unknown player ID",
	59: "Team not owned by user",
	70: "Challenge error",
}

// ErrorLabel returns the label for a CHPP error code.
func ErrorLabel(code int) string {
	if label, ok := errorLabels[code]; ok {
		return label
	}
	return unknownError
}

const unknownError = "Unknown error"

// Scopes accepted by the authorize URL. The empty scope is read-only access.
var Scopes = []string{
	"",
	"manage_challenges",
	"set_matchorder",
	"manage_youthplayers",
	"set_training",
	"place_bid",
}

// ValidScope reports whether scope is a comma-separated list of known scopes.
func ValidScope(scope string) bool {
	if scope == "" {
		return true
	}
	for _, part := range strings.Split(scope, ",") {
		if !slices.Contains(Scopes[1:], strings.TrimSpace(part)) {
			return false
		}
	}
	return true
}
