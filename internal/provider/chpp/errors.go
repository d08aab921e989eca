package chpp

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Sentinels matched through errors.Is. ErrAuth and ErrAPI identify the two
// error kinds; the rest are causes carried inside an AuthError.
var (
	ErrAuth = errors.New("chpp: auth error")
	ErrAPI  = errors.New("chpp: api error")

	ErrMissingAccessToken = errors.New("access token key and secret are required")
	ErrNoPlayer           = errors.New("response has no Player element")
	ErrInvalidScope       = errors.New("unknown oauth scope")
)

// AuthError covers every failure where nothing meaningful came back from the
// wire: OAuth and token problems, connection errors, non-2xx statuses and
// malformed XML.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "chpp auth: " + e.Op
	}
	return fmt.Sprintf("chpp auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error        { return e.Err }
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

func authErr(op string, err error) error {
	return &AuthError{Op: op, Err: err}
}

// APIError is an application-level failure reported inside the XML envelope.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chpp api error %d (%s): %s", e.Code, e.Label(), e.Message)
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// Label returns the documented meaning of Code, or "Unknown error".
func (e *APIError) Label() string { return ErrorLabel(e.Code) }

// StatusError is an HTTP response outside 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// CallError adds call context to an error from a facade operation. The
// wrapped error keeps its kind.
type CallError struct {
	File    string
	Version string
	Params  url.Values
	Err     error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s v%s%s: %v", e.File, e.Version, formatParams(e.Params), e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

func formatParams(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(params[k], ","))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsAPI reports whether err is an APIError.
func IsAPI(err error) bool { return errors.Is(err, ErrAPI) }

// APICode returns the CHPP error code carried by err.
func APICode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return 0, false
}

// IsStatus reports whether err carries an HTTP status error with code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
