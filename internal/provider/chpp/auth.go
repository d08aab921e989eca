package chpp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"
)

// AuthRequest is the result of the first OAuth leg. The request token is
// single-use: it is valid until exchanged or abandoned.
type AuthRequest struct {
	RequestToken       string `json:"request_token"`
	RequestTokenSecret string `json:"request_token_secret"`
	URL                string `json:"url"`
}

// AccessToken is the permanent token pair a user grants the application.
type AccessToken struct {
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

// OAuthEndpoint returns the CHPP OAuth endpoints below base, which must end
// with a slash.
func OAuthEndpoint(base string) oauth1.Endpoint {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return oauth1.Endpoint{
		RequestTokenURL: base + requestTokenPath,
		AuthorizeURL:    base + authorizePath,
		AccessTokenURL:  base + accessTokenPath,
	}
}

// tokenClient returns a copy of hc whose requests follow ctx. A nil hc or one
// without a timeout gets DefaultRequestTimeout.
func tokenClient(ctx context.Context, hc *http.Client) *http.Client {
	out := &http.Client{Timeout: DefaultRequestTimeout}
	if hc != nil {
		*out = *hc
		if out.Timeout <= 0 {
			out.Timeout = DefaultRequestTimeout
		}
	}
	base := out.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out.Transport = ctxTransport{ctx: ctx, base: base}
	return out
}

// ctxTransport cancels requests when ctx is done. oauth1 builds its token
// requests without a context.
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	context.AfterFunc(t.ctx, cancel)
	return t.base.RoundTrip(req.WithContext(ctx))
}

// exchangeErr prefers the caller's context error over the transport's.
func exchangeErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return authErr(op, ctxErr)
	}
	return authErr(op, err)
}

// GetRequestToken fetches a request token signed with the consumer pair only
// and builds the URL the user must visit to grant access. An empty
// callbackURL means out-of-band ("oob"). Token exchanges are never retried.
// hc supplies the transport and timeout; nil uses the defaults.
func GetRequestToken(ctx context.Context, hc *http.Client, endpoint oauth1.Endpoint, consumerKey, consumerSecret, callbackURL, scope string) (*AuthRequest, error) {
	const op = "get request token"
	if !ValidScope(scope) {
		return nil, authErr(op, fmt.Errorf("%w: %q", ErrInvalidScope, scope))
	}
	if err := ctx.Err(); err != nil {
		return nil, authErr(op, err)
	}
	if callbackURL == "" {
		callbackURL = "oob"
	}

	cfg := &oauth1.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		CallbackURL:    callbackURL,
		Endpoint:       endpoint,
		HTTPClient:     tokenClient(ctx, hc),
	}
	token, secret, err := cfg.RequestToken()
	if err != nil {
		return nil, exchangeErr(ctx, op, err)
	}

	authURL, err := cfg.AuthorizationURL(token)
	if err != nil {
		return nil, authErr(op, err)
	}
	if scope != "" {
		q := authURL.Query()
		q.Set("scope", scope)
		authURL.RawQuery = q.Encode()
	}

	return &AuthRequest{
		RequestToken:       token,
		RequestTokenSecret: secret,
		URL:                authURL.String(),
	}, nil
}

// GetAccessToken exchanges an authorized request token and its verifier for
// an access token. The request token cannot be used again afterwards.
func GetAccessToken(ctx context.Context, hc *http.Client, endpoint oauth1.Endpoint, consumerKey, consumerSecret, requestToken, requestSecret, verifier string) (*AccessToken, error) {
	const op = "get access token"
	if requestToken == "" || verifier == "" {
		return nil, authErr(op, errors.New("request token and verifier are required"))
	}
	if err := ctx.Err(); err != nil {
		return nil, authErr(op, err)
	}

	cfg := &oauth1.Config{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		Endpoint:       endpoint,
		HTTPClient:     tokenClient(ctx, hc),
	}
	key, secret, err := cfg.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return nil, exchangeErr(ctx, op, err)
	}
	return &AccessToken{Key: key, Secret: secret}, nil
}
