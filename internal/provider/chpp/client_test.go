package chpp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htstatus/chpp-client/internal/cache"
)

func TestNewClientRequiresConsumerCredentials(t *testing.T) {
	_, err := NewClient(Config{ConsumerKey: "k"}, nil)
	assert.Error(t, err)

	c, err := NewClient(Config{ConsumerKey: "k", ConsumerSecret: "s"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultRetryTotal, c.cfg.RetryTotal)
	assert.Equal(t, DefaultRequestTimeout, c.cfg.RequestTimeout)
	assert.False(t, c.HasAccessToken())
}

func TestRequestSignsAndSendsFileVersion(t *testing.T) {
	var gotQuery, gotAuth string
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, managerXML)
	}}
	c := newTestClient(t, fake)

	root, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.NoError(t, err)
	assert.Equal(t, "HattrickData", root.Tag)

	assert.Contains(t, gotQuery, "file=managercompendium")
	assert.Contains(t, gotQuery, "version=1.6")
	assert.True(t, strings.HasPrefix(gotAuth, "OAuth "), "Authorization = %q", gotAuth)
	assert.Contains(t, gotAuth, `oauth_token="access-key"`)
	assert.Contains(t, gotAuth, `oauth_consumer_key="consumer-key"`)
	assert.Contains(t, gotAuth, `oauth_signature_method="HMAC-SHA1"`)
	assert.NotContains(t, gotAuth, "access-secret")
}

func TestRequestWithoutAccessToken(t *testing.T) {
	fake := &fakeCHPP{bodies: map[string]string{"managercompendium": managerXML}}
	c := newTestClient(t, fake, func(cfg *Config) {
		cfg.AccessKey = ""
		cfg.AccessSecret = ""
	})

	_, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.True(t, errors.Is(err, ErrMissingAccessToken))
	assert.Equal(t, int32(0), fake.hits.Load())
}

func TestRequestRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, managerXML)
	}}
	c := newTestClient(t, fake)

	root, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.NoError(t, err)
	assert.NotNil(t, root)
	assert.Equal(t, int32(4), fake.hits.Load())
}

func TestRequestGivesUpAfterRetryTotal(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}}
	c := newTestClient(t, fake)

	_, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
	assert.Equal(t, int32(5), fake.hits.Load())
}

func TestRequestDoesNotRetryOtherStatuses(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusNotImplemented} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}}
			c := newTestClient(t, fake)

			_, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
			require.Error(t, err)
			assert.True(t, IsAuth(err))
			assert.True(t, IsStatus(err, status))
			assert.Equal(t, int32(1), fake.hits.Load())
		})
	}
}

func TestRequestStopsFollowingRedirects(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
	}}
	c := newTestClient(t, fake)

	_, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, int32(DefaultRetryRedirects+1), fake.hits.Load())
}

func TestRequestAPIErrorIsNotRetried(t *testing.T) {
	fake := &fakeCHPP{bodies: map[string]string{"playerdetails": unknownPlayerXML}}
	c := newTestClient(t, fake)

	_, err := c.Request(context.Background(), EndpointPlayerDetails, nil)
	require.Error(t, err)
	assert.True(t, IsAPI(err))
	assert.Equal(t, int32(1), fake.hits.Load())
}

func TestRequestMalformedBodyIsAuthError(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<HattrickData attr=></HattrickData>`)
	}}
	c := newTestClient(t, fake)

	_, err := c.Request(context.Background(), EndpointManagerCompendium, nil)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
}

func TestRequestHonorsContextDuringBackoff(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.RetryBackoff = time.Hour })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Request(ctx, EndpointManagerCompendium, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, int32(1), fake.hits.Load())
}

func TestRequestCachesCleanBodies(t *testing.T) {
	fake := &fakeCHPP{bodies: map[string]string{
		"managercompendium": managerXML,
		"playerdetails":     unknownPlayerXML,
	}}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.Cache = cache.New(true, time.Minute) })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Request(ctx, EndpointManagerCompendium, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fake.hits.Load())

	for i := 0; i < 2; i++ {
		_, err := c.Request(ctx, EndpointPlayerDetails, nil)
		require.Error(t, err)
	}
	assert.Equal(t, int32(3), fake.hits.Load(), "error envelopes are not cached")
}

func TestBackoff(t *testing.T) {
	c := &Client{cfg: Config{RetryBackoff: 500 * time.Millisecond}}
	assert.Equal(t, 500*time.Millisecond, c.backoff(1))
	assert.Equal(t, time.Second, c.backoff(2))
	assert.Equal(t, 2*time.Second, c.backoff(3))
	assert.Equal(t, 4*time.Second, c.backoff(4))

	c.cfg.RetryJitter = 0.1
	for i := 0; i < 20; i++ {
		d := c.backoff(2)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestInvalidateToken(t *testing.T) {
	var path string
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}}
	c := newTestClient(t, fake)

	require.NoError(t, c.InvalidateToken(context.Background()))
	assert.Equal(t, "/oauth/invalidate_token.ashx", path)
}

func TestInvalidateTokenFailure(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}}
	c := newTestClient(t, fake)

	err := c.InvalidateToken(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, int32(1), fake.hits.Load())
}

func TestCheckToken(t *testing.T) {
	fake := &fakeCHPP{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<HattrickData><UserID>123456</UserID><Token>access-key</Token></HattrickData>`)
	}}
	c := newTestClient(t, fake)

	root, err := c.CheckToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456", root.FindElement("UserID").Text())
}
