package reddit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/reddit"
)

// newTestServer fakes the token, identity and listing endpoints on a single
// mux. The same server stands in for both the auth and API hosts.
func newTestServer(t *testing.T, listing http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-client" || pass != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if listing != nil {
		mux.HandleFunc("/r/", listing)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *reddit.Client {
	return reddit.NewClient(reddit.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Username:     "tester",
		Password:     "hunter2",
		UserAgent:    "subsift-test/1.0",
		AuthURL:      srv.URL,
		APIURL:       srv.URL,
	}, logger.NewNoOp())
}

func TestClient_Authenticate(t *testing.T) {
	srv := newTestServer(t, nil)
	client := newTestClient(srv)

	err := client.Authenticate(context.Background())
	require.NoError(t, err)
}

func TestClient_Authenticate_BadCredentials(t *testing.T) {
	srv := newTestServer(t, nil)
	client := reddit.NewClient(reddit.Config{
		ClientID:     "wrong",
		ClientSecret: "wrong",
		Username:     "tester",
		Password:     "hunter2",
		UserAgent:    "subsift-test/1.0",
		AuthURL:      srv.URL,
		APIURL:       srv.URL,
	}, logger.NewNoOp())

	err := client.Authenticate(context.Background())
	require.Error(t, err)
}

func TestClient_ListNew_Paginates(t *testing.T) {
	pages := map[string]map[string]any{
		"": {
			"data": map[string]any{
				"children": []map[string]any{
					{"data": map[string]any{"title": "First post", "name": "t3_aaa", "subreddit": "golang"}},
					{"data": map[string]any{"title": "Second post", "name": "t3_bbb", "subreddit": "golang"}},
				},
				"after": "t3_bbb",
			},
		},
		"t3_bbb": {
			"data": map[string]any{
				"children": []map[string]any{
					{"data": map[string]any{"title": "Third post", "name": "t3_ccc", "subreddit": "golang"}},
				},
				"after": nil,
			},
		},
	}

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		page, ok := pages[r.URL.Query().Get("after")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	client := newTestClient(srv)
	require.NoError(t, client.Authenticate(context.Background()))

	first, err := client.ListNew(context.Background(), "golang", 100, "")
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.Equal(t, "t3_bbb", first.After)
	assert.Equal(t, "First post", first.Posts[0].Title)
	assert.Equal(t, "golang", first.Posts[0].Subreddit)

	second, err := client.ListNew(context.Background(), "golang", 100, first.After)
	require.NoError(t, err)
	require.Len(t, second.Posts, 1)
	assert.Empty(t, second.After, "exhausted listing should return an empty cursor")
}

func TestClient_ListNew_RequiresAuthentication(t *testing.T) {
	srv := newTestServer(t, nil)
	client := newTestClient(srv)

	_, err := client.ListNew(context.Background(), "golang", 100, "")
	assert.ErrorIs(t, err, reddit.ErrNotAuthorized)
}

func TestClient_ListNew_RefreshesExpiredToken(t *testing.T) {
	tokens := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		tokens++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": map[int]string{1: "stale-token", 2: "fresh-token"}[tokens],
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/r/", func(w http.ResponseWriter, r *http.Request) {
		// The first token has expired server-side; only the refreshed one
		// may list.
		if r.Header.Get("Authorization") != "bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"children": []map[string]any{
					{"data": map[string]any{"title": "After refresh", "name": "t3_yyy", "subreddit": "golang"}},
				},
				"after": "",
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := reddit.NewClient(reddit.Config{
		ClientID:         "test-client",
		ClientSecret:     "test-secret",
		Username:         "tester",
		Password:         "hunter2",
		UserAgent:        "subsift-test/1.0",
		AuthURL:          srv.URL,
		APIURL:           srv.URL,
		MaxRetries:       2,
		RetryInitialWait: 1,
	}, logger.NewNoOp())
	require.NoError(t, client.Authenticate(context.Background()))

	page, err := client.ListNew(context.Background(), "golang", 100, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "t3_yyy", page.Posts[0].Fullname)
	assert.Equal(t, 2, tokens, "expected exactly one re-authentication")
}

func TestClient_ListNew_RevokedTokenIsTerminal(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		// 401 even after re-authentication: the account itself is out.
		w.WriteHeader(http.StatusUnauthorized)
	})
	client := newTestClient(srv)
	require.NoError(t, client.Authenticate(context.Background()))

	_, err := client.ListNew(context.Background(), "golang", 100, "")
	assert.ErrorIs(t, err, reddit.ErrNotAuthorized)
}

func TestClient_ListNew_RetriesOnServerError(t *testing.T) {
	var calls int
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"children": []map[string]any{
					{"data": map[string]any{"title": "Recovered", "name": "t3_zzz", "subreddit": "golang"}},
				},
				"after": "",
			},
		})
	})
	client := reddit.NewClient(reddit.Config{
		ClientID:         "test-client",
		ClientSecret:     "test-secret",
		Username:         "tester",
		Password:         "hunter2",
		UserAgent:        "subsift-test/1.0",
		AuthURL:          srv.URL,
		APIURL:           srv.URL,
		MaxRetries:       2,
		RetryInitialWait: 1, // effectively immediate
	}, logger.NewNoOp())
	require.NoError(t, client.Authenticate(context.Background()))

	page, err := client.ListNew(context.Background(), "golang", 100, "")
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "t3_zzz", page.Posts[0].Fullname)
	assert.Equal(t, 2, calls)
}
