package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

func TestClient_ListImages(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		req.Contains(r.URL.Query().Get("q"), "'folder-1' in parents")
		req.Equal("createdTime desc", r.URL.Query().Get("orderBy"))

		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(listResponse{
				Files:         []File{{ID: "f1", Name: "a.jpg"}},
				NextPageToken: "page2",
			})
			return
		}
		json.NewEncoder(w).Encode(listResponse{Files: []File{{ID: "f2", Name: "b.jpg"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, staticTokens("tok"))

	files, next, err := c.ListImages(context.Background(), "folder-1", "", 100)
	req.NoError(err)
	req.Len(files, 1)
	req.Equal("f1", files[0].ID)
	req.Equal("page2", next)

	files, next, err = c.ListImages(context.Background(), "folder-1", next, 100)
	req.NoError(err)
	req.Equal("f2", files[0].ID)
	req.Empty(next)
}

func TestClient_FolderName(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/files/folder-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"name": "Wedding 2026"})
	}))
	defer srv.Close()

	name, err := NewClient(srv.URL, srv.URL, staticTokens("tok")).FolderName(context.Background(), "folder-1")
	req.NoError(err)
	req.Equal("Wedding 2026", name)
}

func TestClient_SurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL, srv.URL, staticTokens("tok")).ListImages(context.Background(), "f", "", 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestRefreshingTokenSource_CachesUntilNearExpiry(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		req.NoError(r.ParseForm())
		req.Equal("refresh_token", r.Form.Get("grant_type"))
		req.Equal("rt-1", r.Form.Get("refresh_token"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "expires_in": 3600})
	}))
	defer srv.Close()

	now := time.Now()
	ts := NewRefreshingTokenSource(srv.URL, "cid", "secret", "rt-1")
	ts.now = func() time.Time { return now }

	tok, err := ts.Token(context.Background())
	req.NoError(err)
	req.Equal("at-1", tok)

	// Within the validity window the cached token is reused.
	_, err = ts.Token(context.Background())
	req.NoError(err)
	req.EqualValues(1, calls.Load())

	// Close to expiry a fresh token is fetched.
	now = now.Add(3600*time.Second - 30*time.Second)
	_, err = ts.Token(context.Background())
	req.NoError(err)
	req.EqualValues(2, calls.Load())
}
