package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/credentials"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory stand-in for the REST API: posts, follows,
// profiles and reaction edges, with counters maintained like the backend's
// triggers do.
type fakeBackend struct {
	mu       sync.Mutex
	posts    map[string]*api.Post
	order    []string
	follows  map[string][]string
	edges    map[string]map[string]bool // table -> "post|user"
	failing  map[string]bool            // tables whose writes fail
	requests []string
	token    string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		posts:   map[string]*api.Post{},
		follows: map[string][]string{},
		edges:   map[string]map[string]bool{"likes": {}, "broken_hearts": {}, "reposts": {}},
		failing: map[string]bool{},
	}
}

func (f *fakeBackend) addPost(p api.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.ID] = &p
	f.order = append(f.order, p.ID)
}

func (f *fakeBackend) addEdge(table, postID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[table][postID+"|"+userID] = true
}

func (f *fakeBackend) post(id string) api.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.posts[id]
}

func (f *fakeBackend) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if !strings.HasPrefix(r, "GET ") {
			out = append(out, r)
		}
	}
	return out
}

func parseIn(v string) []string {
	v = strings.TrimSuffix(strings.TrimPrefix(v, "in.("), ")")
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	return parts
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, _ := json.Marshal(v)
	w.Write(data)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	q := r.URL.Query()
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

	switch {
	case r.URL.Path == "/auth/v1/token":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": f.token, "refresh_token": "refresh", "expires_in": 3600, "token_type": "bearer",
		})
	case r.URL.Path == "/auth/v1/logout":
		w.WriteHeader(http.StatusNoContent)

	case table == "posts":
		var out []api.Post
		for _, id := range f.order {
			p := *f.posts[id]
			if v := q.Get("id"); v != "" && !contains(parseIn(v), p.ID) {
				continue
			}
			if v := q.Get("user_id"); v != "" && !contains(parseIn(v), p.AuthorID) {
				continue
			}
			if q.Get("author.is_private") == "eq.false" && p.IsPrivateAuthor() {
				continue
			}
			if v := q.Get("content"); v != "" && !strings.Contains(strings.ToLower(p.Content), strings.ToLower(strings.Trim(strings.TrimPrefix(v, "ilike."), "*"))) {
				continue
			}
			out = append(out, p)
		}
		writeJSON(w, http.StatusOK, out)

	case table == "follows":
		rows := []map[string]string{}
		for _, id := range f.follows[strings.TrimPrefix(q.Get("follower_id"), "eq.")] {
			rows = append(rows, map[string]string{"following_id": id})
		}
		writeJSON(w, http.StatusOK, rows)

	case table == "profiles":
		id := strings.TrimPrefix(q.Get("id"), "eq.")
		for _, p := range f.posts {
			if p.Author != nil && p.Author.ID == id {
				writeJSON(w, http.StatusOK, []api.Author{*p.Author})
				return
			}
		}
		writeJSON(w, http.StatusOK, []api.Author{{ID: id, Username: "viewer"}})

	case f.edges[table] != nil:
		f.serveEdges(w, r, table)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route " + r.URL.Path})
	}
}

func (f *fakeBackend) serveEdges(w http.ResponseWriter, r *http.Request, table string) {
	q := r.URL.Query()
	edges := f.edges[table]

	switch r.Method {
	case http.MethodGet:
		user := strings.TrimPrefix(q.Get("user_id"), "eq.")
		rows := []map[string]string{}
		for _, id := range parseIn(q.Get("post_id")) {
			if edges[id+"|"+user] {
				rows = append(rows, map[string]string{"post_id": id, "user_id": user})
			}
		}
		writeJSON(w, http.StatusOK, rows)

	case http.MethodPost:
		if f.failing[table] {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		body, _ := io.ReadAll(r.Body)
		var row struct {
			PostID string `json:"post_id"`
			UserID string `json:"user_id"`
		}
		json.Unmarshal(body, &row)
		key := row.PostID + "|" + row.UserID
		if edges[key] {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "23505", "message": "duplicate key"})
			return
		}
		edges[key] = true
		f.bump(table, row.PostID, 1)
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if f.failing[table] {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
			return
		}
		postID := strings.TrimPrefix(q.Get("post_id"), "eq.")
		key := postID + "|" + strings.TrimPrefix(q.Get("user_id"), "eq.")
		if edges[key] {
			delete(edges, key)
			f.bump(table, postID, -1)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakeBackend) bump(table, postID string, d int) {
	p := f.posts[postID]
	if p == nil {
		return
	}
	switch table {
	case "likes":
		p.LikesCount += d
	case "broken_hearts":
		p.BrokenHeartsCount += d
	case "reposts":
		p.RepostsCount += d
	}
}

// brokenHTTP points at a server that is already gone.
func brokenHTTP() *resty.Client {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return resty.New().SetBaseURL(srv.URL)
}

// syncBuffer is a bytes.Buffer safe for the watcher's reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type env struct {
	backend *fakeBackend
	api     *api.Client
	out     *syncBuffer
}

// setup points config at a temp dir, captures output and starts a backend.
func setup(t *testing.T) *env {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	config.Set("output.format", "text")
	color.NoColor = true

	out := &syncBuffer{}
	prev := output.Out
	output.Out = out
	t.Cleanup(func() { output.Out = prev })

	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	return &env{
		backend: backend,
		api:     api.NewClient(resty.New().SetBaseURL(srv.URL)),
		out:     out,
	}
}

func (e *env) session(t *testing.T, viewerID string) *Session {
	t.Helper()
	ov, err := overlay.New(context.Background(), nil)
	require.NoError(t, err)

	var creds *credentials.Credentials
	if viewerID != "" {
		creds = &credentials.Credentials{
			AccessToken: "token-" + viewerID,
			UserID:      viewerID,
			Username:    viewerID,
			SessionID:   "session-" + viewerID,
			ExpiresAt:   time.Now().Add(time.Hour),
		}
	}
	return NewSession(e.api, creds, ov)
}

func fakePost(id string, author *api.Author, likes int) api.Post {
	return api.Post{
		ID:         id,
		AuthorID:   author.ID,
		Author:     author,
		Content:    gofakeit.HipsterSentence(),
		LikesCount: likes,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

func fakeAuthor(id string, private bool) *api.Author {
	return &api.Author{ID: id, Username: gofakeit.Username(), DisplayName: gofakeit.Name(), IsPrivate: private}
}
