package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/config"
)

var testIP uint32

// nextIP hands every request its own client address so the per-IP post
// limiter never interferes with unrelated assertions.
func nextIP() string {
	n := atomic.AddUint32(&testIP, 1)
	return fmt.Sprintf("10.%d.%d.%d", (n>>16)&0xff, (n>>8)&0xff, n&0xff)
}

func newTestRouter(t *testing.T, name string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	// Shared cache keeps one in-memory database across pool connections.
	cfg.Database.URL = "sqlite://file:" + name + "?mode=memory&cache=shared"
	cfg.Server.CORSOrigin = "http://localhost:5173"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Ranking = config.RankingConfig{FetchLimit: 50, ResultLimit: 10, CacheTTL: time.Minute}
	cfg.Logging.Level = "ERROR"

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	router := NewRouter(database, nil, nil, cfg)
	engine := gin.New()
	router.SetupRoutes(engine)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	req.RemoteAddr = nextIP() + ":51000"
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func signIn(t *testing.T, engine *gin.Engine) sessionResponse {
	t.Helper()
	w := doRequest(t, engine, http.MethodPost, "/api/auth/anonymous", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Anonymous sign-in failed with %d: %s", w.Code, w.Body.String())
	}
	var session sessionResponse
	decode(t, w, &session)
	return session
}

func TestAPIRequiresAuth(t *testing.T) {
	engine := newTestRouter(t, "api_requires_auth")

	w := doRequest(t, engine, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	w = doRequest(t, engine, http.MethodGet, "/api/posts", "bogus-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a bogus token, got %d", w.Code)
	}
}

func TestAPIRelayFlow(t *testing.T) {
	engine := newTestRouter(t, "api_relay_flow")

	alice := signIn(t, engine)
	bob := signIn(t, engine)

	// Alice posts thanks.
	w := doRequest(t, engine, http.MethodPost, "/api/posts", alice.Token, gin.H{
		"text": "Thanks for the help moving",
		"tags": []string{"kindness"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateThanks failed with %d: %s", w.Code, w.Body.String())
	}
	var root models.Post
	decode(t, w, &root)
	if root.Type != models.PostTypeThanks || root.AuthorID != alice.User.UID {
		t.Errorf("Unexpected root post: %+v", root)
	}

	// Bob relays it with a next action.
	w = doRequest(t, engine, http.MethodPost, "/api/posts/"+root.ID+"/actions", bob.Token, gin.H{
		"text": "Helped my neighbor with their boxes",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateAction failed with %d: %s", w.Code, w.Body.String())
	}
	var action models.Post
	decode(t, w, &action)
	if action.Depth != 1 {
		t.Errorf("Expected depth 1, got %d", action.Depth)
	}

	// The chain lists root first.
	w = doRequest(t, engine, http.MethodGet, "/api/posts/"+action.ID+"/chain", bob.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Chain failed with %d: %s", w.Code, w.Body.String())
	}
	var chain []models.Post
	decode(t, w, &chain)
	if len(chain) != 2 || chain[0].ID != root.ID || chain[1].ID != action.ID {
		t.Errorf("Unexpected chain: %d entries", len(chain))
	}

	// Bob likes the root post.
	w = doRequest(t, engine, http.MethodPost, "/api/posts/"+root.ID+"/like", bob.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Like failed with %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, engine, http.MethodGet, "/api/posts/"+root.ID, bob.Token, nil)
	var liked models.Post
	decode(t, w, &liked)
	if liked.LikeCount != 1 {
		t.Errorf("Expected likeCount 1, got %d", liked.LikeCount)
	}
	if got := reloadViaAPI(t, engine, bob.Token, root.ID).ActionCount; got != 1 {
		t.Errorf("Expected actionCount 1, got %d", got)
	}

	// Bob saves the root as a task; a second save conflicts.
	w = doRequest(t, engine, http.MethodPost, "/api/posts/"+root.ID+"/task", bob.Token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Save task failed with %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, engine, http.MethodPost, "/api/posts/"+root.ID+"/task", bob.Token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate save, got %d", w.Code)
	}

	// Ranking includes the relayed post; a bad period is rejected.
	w = doRequest(t, engine, http.MethodGet, "/api/ranking?period=daily", bob.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Ranking failed with %d: %s", w.Code, w.Body.String())
	}
	var ranked []models.Post
	decode(t, w, &ranked)
	if len(ranked) != 1 || ranked[0].ID != root.ID {
		t.Errorf("Unexpected ranking: %d entries", len(ranked))
	}
	w = doRequest(t, engine, http.MethodGet, "/api/ranking?period=yearly", bob.Token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad period, got %d", w.Code)
	}

	// Bob's profile shows the relay he gave; alice received it.
	var stats struct {
		RelaysGiven    int64 `json:"relaysGiven"`
		RelaysReceived int64 `json:"relaysReceived"`
	}
	w = doRequest(t, engine, http.MethodGet, "/api/me/stats", bob.Token, nil)
	decode(t, w, &stats)
	if stats.RelaysGiven != 1 || stats.RelaysReceived != 0 {
		t.Errorf("Unexpected bob stats: %+v", stats)
	}
	w = doRequest(t, engine, http.MethodGet, "/api/me/stats", alice.Token, nil)
	decode(t, w, &stats)
	if stats.RelaysGiven != 0 || stats.RelaysReceived != 1 {
		t.Errorf("Unexpected alice stats: %+v", stats)
	}
}

func reloadViaAPI(t *testing.T, engine *gin.Engine, token, id string) *models.Post {
	t.Helper()
	w := doRequest(t, engine, http.MethodGet, "/api/posts/"+id, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Get post failed with %d: %s", w.Code, w.Body.String())
	}
	var post models.Post
	decode(t, w, &post)
	return &post
}

func TestAPIDeleteOnlyByAuthor(t *testing.T) {
	engine := newTestRouter(t, "api_delete_author")

	alice := signIn(t, engine)
	bob := signIn(t, engine)

	w := doRequest(t, engine, http.MethodPost, "/api/posts", alice.Token, gin.H{"text": "mine"})
	if w.Code != http.StatusCreated {
		t.Fatalf("CreateThanks failed with %d: %s", w.Code, w.Body.String())
	}
	var post models.Post
	decode(t, w, &post)

	w = doRequest(t, engine, http.MethodDelete, "/api/posts/"+post.ID, bob.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a non-author delete, got %d", w.Code)
	}

	w = doRequest(t, engine, http.MethodDelete, "/api/posts/"+post.ID, alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected the author delete to pass, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAPIHideFlow(t *testing.T) {
	engine := newTestRouter(t, "api_hide_flow")

	alice := signIn(t, engine)
	bob := signIn(t, engine)

	w := doRequest(t, engine, http.MethodPost, "/api/posts", alice.Token, gin.H{
		"text": "noisy post",
		"tags": []string{"noise"},
	})
	var post models.Post
	decode(t, w, &post)

	w = doRequest(t, engine, http.MethodPut, "/api/posts/"+post.ID+"/hide", bob.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Hide failed with %d: %s", w.Code, w.Body.String())
	}

	var ids []string
	w = doRequest(t, engine, http.MethodGet, "/api/hidden/ids", bob.Token, nil)
	decode(t, w, &ids)
	if len(ids) != 1 || ids[0] != post.ID {
		t.Errorf("Expected [%s], got %v", post.ID, ids)
	}

	// Hiding your own posts in bulk is rejected.
	w = doRequest(t, engine, http.MethodPost, "/api/hidden/by-author", alice.Token, gin.H{
		"authorId": alice.User.UID,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for hiding own posts, got %d", w.Code)
	}

	w = doRequest(t, engine, http.MethodDelete, "/api/posts/"+post.ID+"/hide", bob.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Unhide failed with %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(t, engine, http.MethodGet, "/api/hidden/ids", bob.Token, nil)
	ids = nil
	decode(t, w, &ids)
	if len(ids) != 0 {
		t.Errorf("Expected no hidden ids after unhide, got %v", ids)
	}
}

func TestAPIPostRateLimit(t *testing.T) {
	engine := newTestRouter(t, "api_rate_limit")
	alice := signIn(t, engine)

	// Two rapid posts from the same IP; burst is one.
	body := gin.H{"text": "rapid fire"}
	b, _ := json.Marshal(body)

	first := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(b))
	first.RemoteAddr = "10.99.0.1:51000"
	first.Header.Set("Content-Type", "application/json")
	first.Header.Set("Authorization", "Bearer "+alice.Token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, first)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected first post to pass, got %d: %s", w.Code, w.Body.String())
	}

	second := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(b))
	second.RemoteAddr = "10.99.0.1:51000"
	second.Header.Set("Content-Type", "application/json")
	second.Header.Set("Authorization", "Bearer "+alice.Token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, second)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 for the second rapid post, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestRouter(t, "api_health")

	w := doRequest(t, engine, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "OK" {
		t.Errorf("Expected OK status, got %q", body["status"])
	}
}
