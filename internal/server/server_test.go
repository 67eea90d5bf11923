package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/notevault/internal/config"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/logger"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:          "test",
		AllowedOrigins:  []string{"http://localhost:3000"},
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		MaxUploadMB:     1,
		RateLimitUpload: time.Second,
		StatsCacheTTL:   time.Minute,
	}
	srv, err := NewServer(cfg, Deps{
		DB:     testutil.DB(t),
		Blobs:  testutil.NewBlobs(),
		Logger: logger.Nop(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler()
}

func doJSON(h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	if w := doJSON(h, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: got=%d", w.Code)
	}
}

func TestRegisterLoginAndGuards(t *testing.T) {
	h := newTestServer(t)

	w := doJSON(h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":      "ada@example.com",
		"username":   "ada",
		"password":   "secret1",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: got=%d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(h, http.MethodPost, "/api/auth/login", "", map[string]string{"login": "ada", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: got=%d body=%s", w.Code, w.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
		SearchToken string `json:"search_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.AccessToken == "" {
		t.Fatalf("login body: %s", w.Body.String())
	}
	if login.SearchToken != "" {
		t.Fatalf("search token issued without a search backend: %q", login.SearchToken)
	}

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public notes", http.MethodGet, "/api/notes", "", http.StatusOK},
		{"public subjects", http.MethodGet, "/api/subjects", "", http.StatusOK},
		{"profile anonymous", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"profile", http.MethodGet, "/api/profile", login.AccessToken, http.StatusOK},
		{"bookmarks", http.MethodGet, "/api/bookmarks", login.AccessToken, http.StatusOK},
		{"unread count", http.MethodGet, "/api/notifications/unread-count", login.AccessToken, http.StatusOK},
		{"websocket without redis", http.MethodGet, "/api/notifications/ws", login.AccessToken, http.StatusServiceUnavailable},
		{"admin as student", http.MethodGet, "/api/admin/dashboard-stats", login.AccessToken, http.StatusForbidden},
	}
	for _, tc := range cases {
		if w := doJSON(h, tc.method, tc.path, tc.token, nil); w.Code != tc.want {
			t.Fatalf("%s: got=%d want=%d body=%s", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
}
