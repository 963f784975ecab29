package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"blogcast-backend/internal/config"
	"blogcast-backend/internal/store"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *config.Config, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SecretKey:    "test-secret",
		JWTExpiresIn: time.Hour,
		BcryptCost:   4,
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	router := gin.New()
	SetupAuthRoutes(router, cfg, st)
	return router, cfg, st
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := postJSON(t, router, "/auth/register", gin.H{
		"username":        "alice",
		"password":        "supersecret1",
		"repeat_password": "supersecret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("unmarshal register: %v", err)
	}
	if reg.Token == "" || reg.User.Username != "alice" {
		t.Errorf("register response = %+v", reg)
	}

	w = postJSON(t, router, "/auth/login", gin.H{
		"username": "alice",
		"password": "supersecret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := postJSON(t, router, "/auth/register", gin.H{
		"username":        "alice",
		"password":        "supersecret1",
		"repeat_password": "different999",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	body := gin.H{
		"username":        "alice",
		"password":        "supersecret1",
		"repeat_password": "supersecret1",
	}
	if w := postJSON(t, router, "/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}

	w := postJSON(t, router, "/auth/register", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	postJSON(t, router, "/auth/register", gin.H{
		"username":        "alice",
		"password":        "supersecret1",
		"repeat_password": "supersecret1",
	})

	w := postJSON(t, router, "/auth/login", gin.H{
		"username": "alice",
		"password": "wrongpassword",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := postJSON(t, router, "/auth/login", gin.H{
		"username": "nobody",
		"password": "supersecret1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRefreshToken(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	w := postJSON(t, router, "/auth/register", gin.H{
		"username":        "alice",
		"password":        "supersecret1",
		"repeat_password": "supersecret1",
	})
	var reg struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &reg)

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	if w2.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", w2.Code, w2.Body.String())
	}

	var out struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w2.Body.Bytes(), &out)
	if out.Token == "" {
		t.Error("refresh returned no token")
	}
}

func TestRefreshWithoutToken(t *testing.T) {
	router, _, _ := newAuthRouter(t)

	req := httptest.NewRequest("POST", "/auth/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
