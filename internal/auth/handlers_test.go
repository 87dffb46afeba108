package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/config"
	"github.com/mrlokans/linkshelf/internal/entities"
)

func setupLoginRouter(t *testing.T, cfg config.Auth) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg.Mode = config.AuthModeLocal
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	if cfg.SessionLifetime == 0 {
		cfg.SessionLifetime = time.Hour
	}

	db := setupTestDB(t)
	svc := NewService(db, cfg)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sessions, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	router := gin.New()
	router.Use(sessions.SessionLoadSave())
	router.Use(NewMiddleware(svc, sessions, cfg).Handler())
	NewAuthController(svc, sessions, cfg, nil).RegisterRoutes(router)

	return router, svc
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestLoginLogoutFlow(t *testing.T) {
	router, svc := setupLoginRouter(t, config.Auth{})

	if _, err := svc.CreateUser("alice", "alice@example.com", "password12345", entities.UserRoleEditor); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"password12345"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(t, w)

	// The cookie now identifies alice.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"username":"alice"`) {
		t.Errorf("me body = %s, want alice's identity", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}

	// The destroyed session no longer authenticates.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, svc := setupLoginRouter(t, config.Auth{})

	if _, err := svc.CreateUser("alice", "alice@example.com", "password12345", entities.UserRoleEditor); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"wrong-password"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("body = %s, want success:false", w.Body.String())
	}
}

func TestLoginMissingFields(t *testing.T) {
	router, _ := setupLoginRouter(t, config.Auth{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	router, svc := setupLoginRouter(t, config.Auth{MaxLoginAttempts: 3})

	if _, err := svc.CreateUser("alice", "alice@example.com", "password12345", entities.UserRoleEditor); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"alice","password":"wrong-password"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"password12345"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestLoginThrottleTracksUsernamesIndependently(t *testing.T) {
	lt := newLoginThrottle(2, time.Minute, time.Minute)

	lt.fail("1.2.3.4", "alice")
	lt.fail("1.2.3.4", "alice")

	if _, throttled := lt.check("1.2.3.4", "alice"); !throttled {
		t.Error("alice should be throttled after hitting the limit")
	}
	if _, throttled := lt.check("1.2.3.4", "bob"); throttled {
		t.Error("bob should not be throttled by alice's failures")
	}
	if _, throttled := lt.check("5.6.7.8", "alice"); throttled {
		t.Error("another IP should not be throttled")
	}

	lt.reset("1.2.3.4", "alice")
	if _, throttled := lt.check("1.2.3.4", "alice"); throttled {
		t.Error("reset should clear the throttle")
	}
}

func TestTokenEndpoints(t *testing.T) {
	router, svc := setupLoginRouter(t, config.Auth{})

	tokens := NewAPITokenController(svc)
	router.POST("/api/auth/token", tokens.GenerateToken)
	router.DELETE("/api/auth/token", tokens.RevokeToken)

	user, err := svc.CreateUser("alice", "alice@example.com", "password12345", entities.UserRoleEditor)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	bearer, err := svc.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Rotate the token over the API.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"token"`) {
		t.Errorf("generate body = %s, want a token", w.Body.String())
	}

	// The old token died with the rotation.
	if _, err := svc.ValidateToken(bearer); err == nil {
		t.Error("rotated-out token still validates")
	}
}
