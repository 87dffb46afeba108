package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/config"
)

func setupCSRFRouter(t *testing.T, service *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false, service))
	router.GET("/resource", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": CSRFToken(c)})
	})
	router.POST("/resource", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCSRFAllowsSafeMethods(t *testing.T) {
	router := setupCSRFRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"token"`) {
		t.Errorf("body = %s, want a CSRF token for the client to echo", w.Body.String())
	}
}

func TestCSRFBlocksPOSTWithoutToken(t *testing.T) {
	router := setupCSRFRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/resource", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("body = %s, want success:false", w.Body.String())
	}
}

func TestCSRFSkipsBearerRequests(t *testing.T) {
	// Without a service the header shape alone is trusted.
	router := setupCSRFRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCSRFValidatesBearerWhenServiceGiven(t *testing.T) {
	svc := newTestService(t, config.Auth{})
	router := setupCSRFRouter(t, svc)

	// A made-up token no longer bypasses the check.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCSRFTokenDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if got := CSRFToken(c); got != "" {
		t.Errorf("CSRFToken() = %q, want empty", got)
	}
}
