package auth

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/config"
)

// AuthController serves login, logout and identity endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	throttle       *loginThrottle
	audit          *audit.Service
}

// NewAuthController creates the controller. The audit service is
// optional; when nil, login attempts are not recorded.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, auditService *audit.Service) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		throttle:       newLoginThrottle(cfg.MaxLoginAttempts, cfg.RateLimitWindow, cfg.LockoutDuration),
		audit:          auditService,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.GET("/api/auth/me", ac.Me)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a username/password pair and establishes a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "username and password are required"})
		return
	}

	clientIP := c.ClientIP()

	if retryAfter, throttled := ac.throttle.check(clientIP, req.Username); throttled {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many login attempts"})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.throttle.fail(clientIP, req.Username)
		if ac.audit != nil {
			ac.audit.LogAuth(0, "login", clientIP, c.Request.UserAgent(), false)
		}

		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "account is locked"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid username or password"})
		return
	}

	ac.throttle.reset(clientIP, req.Username)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create session"})
			return
		}
	}

	if ac.audit != nil {
		ac.audit.LogAuth(user.ID, "login", clientIP, c.Request.UserAgent(), true)
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Logout destroys the current session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	if ac.audit != nil && userID != 0 {
		ac.audit.LogAuth(userID, "logout", c.ClientIP(), c.Request.UserAgent(), true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's identity.
func (ac *AuthController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       userID,
		"username": GetUsername(c),
		"role":     GetUserRole(c),
	})
}

// APITokenController manages per-user API tokens.
type APITokenController struct {
	service *Service
}

func NewAPITokenController(service *Service) *APITokenController {
	return &APITokenController{service: service}
}

// GenerateToken creates a new API token for the authenticated user.
func (tc *APITokenController) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
		return
	}

	token, err := tc.service.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

// RevokeToken revokes the API token for the authenticated user.
func (tc *APITokenController) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
		return
	}

	if err := tc.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// loginThrottle limits login attempts per client IP and username pair
// within a sliding window. Stale entries are pruned on access, there is
// no background goroutine to manage.
type loginThrottle struct {
	mu          sync.Mutex
	attempts    map[string]*loginAttempts
	maxAttempts int
	window      time.Duration
	lockout     time.Duration
	lastPrune   time.Time
}

type loginAttempts struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

func newLoginThrottle(maxAttempts int, window, lockout time.Duration) *loginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	if lockout <= 0 {
		lockout = 30 * time.Minute
	}
	return &loginThrottle{
		attempts:    make(map[string]*loginAttempts),
		maxAttempts: maxAttempts,
		window:      window,
		lockout:     lockout,
		lastPrune:   time.Now(),
	}
}

// check reports whether the pair is currently throttled and for how
// much longer.
func (lt *loginThrottle) check(ip, username string) (time.Duration, bool) {
	now := time.Now()

	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.prune(now)

	rec, ok := lt.attempts[ip+":"+username]
	if !ok {
		return 0, false
	}
	if now.Before(rec.lockedUntil) {
		return rec.lockedUntil.Sub(now), true
	}
	if now.Sub(rec.windowStart) > lt.window {
		return 0, false
	}
	if rec.count >= lt.maxAttempts {
		return lt.lockout, true
	}
	return 0, false
}

// fail records a failed attempt, locking the pair out once the window
// fills up.
func (lt *loginThrottle) fail(ip, username string) {
	now := time.Now()

	lt.mu.Lock()
	defer lt.mu.Unlock()

	key := ip + ":" + username
	rec, ok := lt.attempts[key]
	if !ok || now.Sub(rec.windowStart) > lt.window {
		rec = &loginAttempts{windowStart: now}
		lt.attempts[key] = rec
	}

	rec.count++
	if rec.count >= lt.maxAttempts {
		rec.lockedUntil = now.Add(lt.lockout)
	}
}

// reset clears the record after a successful login.
func (lt *loginThrottle) reset(ip, username string) {
	lt.mu.Lock()
	delete(lt.attempts, ip+":"+username)
	lt.mu.Unlock()
}

// prune drops records whose window and lockout have both passed. Runs
// at most once per window. Caller holds the lock.
func (lt *loginThrottle) prune(now time.Time) {
	if now.Sub(lt.lastPrune) < lt.window {
		return
	}
	lt.lastPrune = now
	for key, rec := range lt.attempts {
		if now.Sub(rec.windowStart) > lt.window+lt.lockout && now.After(rec.lockedUntil) {
			delete(lt.attempts, key)
		}
	}
}
