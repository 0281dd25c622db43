// Package http exposes the challenge engine as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/cache"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/services"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"
)

type Server struct {
	http.Server
	service    *services.ChallengeService
	auth       store.AuthStore
	sessionTTL time.Duration

	rateLimiter *rateLimiter
	now         func() time.Time

	// Overviews are cheap to rebuild but read on every dashboard poll;
	// entries are invalidated on any mutation for their user and keyed by
	// calendar day so phase and current-day never survive midnight.
	overviewCache *cache.LRU[core.Overview]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.ChallengeService, auth store.AuthStore, sessionTTL time.Duration, requestsPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:          svc,
		auth:             auth,
		sessionTTL:       sessionTTL,
		rateLimiter:      newRateLimiter(requestsPerMinute),
		now:              time.Now,
		overviewCache:    cache.New[core.Overview](1000, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /auth/register", s.withSecurity(s.handleRegister))
	mux.HandleFunc("POST /auth/login", s.withSecurity(s.handleLogin))
	mux.HandleFunc("POST /auth/logout", s.withSecurity(s.requireAuth(s.handleLogout)))

	mux.HandleFunc("GET /api/v1/challenge", s.withSecurity(s.requireAuth(s.handleOverview)))
	mux.HandleFunc("POST /api/v1/challenge", s.withSecurity(s.requireAuth(s.handleSelectChallenge)))
	mux.HandleFunc("POST /api/v1/challenge/setup", s.withSecurity(s.requireAuth(s.handleCompleteSetup)))
	mux.HandleFunc("DELETE /api/v1/challenge", s.withSecurity(s.requireAuth(s.handleResetChallenge)))

	mux.HandleFunc("GET /api/v1/transactions", s.withSecurity(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/v1/transactions/income", s.withSecurity(s.requireAuth(s.handleRecordIncome)))
	mux.HandleFunc("POST /api/v1/transactions/expense", s.withSecurity(s.requireAuth(s.handleRecordExpense)))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.withSecurity(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/v1/statistics", s.withSecurity(s.requireAuth(s.handleStatistics)))

	return s
}

func (s *Server) overviewKey(userKey string) string {
	return userKey + "|" + core.DateOf(s.now()).String()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.overviewCache.CleanExpired(); removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines before shutting the listener down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurity adds security headers, rate limiting and request logging.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// Mutations are rate limited per client IP.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Code:    "rate_limited",
				Message: "rate limit exceeded, try again later",
			})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// authedHandler receives the user key resolved from the bearer token.
type authedHandler func(w http.ResponseWriter, r *http.Request, userKey string)

func (s *Server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Code:    "unauthorized",
				Message: "missing bearer token",
			})
			return
		}

		userKey, err := s.auth.ResolveToken(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		next(w, r, userKey)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if c, err := r.Cookie("session_token"); err == nil {
		return c.Value
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
