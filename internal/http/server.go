// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/cache"
	"hisab/internal/core"
	"hisab/internal/log"
)

// Ledger is the application surface the handlers drive. Satisfied by
// *services.LedgerService.
type Ledger interface {
	CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, userID, id string) (core.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	UpdateAccount(ctx context.Context, userID string, a core.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
	RecomputeAccountBalance(ctx context.Context, userID, id string) (core.Account, error)

	CreateIncome(ctx context.Context, userID string, in core.Income) (core.Income, error)
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	ListIncomes(ctx context.Context, userID string) ([]core.Income, error)
	UpdateIncome(ctx context.Context, userID string, in core.Income) error
	DeleteIncome(ctx context.Context, userID, id string) error

	CreateExpense(ctx context.Context, userID string, ex core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, userID string, ex core.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error

	RateTable(ctx context.Context, userID string) (core.RateTable, error)
	UpsertRate(ctx context.Context, userID, currency string, rate decimal.Decimal) error
	DeleteRate(ctx context.Context, userID, currency string) error

	DistributionSetting(ctx context.Context, userID string, month core.MonthKey) (core.DistributionSetting, error)
	UpsertDistributionSetting(ctx context.Context, userID string, month core.MonthKey, setting core.DistributionSetting) error

	Dashboard(ctx context.Context, userID string, month core.MonthKey) (core.DashboardSummary, error)
}

type Server struct {
	http.Server
	ledger      Ledger
	rateLimiter *rateLimiter
	metrics     *metrics

	// Dashboard responses are cached per user and month; any write for
	// a user bumps their version, orphaning old keys until eviction.
	dashboardCache *cache.LRUCache[core.DashboardSummary]
	versionMu      sync.Mutex
	versions       map[string]int64

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, ledger Ledger, rateLimitPerMinute int) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:           ledger,
		rateLimiter:      newRateLimiter(rateLimitPerMinute),
		metrics:          newMetrics(),
		dashboardCache:   cache.NewLRUCache[core.DashboardSummary](100, 5*time.Minute),
		versions:         make(map[string]int64),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.Handle("/metrics", s.metrics.handler())

	mux.HandleFunc("/api/accounts", s.withMiddleware("/api/accounts", s.handleAccounts))
	mux.HandleFunc("/api/accounts/", s.withMiddleware("/api/accounts/{id}", s.handleAccountByID))
	mux.HandleFunc("/api/incomes", s.withMiddleware("/api/incomes", s.handleIncomes))
	mux.HandleFunc("/api/incomes/", s.withMiddleware("/api/incomes/{id}", s.handleIncomeByID))
	mux.HandleFunc("/api/expenses", s.withMiddleware("/api/expenses", s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.withMiddleware("/api/expenses/{id}", s.handleExpenseByID))
	mux.HandleFunc("/api/settings/rates", s.withMiddleware("/api/settings/rates", s.handleRates))
	mux.HandleFunc("/api/settings/rates/", s.withMiddleware("/api/settings/rates/{currency}", s.handleRateByCurrency))
	mux.HandleFunc("/api/settings/distribution", s.withMiddleware("/api/settings/distribution", s.handleDistribution))
	mux.HandleFunc("/api/dashboard", s.withMiddleware("/api/dashboard", s.handleDashboard))

	return s
}

// withMiddleware adds security headers, rate limiting, request
// tracing, logging and metrics around a handler.
func (s *Server) withMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			s.metrics.rateLimited.Inc()
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.metrics.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		s.metrics.requestDuration.WithLabelValues(route).Observe(duration.Seconds())

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatus, rw.statusCode,
			log.FieldDuration, duration.Milliseconds())
	}
}

type requestIDKey struct{}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
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

// --- dashboard cache ---

func (s *Server) dashboardCacheKey(userID string, month core.MonthKey) string {
	s.versionMu.Lock()
	v := s.versions[userID]
	s.versionMu.Unlock()
	return fmt.Sprintf("%s|v%d|%s", userID, v, month)
}

// invalidateDashboards bumps the user's cache version so every cached
// month goes stale at once. Cheap compared to tracking which months an
// account or rate change touches.
func (s *Server) invalidateDashboards(userID string) {
	s.versionMu.Lock()
	s.versions[userID]++
	s.versionMu.Unlock()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.dashboardCache.CleanExpired(); removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and the HTTP server.
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

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
