package http

import (
	"log/slog"
	"net/http"
)

// handleDashboard serves the monthly summary. Responses are cached per
// user and month; any write through the API invalidates the user's
// cached months.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	month, err := requestMonth(r)
	if err != nil {
		writeError(w, r, badRequest("parse month"))
		return
	}

	userID := requestUserID(r)
	key := s.dashboardCacheKey(userID, month)
	if cached, ok := s.dashboardCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Dashboard served from cache", "month", string(month))
		writeJSON(w, http.StatusOK, toDashboardResponse(cached))
		return
	}

	dashboard, err := s.ledger.Dashboard(r.Context(), userID, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboardCache.Set(key, dashboard)
	writeJSON(w, http.StatusOK, toDashboardResponse(dashboard))
}
