package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"hisab/internal/core"
)

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRates(w, r)
	case http.MethodPut:
		s.upsertRate(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleRateByCurrency(w http.ResponseWriter, r *http.Request) {
	currency, action := pathID(r.URL.Path, "/api/settings/rates/")
	if currency == "" || action != "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}

	userID := requestUserID(r)
	if err := s.ledger.DeleteRate(r.Context(), userID, strings.ToUpper(currency)); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

type rateEntry struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
}

func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	table, err := s.ledger.RateTable(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]rateEntry, 0, len(table))
	for currency, rate := range table {
		entries = append(entries, rateEntry{Currency: currency, Rate: rate.String()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Currency < entries[j].Currency })
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) upsertRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	currency := strings.ToUpper(sanitizeInput(req.Currency))
	if currency == "" {
		writeError(w, r, badRequest("empty currency"))
		return
	}
	rate, err := core.ParseRate(req.Rate)
	if err != nil {
		writeError(w, r, badRequest("parse rate %q", req.Rate))
		return
	}

	userID := requestUserID(r)
	if err := s.ledger.UpsertRate(r.Context(), userID, currency, rate); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	slog.InfoContext(r.Context(), "Exchange rate updated via API", "currency", currency, "rate", rate.String())
	writeJSON(w, http.StatusOK, rateEntry{Currency: currency, Rate: rate.String()})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getDistribution(w, r)
	case http.MethodPut:
		s.upsertDistribution(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) getDistribution(w http.ResponseWriter, r *http.Request) {
	month, err := requestMonth(r)
	if err != nil {
		writeError(w, r, badRequest("parse month"))
		return
	}

	setting, err := s.ledger.DistributionSetting(r.Context(), requestUserID(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, distributionResponse{
		Month:          string(month),
		CompanyPercent: setting.CompanyPercent.String(),
		OwnerPercent:   setting.OwnerPercent().String(),
	})
}

func (s *Server) upsertDistribution(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	month, err := core.ParseMonthKey(req.Month)
	if err != nil {
		writeError(w, r, badRequest("parse month %q", req.Month))
		return
	}
	pct, err := core.ParsePercent(req.CompanyPercent)
	if err != nil {
		writeError(w, r, badRequest("parse company percent %q", req.CompanyPercent))
		return
	}

	setting := core.DistributionSetting{CompanyPercent: pct}
	userID := requestUserID(r)
	if err := s.ledger.UpsertDistributionSetting(r.Context(), userID, month, setting); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	slog.InfoContext(r.Context(), "Distribution setting updated via API",
		"month", string(month), "company_percent", pct.String())
	writeJSON(w, http.StatusOK, distributionResponse{
		Month:          string(month),
		CompanyPercent: setting.CompanyPercent.String(),
		OwnerPercent:   setting.OwnerPercent().String(),
	})
}
