package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listIncomes(w, r)
	case http.MethodPost:
		s.createIncome(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleIncomeByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/incomes/")
	if id == "" || action != "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getIncome(w, r, id)
	case http.MethodPut:
		s.updateIncome(w, r, id)
	case http.MethodDelete:
		s.deleteIncome(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.ledger.ListIncomes(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		resp = append(resp, toIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	income, err := req.toIncome()
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := requestUserID(r)
	created, err := s.ledger.CreateIncome(r.Context(), userID, income)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	slog.InfoContext(r.Context(), "Income created via API",
		"id", created.ID,
		"date", created.Date.String(),
		"converted_amount", created.ConvertedAmount.String())
	writeJSON(w, http.StatusCreated, toIncomeResponse(created))
}

func (s *Server) getIncome(w http.ResponseWriter, r *http.Request, id string) {
	income, err := s.ledger.GetIncome(r.Context(), requestUserID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}

func (s *Server) updateIncome(w http.ResponseWriter, r *http.Request, id string) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	income, err := req.toIncome()
	if err != nil {
		writeError(w, r, err)
		return
	}
	income.ID = id

	userID := requestUserID(r)
	if err := s.ledger.UpdateIncome(r.Context(), userID, income); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	updated, err := s.ledger.GetIncome(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(updated))
}

func (s *Server) deleteIncome(w http.ResponseWriter, r *http.Request, id string) {
	userID := requestUserID(r)
	if err := s.ledger.DeleteIncome(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}
