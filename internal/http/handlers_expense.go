package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/expenses/")
	if id == "" || action != "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getExpense(w, r, id)
	case http.MethodPut:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]expenseResponse, 0, len(expenses))
	for _, ex := range expenses {
		resp = append(resp, toExpenseResponse(ex))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := req.toExpense()
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := requestUserID(r)
	created, err := s.ledger.CreateExpense(r.Context(), userID, expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	slog.InfoContext(r.Context(), "Expense created via API",
		"id", created.ID,
		"date", created.Date.String(),
		"converted_amount", created.ConvertedAmount.String())
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request, id string) {
	expense, err := s.ledger.GetExpense(r.Context(), requestUserID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id string) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	expense, err := req.toExpense()
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense.ID = id

	userID := requestUserID(r)
	if err := s.ledger.UpdateExpense(r.Context(), userID, expense); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	updated, err := s.ledger.GetExpense(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	userID := requestUserID(r)
	if err := s.ledger.DeleteExpense(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}
