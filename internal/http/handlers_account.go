package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAccounts(w, r)
	case http.MethodPost:
		s.createAccount(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/accounts/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "missing account id"})
		return
	}

	if action == "recompute" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.recomputeAccount(w, r, id)
		return
	}
	if action != "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown action"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getAccount(w, r, id)
	case http.MethodPut:
		s.updateAccount(w, r, id)
	case http.MethodDelete:
		s.deleteAccount(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context(), requestUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := req.toAccount()
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := requestUserID(r)
	created, err := s.ledger.CreateAccount(r.Context(), userID, account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	slog.InfoContext(r.Context(), "Account created via API", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request, id string) {
	account, err := s.ledger.GetAccount(r.Context(), requestUserID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request, id string) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := req.toAccount()
	if err != nil {
		writeError(w, r, err)
		return
	}
	account.ID = id

	userID := requestUserID(r)
	if err := s.ledger.UpdateAccount(r.Context(), userID, account); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	updated, err := s.ledger.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request, id string) {
	userID := requestUserID(r)
	if err := s.ledger.DeleteAccount(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recomputeAccount(w http.ResponseWriter, r *http.Request, id string) {
	userID := requestUserID(r)
	account, err := s.ledger.RecomputeAccountBalance(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
