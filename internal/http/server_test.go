package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
	"hisab/internal/storage"
)

// stubLedger satisfies Ledger with overridable behavior per test.
type stubLedger struct {
	dashboardCalls int
	income         core.Income
	incomeErr      error
	dashboard      core.DashboardSummary
	account        core.Account
	accountErr     error
}

func (l *stubLedger) CreateAccount(_ context.Context, _ string, a core.Account) (core.Account, error) {
	if l.accountErr != nil {
		return core.Account{}, l.accountErr
	}
	a.ID = "acc-1"
	return a, nil
}
func (l *stubLedger) GetAccount(context.Context, string, string) (core.Account, error) {
	return l.account, l.accountErr
}
func (l *stubLedger) ListAccounts(context.Context, string) ([]core.Account, error) {
	return []core.Account{l.account}, nil
}
func (l *stubLedger) UpdateAccount(context.Context, string, core.Account) error { return l.accountErr }
func (l *stubLedger) DeleteAccount(context.Context, string, string) error       { return l.accountErr }
func (l *stubLedger) RecomputeAccountBalance(context.Context, string, string) (core.Account, error) {
	return l.account, l.accountErr
}

func (l *stubLedger) CreateIncome(_ context.Context, _ string, in core.Income) (core.Income, error) {
	if l.incomeErr != nil {
		return core.Income{}, l.incomeErr
	}
	in.ID = "inc-1"
	in.Currency = "USD"
	in.ConvertedAmount = decimal.RequireFromString("280000")
	return in, nil
}
func (l *stubLedger) GetIncome(context.Context, string, string) (core.Income, error) {
	return l.income, l.incomeErr
}
func (l *stubLedger) ListIncomes(context.Context, string) ([]core.Income, error) {
	return nil, nil
}
func (l *stubLedger) UpdateIncome(context.Context, string, core.Income) error { return l.incomeErr }
func (l *stubLedger) DeleteIncome(context.Context, string, string) error      { return l.incomeErr }

func (l *stubLedger) CreateExpense(_ context.Context, _ string, ex core.Expense) (core.Expense, error) {
	ex.ID = "exp-1"
	return ex, nil
}
func (l *stubLedger) GetExpense(context.Context, string, string) (core.Expense, error) {
	return core.Expense{}, storage.ErrNotFound
}
func (l *stubLedger) ListExpenses(context.Context, string) ([]core.Expense, error) { return nil, nil }
func (l *stubLedger) UpdateExpense(context.Context, string, core.Expense) error    { return nil }
func (l *stubLedger) DeleteExpense(context.Context, string, string) error          { return nil }

func (l *stubLedger) RateTable(context.Context, string) (core.RateTable, error) {
	return core.RateTable{
		core.BaseCurrency: decimal.NewFromInt(1),
		"USD":             decimal.RequireFromString("280"),
	}, nil
}
func (l *stubLedger) UpsertRate(context.Context, string, string, decimal.Decimal) error { return nil }
func (l *stubLedger) DeleteRate(context.Context, string, string) error {
	return storage.ErrBaseCurrencyFixed
}

func (l *stubLedger) DistributionSetting(context.Context, string, core.MonthKey) (core.DistributionSetting, error) {
	return core.DefaultDistribution(), nil
}
func (l *stubLedger) UpsertDistributionSetting(context.Context, string, core.MonthKey, core.DistributionSetting) error {
	return nil
}

func (l *stubLedger) Dashboard(_ context.Context, _ string, month core.MonthKey) (core.DashboardSummary, error) {
	l.dashboardCalls++
	d := l.dashboard
	d.Summary.Month = month
	return d, nil
}

func newTestServer(t *testing.T) (*Server, *stubLedger) {
	t.Helper()
	ledger := &stubLedger{}
	srv := NewServer(":0", ledger, 60)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, ledger
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(srv, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(srv, http.MethodGet, "/api/accounts", "")
	rec := doRequest(srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hisab_http_requests_total") {
		t.Error("metrics output missing hisab_http_requests_total")
	}
}

func TestCreateIncome(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"date":"2024-03-15","amount":"1000","account":"Wise USD","status":"received","description":"website build","clientName":"Acme"}`
	rec := doRequest(srv, http.MethodPost, "/api/incomes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/incomes status = %d, want 201; body: %s", rec.Code, rec.Body)
	}

	var resp incomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != "inc-1" {
		t.Errorf("id = %q, want inc-1", resp.ID)
	}
	if resp.ConvertedAmount != "280000" {
		t.Errorf("convertedAmount = %q, want 280000", resp.ConvertedAmount)
	}
}

func TestCreateIncomeBadPayloads(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid date", `{"date":"15-03-2024","amount":"1000","account":"a","status":"received","description":"x","clientName":"c"}`},
		{"invalid amount", `{"date":"2024-03-15","amount":"abc","account":"a","status":"received","description":"x","clientName":"c"}`},
		{"negative amount", `{"date":"2024-03-15","amount":"-5","account":"a","status":"received","description":"x","clientName":"c"}`},
		{"unknown field", `{"date":"2024-03-15","amount":"1000","bogus":true}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/api/incomes", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateIncomeValidationError(t *testing.T) {
	srv, ledger := newTestServer(t)
	ledger.incomeErr = &core.ValidationError{Field: "description", Err: core.ErrEmptyDescription}

	body := `{"date":"2024-03-15","amount":"1000","account":"Wise USD","status":"received","description":"x","clientName":"Acme"}`
	rec := doRequest(srv, http.MethodPost, "/api/incomes", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Field != "description" {
		t.Errorf("field = %q, want description", resp.Field)
	}
}

func TestCreateIncomeUnknownAccount(t *testing.T) {
	srv, ledger := newTestServer(t)
	ledger.incomeErr = &core.UnknownAccountError{Account: "Ghost"}

	body := `{"date":"2024-03-15","amount":"1000","account":"Ghost","status":"received","description":"x","clientName":"Acme"}`
	rec := doRequest(srv, http.MethodPost, "/api/incomes", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/expenses/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteBaseCurrencyRate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodDelete, "/api/settings/rates/PKR", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodDelete, "/api/dashboard", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Errorf("Allow header = %q, want GET", allow)
	}
}

func TestDashboardCaching(t *testing.T) {
	srv, ledger := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := doRequest(srv, http.MethodGet, "/api/dashboard?month=2024-03", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/dashboard status = %d, want 200", rec.Code)
		}
	}
	if ledger.dashboardCalls != 1 {
		t.Errorf("dashboard calls = %d, want 1 (cached afterwards)", ledger.dashboardCalls)
	}

	// Any write invalidates the user's cached dashboards.
	body := `{"date":"2024-03-20","amount":"100","account":"Cash","paymentStatus":"done","description":"hosting"}`
	if rec := doRequest(srv, http.MethodPost, "/api/expenses", body); rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/expenses status = %d, want 201; body: %s", rec.Code, rec.Body)
	}

	if rec := doRequest(srv, http.MethodGet, "/api/dashboard?month=2024-03", ""); rec.Code != http.StatusOK {
		t.Fatalf("GET /api/dashboard status = %d, want 200", rec.Code)
	}
	if ledger.dashboardCalls != 2 {
		t.Errorf("dashboard calls after write = %d, want 2", ledger.dashboardCalls)
	}
}

func TestDashboardInvalidMonth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/dashboard?month=March", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	ledger := &stubLedger{}
	srv := NewServer(":0", ledger, 2)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	body := `{"date":"2024-03-20","amount":"100","account":"Cash","paymentStatus":"done","description":"hosting"}`
	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third write status = %d, want 429", last)
	}
}

func TestRequestUserIDHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	if got := requestUserID(req); got != defaultUserID {
		t.Errorf("requestUserID() = %q, want %q", got, defaultUserID)
	}

	req.Header.Set(headerUserID, " roshaan ")
	if got := requestUserID(req); got != "roshaan" {
		t.Errorf("requestUserID() = %q, want roshaan", got)
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		path, prefix, id, action string
	}{
		{"/api/accounts/abc", "/api/accounts/", "abc", ""},
		{"/api/accounts/abc/recompute", "/api/accounts/", "abc", "recompute"},
		{"/api/accounts/", "/api/accounts/", "", ""},
	}
	for _, tt := range tests {
		id, action := pathID(tt.path, tt.prefix)
		if id != tt.id || action != tt.action {
			t.Errorf("pathID(%q) = %q, %q; want %q, %q", tt.path, id, action, tt.id, tt.action)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("sanitizeInput() = %q, want helloworld", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Errorf("sanitizeInput() should keep newlines, got %q", got)
	}
}
