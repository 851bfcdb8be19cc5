package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
)

// Amounts travel as strings on the wire so clients never round them.

type accountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Balance  string `json:"balance,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (req accountRequest) toAccount() (core.Account, error) {
	a := core.Account{
		Name:     sanitizeInput(req.Name),
		Currency: strings.ToUpper(sanitizeInput(req.Currency)),
		Notes:    sanitizeInput(req.Notes),
	}
	if req.Balance != "" {
		balance, err := parseSignedDecimal(req.Balance)
		if err != nil {
			return core.Account{}, badRequest("parse balance %q", req.Balance)
		}
		a.Balance = balance
	}
	return a, nil
}

type accountResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	Balance          string    `json:"balance"`
	ConvertedBalance string    `json:"convertedBalance"`
	Notes            string    `json:"notes,omitempty"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Currency:         a.Currency,
		Balance:          a.Balance.String(),
		ConvertedBalance: a.ConvertedBalance.String(),
		Notes:            a.Notes,
		LastUpdated:      a.LastUpdated,
	}
}

type incomeRequest struct {
	Date                  string `json:"date"`
	Amount                string `json:"amount"`
	Account               string `json:"account"`
	Status                string `json:"status"`
	ReceivedAmount        string `json:"receivedAmount,omitempty"`
	Category              string `json:"category,omitempty"`
	Description           string `json:"description"`
	ClientName            string `json:"clientName"`
	Notes                 string `json:"notes,omitempty"`
	DueDate               string `json:"dueDate,omitempty"`
	ManualRate            string `json:"manualRate,omitempty"`
	ManualConvertedAmount string `json:"manualConvertedAmount,omitempty"`
}

func (req incomeRequest) toIncome() (core.Income, error) {
	in := core.Income{
		Status:      core.IncomeStatus(strings.ToLower(sanitizeInput(req.Status))),
		Account:     sanitizeInput(req.Account),
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		ClientName:  sanitizeInput(req.ClientName),
		Notes:       sanitizeInput(req.Notes),
	}

	var err error
	if in.Date, err = core.ParseDate(req.Date); err != nil {
		return core.Income{}, badRequest("parse date %q", req.Date)
	}
	if in.OriginalAmount, err = core.ParseAmount(req.Amount); err != nil {
		return core.Income{}, badRequest("parse amount %q", req.Amount)
	}
	if req.ReceivedAmount != "" {
		if in.ReceivedAmount, err = core.ParseAmount(req.ReceivedAmount); err != nil {
			return core.Income{}, badRequest("parse received amount %q", req.ReceivedAmount)
		}
	}
	if req.DueDate != "" {
		if in.DueDate, err = core.ParseDate(req.DueDate); err != nil {
			return core.Income{}, badRequest("parse due date %q", req.DueDate)
		}
	}
	if in.ManualRate, err = optionalRate(req.ManualRate); err != nil {
		return core.Income{}, badRequest("parse manual rate %q", req.ManualRate)
	}
	if in.ManualConvertedAmount, err = optionalAmount(req.ManualConvertedAmount); err != nil {
		return core.Income{}, badRequest("parse manual converted amount %q", req.ManualConvertedAmount)
	}
	return in, nil
}

type incomeResponse struct {
	ID                      string `json:"id"`
	Date                    string `json:"date"`
	OriginalAmount          string `json:"originalAmount"`
	Currency                string `json:"currency"`
	ReceivedAmount          string `json:"receivedAmount"`
	Status                  string `json:"status"`
	Account                 string `json:"account"`
	Category                string `json:"category,omitempty"`
	Description             string `json:"description"`
	ClientName              string `json:"clientName"`
	Notes                   string `json:"notes,omitempty"`
	DueDate                 string `json:"dueDate,omitempty"`
	ManualRate              string `json:"manualRate,omitempty"`
	ManualConvertedAmount   string `json:"manualConvertedAmount,omitempty"`
	ConvertedAmount         string `json:"convertedAmount"`
	OriginalConvertedAmount string `json:"originalConvertedAmount"`
	SplitRateUsed           string `json:"splitRateUsed"`
	Outstanding             string `json:"outstanding,omitempty"`
	MissingRate             bool   `json:"missingRate"`
}

func toIncomeResponse(in core.Income) incomeResponse {
	resp := incomeResponse{
		ID:                      in.ID,
		Date:                    in.Date.String(),
		OriginalAmount:          in.OriginalAmount.String(),
		Currency:                in.Currency,
		ReceivedAmount:          in.ReceivedAmount.String(),
		Status:                  string(in.Status),
		Account:                 in.Account,
		Category:                in.Category,
		Description:             in.Description,
		ClientName:              in.ClientName,
		Notes:                   in.Notes,
		ConvertedAmount:         in.ConvertedAmount.String(),
		OriginalConvertedAmount: in.OriginalConvertedAmount.String(),
		SplitRateUsed:           in.SplitRateUsed.String(),
		MissingRate:             in.MissingRate,
	}
	if !in.DueDate.IsZero() {
		resp.DueDate = in.DueDate.String()
	}
	if in.ManualRate != nil {
		resp.ManualRate = in.ManualRate.String()
	}
	if in.ManualConvertedAmount != nil {
		resp.ManualConvertedAmount = in.ManualConvertedAmount.String()
	}
	if in.Status == core.StatusPartial {
		resp.Outstanding = in.Outstanding().String()
	}
	return resp
}

type expenseRequest struct {
	Date                  string `json:"date"`
	Amount                string `json:"amount"`
	Account               string `json:"account"`
	Category              string `json:"category,omitempty"`
	Description           string `json:"description"`
	PaymentStatus         string `json:"paymentStatus"`
	Notes                 string `json:"notes,omitempty"`
	DueDate               string `json:"dueDate,omitempty"`
	ManualRate            string `json:"manualRate,omitempty"`
	ManualConvertedAmount string `json:"manualConvertedAmount,omitempty"`
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	ex := core.Expense{
		PaymentStatus: core.PaymentStatus(strings.ToLower(sanitizeInput(req.PaymentStatus))),
		Account:       sanitizeInput(req.Account),
		Category:      sanitizeInput(req.Category),
		Description:   sanitizeInput(req.Description),
		Notes:         sanitizeInput(req.Notes),
	}

	var err error
	if ex.Date, err = core.ParseDate(req.Date); err != nil {
		return core.Expense{}, badRequest("parse date %q", req.Date)
	}
	if ex.Amount, err = core.ParseAmount(req.Amount); err != nil {
		return core.Expense{}, badRequest("parse amount %q", req.Amount)
	}
	if req.DueDate != "" {
		if ex.DueDate, err = core.ParseDate(req.DueDate); err != nil {
			return core.Expense{}, badRequest("parse due date %q", req.DueDate)
		}
	}
	if ex.ManualRate, err = optionalRate(req.ManualRate); err != nil {
		return core.Expense{}, badRequest("parse manual rate %q", req.ManualRate)
	}
	if ex.ManualConvertedAmount, err = optionalAmount(req.ManualConvertedAmount); err != nil {
		return core.Expense{}, badRequest("parse manual converted amount %q", req.ManualConvertedAmount)
	}
	return ex, nil
}

type expenseResponse struct {
	ID                    string `json:"id"`
	Date                  string `json:"date"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	Category              string `json:"category,omitempty"`
	Description           string `json:"description"`
	PaymentStatus         string `json:"paymentStatus"`
	Account               string `json:"account"`
	Notes                 string `json:"notes,omitempty"`
	DueDate               string `json:"dueDate,omitempty"`
	ManualRate            string `json:"manualRate,omitempty"`
	ManualConvertedAmount string `json:"manualConvertedAmount,omitempty"`
	ConvertedAmount       string `json:"convertedAmount"`
	RateUsed              string `json:"rateUsed"`
	MissingRate           bool   `json:"missingRate"`
}

func toExpenseResponse(ex core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:              ex.ID,
		Date:            ex.Date.String(),
		Amount:          ex.Amount.String(),
		Currency:        ex.Currency,
		Category:        ex.Category,
		Description:     ex.Description,
		PaymentStatus:   string(ex.PaymentStatus),
		Account:         ex.Account,
		Notes:           ex.Notes,
		ConvertedAmount: ex.ConvertedAmount.String(),
		RateUsed:        ex.RateUsed.String(),
		MissingRate:     ex.MissingRate,
	}
	if !ex.DueDate.IsZero() {
		resp.DueDate = ex.DueDate.String()
	}
	if ex.ManualRate != nil {
		resp.ManualRate = ex.ManualRate.String()
	}
	if ex.ManualConvertedAmount != nil {
		resp.ManualConvertedAmount = ex.ManualConvertedAmount.String()
	}
	return resp
}

type rateRequest struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
}

type distributionRequest struct {
	Month          string `json:"month"`
	CompanyPercent string `json:"companyPercent"`
}

type distributionResponse struct {
	Month          string `json:"month"`
	CompanyPercent string `json:"companyPercent"`
	OwnerPercent   string `json:"ownerPercent"`
}

type transactionResponse struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Account     string `json:"account"`
	Category    string `json:"category,omitempty"`
	Amount      string `json:"amount"`
}

type summaryResponse struct {
	Month                   string `json:"month"`
	TotalIncome             string `json:"totalIncome"`
	ExpectedIncome          string `json:"expectedIncome"`
	CancelledIncome         string `json:"cancelledIncome"`
	TotalExpenses           string `json:"totalExpenses"`
	PendingPayments         string `json:"pendingPayments"`
	NetBalance              string `json:"netBalance"`
	NetBalanceDisplay       string `json:"netBalanceDisplay"`
	CompanyShare            string `json:"companyShare"`
	RoshaanShare            string `json:"roshaanShare"`
	ShahbazShare            string `json:"shahbazShare"`
	RemainingCompanyBalance string `json:"remainingCompanyBalance"`
	TotalBalance            string `json:"totalBalance"`
}

type dashboardResponse struct {
	Summary            summaryResponse       `json:"summary"`
	Accounts           []accountResponse     `json:"accounts"`
	RecentTransactions []transactionResponse `json:"recentTransactions"`
	UpcomingIncome     []incomeResponse      `json:"upcomingIncome"`
	PartialPayments    []incomeResponse      `json:"partialPayments"`
	PendingExpenses    []expenseResponse     `json:"pendingExpenses"`
}

func toDashboardResponse(d core.DashboardSummary) dashboardResponse {
	resp := dashboardResponse{
		Summary: summaryResponse{
			Month:                   string(d.Summary.Month),
			TotalIncome:             d.Summary.Totals.TotalIncome.String(),
			ExpectedIncome:          d.Summary.Totals.ExpectedIncome.String(),
			CancelledIncome:         d.Summary.Totals.CancelledIncome.String(),
			TotalExpenses:           d.Summary.Totals.TotalExpenses.String(),
			PendingPayments:         d.Summary.Totals.PendingPayments.String(),
			NetBalance:              d.Summary.NetBalance.String(),
			NetBalanceDisplay:       core.FormatPKR(d.Summary.NetBalance),
			CompanyShare:            d.Summary.Shares.CompanyShare.String(),
			RoshaanShare:            d.Summary.Shares.RoshaanShare.String(),
			ShahbazShare:            d.Summary.Shares.ShahbazShare.String(),
			RemainingCompanyBalance: d.Summary.Shares.RemainingCompanyBalance.String(),
			TotalBalance:            d.Summary.TotalBalance.String(),
		},
		Accounts:           make([]accountResponse, 0, len(d.Accounts)),
		RecentTransactions: make([]transactionResponse, 0, len(d.RecentTransactions)),
		UpcomingIncome:     make([]incomeResponse, 0, len(d.UpcomingIncome)),
		PartialPayments:    make([]incomeResponse, 0, len(d.PartialPayments)),
		PendingExpenses:    make([]expenseResponse, 0, len(d.PendingExpenses)),
	}

	for _, a := range d.Accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	for _, tx := range d.RecentTransactions {
		resp.RecentTransactions = append(resp.RecentTransactions, transactionResponse{
			Kind:        string(tx.Kind),
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Description: tx.Description,
			Account:     tx.Account,
			Category:    tx.Category,
			Amount:      tx.Amount.String(),
		})
	}
	for _, in := range d.UpcomingIncome {
		resp.UpcomingIncome = append(resp.UpcomingIncome, toIncomeResponse(in))
	}
	for _, in := range d.PartialPayments {
		resp.PartialPayments = append(resp.PartialPayments, toIncomeResponse(in))
	}
	for _, ex := range d.PendingExpenses {
		resp.PendingExpenses = append(resp.PendingExpenses, toExpenseResponse(ex))
	}
	return resp
}

func optionalRate(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := core.ParseRate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseSignedDecimal accepts comma or dot separators and any sign;
// account balances are manual edits and may legitimately be negative.
func parseSignedDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
