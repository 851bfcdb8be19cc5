// Package sheets mirrors ledger transactions into a Google
// spreadsheet the owners use for bookkeeping review.
package sheets

import (
	"context"

	"hisab/internal/core"
)

// LedgerWriter appends transaction rows to the external sheet.
type LedgerWriter interface {
	AppendIncome(ctx context.Context, in core.Income) error
	AppendExpense(ctx context.Context, ex core.Expense) error
}
