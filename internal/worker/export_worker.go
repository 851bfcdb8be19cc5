// Package worker exports ledger transactions to Google Sheets. It
// consumes AMQP events for near-real-time export and sweeps the
// database for anything the events missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/sheets"
	"hisab/internal/storage"
)

// ExportStore is the slice of the repository the worker needs.
// Satisfied by *storage.SQLiteRepository.
type ExportStore interface {
	GetIncome(ctx context.Context, userID, id string) (core.Income, error)
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	PendingExport(ctx context.Context, limit int) ([]storage.ExportRecord, error)
	MarkExported(ctx context.Context, entity, id string) error
}

type ExportWorker struct {
	store     ExportStore
	writer    sheets.LedgerWriter
	batchSize int
}

func NewExportWorker(store ExportStore, writer sheets.LedgerWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleEvent exports the transaction an event refers to. A record
// that no longer exists is skipped, not retried: it was deleted before
// the export ran.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	if event.Op == amqp.OpDeleted {
		// The sheet is an append-only log; deletions stay in the ledger
		// history only.
		slog.InfoContext(ctx, "Skipping deleted record", "entity", event.Entity, "id", event.ID)
		return nil
	}

	switch event.Entity {
	case amqp.EntityIncome:
		return w.exportIncome(ctx, event.UserID, event.ID)
	case amqp.EntityExpense:
		return w.exportExpense(ctx, event.UserID, event.ID)
	default:
		slog.WarnContext(ctx, "Unknown event entity", "entity", event.Entity, "id", event.ID)
		return nil
	}
}

// ProcessPending sweeps unexported transactions, oldest first. This is
// the catch-up path for events lost while the broker or worker was
// down.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	var failures int
	for _, rec := range pending {
		var err error
		switch rec.Entity {
		case amqp.EntityIncome:
			err = w.exportIncome(ctx, rec.UserID, rec.ID)
		case amqp.EntityExpense:
			err = w.exportExpense(ctx, rec.UserID, rec.ID)
		}
		if err != nil {
			failures++
			slog.ErrorContext(ctx, "Failed to export pending record",
				"entity", rec.Entity, "id", rec.ID, "error", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d pending exports failed", failures, len(pending))
	}
	return nil
}

// Run sweeps pending exports on the given interval until ctx is done.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Export worker stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export sweep failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) exportIncome(ctx context.Context, userID, id string) error {
	in, err := w.store.GetIncome(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Income deleted before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get income: %w", err)
	}

	if err := w.writer.AppendIncome(ctx, in); err != nil {
		return fmt.Errorf("append income to sheet: %w", err)
	}
	if err := w.store.MarkExported(ctx, amqp.EntityIncome, id); err != nil {
		return fmt.Errorf("mark income exported: %w", err)
	}

	slog.InfoContext(ctx, "Income exported", "id", id, "date", in.Date.String())
	return nil
}

func (w *ExportWorker) exportExpense(ctx context.Context, userID, id string) error {
	ex, err := w.store.GetExpense(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Expense deleted before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}

	if err := w.writer.AppendExpense(ctx, ex); err != nil {
		return fmt.Errorf("append expense to sheet: %w", err)
	}
	if err := w.store.MarkExported(ctx, amqp.EntityExpense, id); err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}

	slog.InfoContext(ctx, "Expense exported", "id", id, "date", ex.Date.String())
	return nil
}
