package repository

import (
	"context"
	"database/sql"

	"github.com/cinetick/cinema-booking/internal/model"
)

// SummaryRepo persists the daily settlement aggregates, one row per
// (report date, payment method).  Re-running a report for the same day
// replaces that day's rows instead of duplicating them.
type SummaryRepo struct {
	db *sql.DB
}

// NewSummaryRepo returns a new SummaryRepo bound to the database.
func NewSummaryRepo(db *sql.DB) *SummaryRepo { return &SummaryRepo{db: db} }

// Upsert writes one summary row, overwriting a previous run's row for
// the same date and method.
func (r *SummaryRepo) Upsert(ctx context.Context, s model.DailyTransactionSummary) error {
	const q = `INSERT INTO daily_transaction_summary
	           (report_date, payment_method_id, total_orders, total_success, total_failed, total_amount)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	           total_orders = VALUES(total_orders), total_success = VALUES(total_success),
	           total_failed = VALUES(total_failed), total_amount = VALUES(total_amount)`
	_, err := r.db.ExecContext(ctx, q,
		s.ReportDate, uint64(s.Method), s.TotalOrders, s.TotalSuccess, s.TotalFailed, s.TotalAmount)
	return err
}
