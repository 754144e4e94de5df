package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
)

// TransactionRepo persists payment attempts.  Every gateway return and
// webhook resolves its transaction through GetByCode, and the guarded
// status update is what makes duplicate callbacks no-ops.
type TransactionRepo struct {
	db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// CreateTx inserts the transaction row and populates its ID.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	t.TransactionDate = time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (order_id, transaction_code, prices, status, payment_method_id, transaction_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.OrderID, t.TransactionCode, t.Price, string(t.Status), uint64(t.Method), t.TransactionDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByCode loads a transaction by the provider's reference code.
// Unknown codes map to ErrNotFound; a malformed callback must change
// nothing.
func (r *TransactionRepo) GetByCode(ctx context.Context, code string) (*model.Transaction, error) {
	const q = `SELECT id, order_id, transaction_code, prices, status, payment_method_id, transaction_date
	           FROM transactions WHERE transaction_code = ?`
	var t model.Transaction
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&t.ID, &t.OrderID, &t.TransactionCode, &t.Price, &t.Status, &t.Method, &t.TransactionDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatusTx moves a transaction from one status to another inside
// the caller's transaction.  The WHERE clause re-checks the current
// status so two finalizations racing on the same code cannot both win;
// the loser sees ErrStatusConflict.
func (r *TransactionRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.OrderStatus) error {
	if !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusConflict
	}
	return nil
}
