package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
)

// UserRepo provides read access to accounts and the score grant used by
// order finalization.  Registration, login and profile editing belong to
// the identity service and never happen here.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID loads one account with its role and score.  Missing accounts
// map to ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, role_id, score FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.Role, &u.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddScoreTx adds delta to a user's loyalty score and records the change
// in history_scores, tied to the order that caused it.  Runs inside the
// caller's transaction so the grant commits together with the order's
// status change.
func (r *UserRepo) AddScoreTx(ctx context.Context, tx *sql.Tx, userID string, delta int64, orderID uint64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE users SET score = score + ? WHERE id = ?`, delta, userID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO history_scores (user_id, order_id, score_change, created_at) VALUES (?, ?, ?, ?)`,
		userID, orderID, delta, time.Now().UTC())
	return err
}
