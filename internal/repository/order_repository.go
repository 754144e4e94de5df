package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
)

// OrderRepo persists the order graph: orders, tickets, order details and
// order extras.  The multi-row writes of one checkout all run inside one
// transaction owned by the caller; there is no cross-order transaction.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the provided database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so services can open transactions
// spanning several repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the order row and populates its ID and OrderDate.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	o.OrderDate = time.Now().UTC()
	var customer interface{}
	if o.CustomerID != "" {
		customer = o.CustomerID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, customer_id, promotion_id, total_prices, original_tickets, status, qr_code, order_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, customer, o.PromotionID, o.TotalPrice, o.OriginalTickets, string(o.Status), o.QRCode, o.OrderDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateTicketsTx inserts the tickets one by one (their generated IDs
// are needed for the order details) and fills in each Ticket.ID.
func (r *OrderRepo) CreateTicketsTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	const q = `INSERT INTO ticket (schedule_id, seat_id, ticket_type_id, status, is_used) VALUES (?, ?, ?, ?, ?)`
	for i := range tickets {
		t := &tickets[i]
		res, err := tx.ExecContext(ctx, q, t.ScheduleID, t.SeatID, t.TicketTypeID, t.Status, t.IsUsed)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = uint64(id)
	}
	return nil
}

// CreateDetailsTx inserts the order detail rows in one statement.
func (r *OrderRepo) CreateDetailsTx(ctx context.Context, tx *sql.Tx, details []model.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	query := `INSERT INTO order_details (order_id, ticket_id, schedule_id, total_each_ticket) VALUES `
	args := make([]interface{}, 0, len(details)*4)
	for i, d := range details {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, d.OrderID, d.TicketID, d.ScheduleID, d.Total)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateExtrasTx inserts the concession lines in one statement.
func (r *OrderRepo) CreateExtrasTx(ctx context.Context, tx *sql.Tx, extras []model.OrderExtra) error {
	if len(extras) == 0 {
		return nil
	}
	query := `INSERT INTO order_extra (order_id, product_id, quantity, unit_price, status) VALUES `
	args := make([]interface{}, 0, len(extras)*5)
	for i, e := range extras {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, e.OrderID, e.ProductID, e.Quantity, e.UnitPrice, string(e.Status))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID loads one order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT id, user_id, COALESCE(customer_id, ''), promotion_id, total_prices, original_tickets, status, COALESCE(qr_code, ''), order_date
	           FROM orders WHERE id = ?`
	var o model.Order
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.UserID, &o.CustomerID, &o.PromotionID, &o.TotalPrice,
		&o.OriginalTickets, &o.Status, &o.QRCode, &o.OrderDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusTx moves an order from one status to another inside the
// caller's transaction, guarded by the state machine and the current
// row value.  A no-match update means a concurrent finalization won and
// surfaces as ErrStatusConflict.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, from, to model.OrderStatus) error {
	if !from.CanTransition(to) {
		return ErrIllegalTransition
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(to), orderID, string(from))
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

// SetQRCodeTx stores the signed QR token on a settled order.
func (r *OrderRepo) SetQRCodeTx(ctx context.Context, tx *sql.Tx, orderID uint64, qr string) error {
	_, err := tx.ExecContext(ctx, `UPDATE orders SET qr_code = ? WHERE id = ?`, qr, orderID)
	return err
}

// ActivateLinesTx flips the order's tickets to active and its extras to
// SUCCESS.  Used on gateway settlement; cash orders are created already
// active.
func (r *OrderRepo) ActivateLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE ticket t JOIN order_details od ON od.ticket_id = t.id
		 SET t.status = TRUE WHERE od.order_id = ?`, orderID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE order_extra SET status = ? WHERE order_id = ?`, string(model.OrderSuccess), orderID)
	return err
}

// FailLinesTx marks the order's extras FAILED.  Tickets stay inactive.
func (r *OrderRepo) FailLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE order_extra SET status = ? WHERE order_id = ?`, string(model.OrderFailed), orderID)
	return err
}

// SeatIDsByOrder returns the showtime and seat identifiers an order's
// tickets cover, for seat-state transitions during finalization.
func (r *OrderRepo) SeatIDsByOrder(ctx context.Context, orderID uint64) (uint64, []string, error) {
	const q = `SELECT t.schedule_id, t.seat_id
	           FROM order_details od JOIN ticket t ON t.id = od.ticket_id
	           WHERE od.order_id = ?`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()
	var scheduleID uint64
	var seatIDs []string
	for rows.Next() {
		var sid string
		if err := rows.Scan(&scheduleID, &sid); err != nil {
			return 0, nil, err
		}
		seatIDs = append(seatIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	if len(seatIDs) == 0 {
		return 0, nil, ErrNotFound
	}
	return scheduleID, seatIDs, nil
}

// TicketIDsByOrder returns the ticket IDs of an order, for the QR scan
// path that marks them used.
func (r *OrderRepo) TicketIDsByOrder(ctx context.Context, orderID uint64) ([]uint64, error) {
	const q = `SELECT ticket_id FROM order_details WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return ids, nil
}

// MarkTicketsUsed flips is_used on the given tickets.
func (r *OrderRepo) MarkTicketsUsed(ctx context.Context, ticketIDs []uint64) error {
	if len(ticketIDs) == 0 {
		return nil
	}
	query := `UPDATE ticket SET is_used = TRUE WHERE id IN (?`
	args := []interface{}{ticketIDs[0]}
	for _, id := range ticketIDs[1:] {
		query += ",?"
		args = append(args, id)
	}
	query += ")"
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// OrderWithTransaction pairs an order with its payment attempt for the
// settlement reconciler.
type OrderWithTransaction struct {
	Order       model.Order
	Transaction model.Transaction
}

// ListByDateRange loads every order created inside [from, to) together
// with its transaction, oldest first.
func (r *OrderRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]OrderWithTransaction, error) {
	const q = `SELECT o.id, o.user_id, COALESCE(o.customer_id, ''), o.promotion_id, o.total_prices, o.original_tickets, o.status, COALESCE(o.qr_code, ''), o.order_date,
	                  t.id, t.order_id, t.transaction_code, t.prices, t.status, t.payment_method_id, t.transaction_date
	           FROM orders o
	           JOIN transactions t ON t.order_id = o.id
	           WHERE o.order_date >= ? AND o.order_date < ?
	           ORDER BY o.order_date`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []OrderWithTransaction
	for rows.Next() {
		var ot OrderWithTransaction
		if err := rows.Scan(
			&ot.Order.ID, &ot.Order.UserID, &ot.Order.CustomerID, &ot.Order.PromotionID,
			&ot.Order.TotalPrice, &ot.Order.OriginalTickets, &ot.Order.Status, &ot.Order.QRCode, &ot.Order.OrderDate,
			&ot.Transaction.ID, &ot.Transaction.OrderID, &ot.Transaction.TransactionCode,
			&ot.Transaction.Price, &ot.Transaction.Status, &ot.Transaction.Method, &ot.Transaction.TransactionDate); err != nil {
			return nil, err
		}
		result = append(result, ot)
	}
	return result, rows.Err()
}

// ListByUser loads a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	const q = `SELECT id, user_id, COALESCE(customer_id, ''), promotion_id, total_prices, original_tickets, status, COALESCE(qr_code, ''), order_date
	           FROM orders WHERE user_id = ? OR customer_id = ? ORDER BY order_date DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CustomerID, &o.PromotionID, &o.TotalPrice,
			&o.OriginalTickets, &o.Status, &o.QRCode, &o.OrderDate); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
