package payment

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/pricing"
	"github.com/cinetick/cinema-booking/internal/queue"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// The finalizer talks to persistence through narrow views of the repos so
// tests can swap them without a database.

type transactionStore interface {
	GetByCode(ctx context.Context, code string) (*model.Transaction, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.OrderStatus) error
}

type orderStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, from, to model.OrderStatus) error
	SetQRCodeTx(ctx context.Context, tx *sql.Tx, orderID uint64, qr string) error
	ActivateLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64) error
	FailLinesTx(ctx context.Context, tx *sql.Tx, orderID uint64) error
	SeatIDsByOrder(ctx context.Context, orderID uint64) (uint64, []string, error)
}

type seatStore interface {
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, scheduleID uint64, seatIDs []string, from, to model.SeatStatus) error
}

type userStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	AddScoreTx(ctx context.Context, tx *sql.Tx, userID string, delta int64, orderID uint64) error
}

type promotionStore interface {
	GetPromotion(ctx context.Context, id uint64) (*model.Promotion, error)
}

// Events is the outbound notification surface the finalizer fires after a
// terminal transition commits.  Implementations must not block settlement.
type Events interface {
	SeatsBooked(ctx context.Context, scheduleID uint64, seatIDs []string)
	SeatsCancelled(ctx context.Context, scheduleID uint64, seatIDs []string)
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent)
}

// Result reports what a finalization call did.  AlreadySettled means the
// transaction had left PENDING before this call; the caller treats that
// as success of the earlier call, not of this one.
type Result struct {
	OrderID        uint64
	Status         model.OrderStatus
	AlreadySettled bool
}

// Finalizer is the settlement state machine every gateway return handler
// funnels into.  Success and Failure are the only two exits from PENDING,
// and both move Order and Transaction together inside one database
// transaction.
type Finalizer struct {
	db           *sql.DB
	transactions transactionStore
	orders       orderStore
	seats        seatStore
	users        userStore
	promotions   promotionStore
	gateways     Registry
	events       Events
	qrSecret     string
}

// NewFinalizer wires the settlement state machine.
func NewFinalizer(
	db *sql.DB,
	transactions transactionStore,
	orders orderStore,
	seats seatStore,
	users userStore,
	promotions promotionStore,
	gateways Registry,
	events Events,
	qrSecret string,
) *Finalizer {
	return &Finalizer{
		db:           db,
		transactions: transactions,
		orders:       orders,
		seats:        seats,
		users:        users,
		promotions:   promotions,
		gateways:     gateways,
		events:       events,
		qrSecret:     qrSecret,
	}
}

// Success settles the transaction behind reference as paid.  The
// provider is asked for settlement proof first; a provider that says the
// payment never captured keeps everything PENDING.  A transaction that
// already left PENDING is returned untouched, which makes duplicate
// return callbacks harmless.
func (f *Finalizer) Success(ctx context.Context, reference string) (Result, error) {
	trans, err := f.transactions.GetByCode(ctx, reference)
	if err != nil {
		return Result{}, err
	}
	if trans.Status != model.OrderPending {
		return Result{OrderID: trans.OrderID, Status: trans.Status, AlreadySettled: true}, nil
	}

	gw, err := f.gateways.Get(trans.Method)
	if err != nil {
		return Result{}, err
	}
	if err := gw.VerifyPaid(ctx, reference); err != nil {
		return Result{}, err
	}

	order, err := f.orders.GetByID(ctx, trans.OrderID)
	if err != nil {
		return Result{}, err
	}
	scheduleID, seatIDs, err := f.orders.SeatIDsByOrder(ctx, trans.OrderID)
	if err != nil {
		return Result{}, err
	}

	qrToken, err := utils.NewQRToken(f.qrSecret, order.ID)
	if err != nil {
		return Result{}, fmt.Errorf("sign qr token: %w", err)
	}

	grantee, score, err := f.scoreGrant(ctx, order)
	if err != nil {
		return Result{}, err
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := f.transactions.UpdateStatusTx(ctx, tx, trans.ID, model.OrderPending, model.OrderSuccess); err != nil {
		return Result{}, err
	}
	if err := f.orders.UpdateStatusTx(ctx, tx, order.ID, model.OrderPending, model.OrderSuccess); err != nil {
		return Result{}, err
	}
	if err := f.seats.UpdateStatusTx(ctx, tx, scheduleID, seatIDs, model.SeatHeld, model.SeatBooked); err != nil {
		return Result{}, err
	}
	if err := f.orders.ActivateLinesTx(ctx, tx, order.ID); err != nil {
		return Result{}, err
	}
	if grantee != "" && score != 0 {
		if err := f.users.AddScoreTx(ctx, tx, grantee, score, order.ID); err != nil {
			return Result{}, err
		}
	}
	if err := f.orders.SetQRCodeTx(ctx, tx, order.ID, qrToken); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true

	f.events.SeatsBooked(ctx, scheduleID, seatIDs)
	f.notifyConfirmed(ctx, order, scheduleID, qrToken)

	return Result{OrderID: order.ID, Status: model.OrderSuccess}, nil
}

// Failure settles the transaction behind reference as failed or
// cancelled, releasing its seats back to the pool.  Same PENDING guard
// as Success.
func (f *Finalizer) Failure(ctx context.Context, reference string) (Result, error) {
	trans, err := f.transactions.GetByCode(ctx, reference)
	if err != nil {
		return Result{}, err
	}
	if trans.Status != model.OrderPending {
		return Result{OrderID: trans.OrderID, Status: trans.Status, AlreadySettled: true}, nil
	}

	scheduleID, seatIDs, err := f.orders.SeatIDsByOrder(ctx, trans.OrderID)
	if err != nil {
		return Result{}, err
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := f.transactions.UpdateStatusTx(ctx, tx, trans.ID, model.OrderPending, model.OrderFailed); err != nil {
		return Result{}, err
	}
	if err := f.orders.UpdateStatusTx(ctx, tx, trans.OrderID, model.OrderPending, model.OrderFailed); err != nil {
		return Result{}, err
	}
	if err := f.seats.UpdateStatusTx(ctx, tx, scheduleID, seatIDs, model.SeatHeld, model.SeatNotHeld); err != nil {
		return Result{}, err
	}
	if err := f.orders.FailLinesTx(ctx, tx, trans.OrderID); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	committed = true

	f.events.SeatsCancelled(ctx, scheduleID, seatIDs)

	return Result{OrderID: trans.OrderID, Status: model.OrderFailed}, nil
}

// scoreGrant picks who earns loyalty points for the order and how many.
// A named customer always earns them; otherwise the acting account does,
// but only when it is a regular user account.
func (f *Finalizer) scoreGrant(ctx context.Context, order *model.Order) (string, int64, error) {
	var exchange int64
	if order.PromotionID != model.NoPromotionID {
		promo, err := f.promotions.GetPromotion(ctx, order.PromotionID)
		if err != nil {
			return "", 0, err
		}
		exchange = promo.Exchange
	}
	score := pricing.OrderScore(order.TotalPrice, exchange)

	if order.CustomerID != "" {
		return order.CustomerID, score, nil
	}
	actor, err := f.users.GetByID(ctx, order.UserID)
	if err != nil {
		return "", 0, err
	}
	if actor.Role == model.RoleUser {
		return actor.ID, score, nil
	}
	return "", 0, nil
}

// notifyConfirmed publishes the booking.confirmed event.  Lookups here
// are best effort: settlement has already committed, so a missing email
// only degrades the notification.
func (f *Finalizer) notifyConfirmed(ctx context.Context, order *model.Order, scheduleID uint64, qrToken string) {
	recipient := order.UserID
	if order.CustomerID != "" {
		recipient = order.CustomerID
	}
	email := ""
	if u, err := f.users.GetByID(ctx, recipient); err == nil {
		email = u.Email
	} else {
		log.Printf("booking.confirmed: lookup user %s: %v", recipient, err)
	}
	f.events.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
		OrderID:     order.ID,
		UserID:      recipient,
		Email:       email,
		ScheduleID:  scheduleID,
		TotalPrice:  order.TotalPrice,
		QRToken:     qrToken,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// ensure the concrete repos satisfy the narrow views
var (
	_ transactionStore = (*repository.TransactionRepo)(nil)
	_ orderStore       = (*repository.OrderRepo)(nil)
	_ seatStore        = (*repository.ScheduleSeatRepo)(nil)
	_ userStore        = (*repository.UserRepo)(nil)
	_ promotionStore   = (*repository.CatalogRepo)(nil)
)
