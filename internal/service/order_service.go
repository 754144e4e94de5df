package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/cinetick/cinema-booking/internal/hold"
	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/pricing"
	"github.com/cinetick/cinema-booking/internal/queue"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// Events is the outbound surface the orchestrator fires after commit.
// The RabbitMQ publisher satisfies it; tests substitute a recorder.
type Events interface {
	SeatsHeld(ctx context.Context, scheduleID uint64, seatIDs []string)
	SeatsBooked(ctx context.Context, scheduleID uint64, seatIDs []string)
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent)
}

// CreateOrderResult is what a successful checkout returns to the client:
// the redirect target (or the cash sentinel) and the new order's ID.
type CreateOrderResult struct {
	OrderID uint64 `json:"order_id"`
	PayURL  string `json:"pay_url"`
}

// OrderService runs the checkout pipeline and the order queries built on
// top of it.
type OrderService struct {
	db           *sql.DB
	users        *repository.UserRepo
	catalog      *repository.CatalogRepo
	seats        *repository.ScheduleSeatRepo
	orders       *repository.OrderRepo
	transactions *repository.TransactionRepo
	holds        *hold.Coordinator
	gateways     payment.Registry
	events       Events
	qrSecret     string
	now          func() time.Time
}

// NewOrderService wires the checkout pipeline.
func NewOrderService(
	db *sql.DB,
	users *repository.UserRepo,
	catalog *repository.CatalogRepo,
	seats *repository.ScheduleSeatRepo,
	orders *repository.OrderRepo,
	transactions *repository.TransactionRepo,
	holds *hold.Coordinator,
	gateways payment.Registry,
	events Events,
	qrSecret string,
) *OrderService {
	return &OrderService{
		db:           db,
		users:        users,
		catalog:      catalog,
		seats:        seats,
		orders:       orders,
		transactions: transactions,
		holds:        holds,
		gateways:     gateways,
		events:       events,
		qrSecret:     qrSecret,
		now:          time.Now,
	}
}

// CreateOrder runs one checkout end to end: validate the actor, customer
// and promotion, consume the seat hold, re-verify seat availability,
// recompute the price, obtain a pay URL from the gateway, and only then
// persist the order with its transaction, tickets and concession lines
// in one database transaction.  Cash orders settle inside that same
// transaction; gateway orders stay PENDING until the return callback.
//
// The gateway call deliberately precedes persistence.  A provider
// failure therefore leaves no rows behind; the cost is that a provider
// success followed by a local failure leaves an orphan payment intent on
// the provider, which the daily reconciler surfaces.
func (s *OrderService) CreateOrder(ctx context.Context, actorID string, bill model.OrderBill, clientIP string) (CreateOrderResult, error) {
	if bill.TotalPrice < 0 {
		return CreateOrderResult{}, ErrNegativeTotal
	}

	user, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	var customer *model.User
	if bill.CustomerID != "" {
		if bill.CustomerID == actorID {
			return CreateOrderResult{}, ErrCustomerIsSelf
		}
		customer, err = s.users.GetByID(ctx, bill.CustomerID)
		if err != nil {
			return CreateOrderResult{}, err
		}
	}

	var products []model.Product
	if len(bill.Products) > 0 {
		products, err = s.catalog.GetProducts(ctx, bill.ProductIDs())
		if err != nil {
			return CreateOrderResult{}, err
		}
	}

	promo, err := s.catalog.GetPromotion(ctx, bill.PromotionID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if _, err := s.catalog.GetSchedule(ctx, bill.ScheduleID); err != nil {
		return CreateOrderResult{}, err
	}

	if !promo.IsSentinel() {
		if err := s.validatePromotion(user, customer, *promo, bill.CustomerID); err != nil {
			return CreateOrderResult{}, err
		}
	}

	seatIDs := bill.SeatIDs()
	ok, err := s.holds.ValidateBeforeOrder(ctx, bill.ScheduleID, user.ID, seatIDs)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if !ok {
		return CreateOrderResult{}, ErrSeatsContested
	}

	scheduleSeats, err := s.seats.GetBySeatIDs(ctx, bill.ScheduleID, seatIDs)
	if err != nil {
		return CreateOrderResult{}, err
	}
	for _, ss := range scheduleSeats {
		if ss.Status != model.SeatNotHeld {
			return CreateOrderResult{}, ErrSeatsUnavailable
		}
	}

	audienceTypes := make([]string, 0, len(bill.Seats))
	for _, seat := range bill.Seats {
		audienceTypes = append(audienceTypes, seat.AudienceType)
	}
	ticketTypes, err := s.catalog.GetTicketTypes(ctx, audienceTypes)
	if err != nil {
		return CreateOrderResult{}, err
	}

	breakdown, err := pricing.Calculate(bill.Seats, scheduleSeats, ticketTypes, products, bill.Quantities(), *promo)
	if err != nil {
		return CreateOrderResult{}, err
	}
	// Amounts are whole dong, so the comparison tolerance collapses to
	// exact equality.
	if breakdown.TotalPrice != bill.TotalPrice {
		return CreateOrderResult{}, ErrTotalPriceMismatch
	}

	method, err := s.catalog.GetPaymentMethod(ctx, bill.PaymentMethodID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	gw, err := s.gateways.Get(method)
	if err != nil {
		return CreateOrderResult{}, err
	}
	created, err := gw.CreateOrder(ctx, bill, clientIP)
	if err != nil {
		return CreateOrderResult{}, err
	}

	order, err := s.persistOrder(ctx, user, customer, *promo, method, bill, breakdown, created, ticketTypes, products)
	if err != nil {
		return CreateOrderResult{}, err
	}

	if method.IsCash() {
		s.events.SeatsBooked(ctx, bill.ScheduleID, seatIDs)
		s.events.BookingConfirmed(ctx, queue.BookingConfirmedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Email:       user.Email,
			ScheduleID:  bill.ScheduleID,
			TotalPrice:  order.TotalPrice,
			QRToken:     order.QRCode,
			ConfirmedAt: s.now().UTC().Format(time.RFC3339),
		})
	} else {
		s.events.SeatsHeld(ctx, bill.ScheduleID, seatIDs)
	}

	return CreateOrderResult{OrderID: order.ID, PayURL: created.PayURL}, nil
}

// validatePromotion enforces the eligibility rules for a real promotion:
// staff sales must name the customer, the window must be open, and the
// party spending the points must be able to afford the exchange cost.
func (s *OrderService) validatePromotion(user *model.User, customer *model.User, promo model.Promotion, customerID string) error {
	if user.Role.IsStaff() && customerID == "" {
		return ErrStaffNeedsCustomer
	}
	if !promo.ActiveAt(s.now()) {
		return ErrPromotionInactive
	}
	if user.Role == model.RoleUser && promo.Exchange > user.Score {
		return ErrInsufficientScore
	}
	if customer != nil {
		if customer.Role != model.RoleUser {
			return ErrCustomerNotUser
		}
		if promo.Exchange > customer.Score {
			return ErrInsufficientScore
		}
	}
	return nil
}

// persistOrder writes the order, its transaction, seat transitions,
// tickets, details and concession lines atomically.  Cash orders are
// born settled: seats go straight to BOOKED, lines are active, the
// loyalty score is granted and the QR token is attached before commit.
func (s *OrderService) persistOrder(
	ctx context.Context,
	user *model.User,
	customer *model.User,
	promo model.Promotion,
	method model.PaymentMethod,
	bill model.OrderBill,
	breakdown pricing.Breakdown,
	created payment.CreateResult,
	ticketTypes []model.TicketType,
	products []model.Product,
) (*model.Order, error) {
	isCash := method.IsCash()
	status := model.OrderPending
	if isCash {
		status = model.OrderSuccess
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	order := &model.Order{
		UserID:          user.ID,
		CustomerID:      bill.CustomerID,
		PromotionID:     promo.ID,
		TotalPrice:      breakdown.TotalPrice,
		OriginalTickets: breakdown.TotalSeats,
		Status:          status,
	}
	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}

	trans := &model.Transaction{
		OrderID:         order.ID,
		TransactionCode: created.Reference,
		Price:           breakdown.TotalPrice,
		Status:          status,
		Method:          method,
	}
	if err := s.transactions.CreateTx(ctx, tx, trans); err != nil {
		return nil, err
	}

	seatIDs := bill.SeatIDs()
	if err := s.seats.UpdateStatusTx(ctx, tx, bill.ScheduleID, seatIDs, model.SeatNotHeld, model.SeatHeld); err != nil {
		return nil, err
	}

	typeByAudience := make(map[string]model.TicketType, len(ticketTypes))
	for _, tt := range ticketTypes {
		typeByAudience[tt.AudienceType] = tt
	}
	tickets := make([]model.Ticket, 0, len(bill.Seats))
	for _, seat := range bill.Seats {
		tickets = append(tickets, model.Ticket{
			ScheduleID:   bill.ScheduleID,
			SeatID:       seat.ID,
			TicketTypeID: typeByAudience[seat.AudienceType].ID,
			Status:       isCash,
			IsUsed:       isCash,
		})
	}
	if err := s.orders.CreateTicketsTx(ctx, tx, tickets); err != nil {
		return nil, err
	}

	details := make([]model.OrderDetail, 0, len(tickets))
	for i, seat := range bill.Seats {
		details = append(details, model.OrderDetail{
			OrderID:    order.ID,
			TicketID:   tickets[i].ID,
			ScheduleID: bill.ScheduleID,
			Total:      pricing.TicketCharge(seat.ID, breakdown.SeatPrices),
		})
	}
	if err := s.orders.CreateDetailsTx(ctx, tx, details); err != nil {
		return nil, err
	}

	if len(products) > 0 {
		lines := pricing.ProductLines(products, bill.Quantities())
		extras := make([]model.OrderExtra, 0, len(lines))
		for _, line := range lines {
			extras = append(extras, model.OrderExtra{
				OrderID:   order.ID,
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				UnitPrice: pricing.ProductUnitPrice(line, breakdown.ProductDiscount, breakdown.TotalProduct, breakdown.IsPercentage),
				Status:    status,
			})
		}
		if err := s.orders.CreateExtrasTx(ctx, tx, extras); err != nil {
			return nil, err
		}
	}

	if isCash {
		if err := s.seats.UpdateStatusTx(ctx, tx, bill.ScheduleID, seatIDs, model.SeatHeld, model.SeatBooked); err != nil {
			return nil, err
		}
		if err := s.grantScoreTx(ctx, tx, user, customer, promo, order); err != nil {
			return nil, err
		}
		qrToken, err := utils.NewQRToken(s.qrSecret, order.ID)
		if err != nil {
			return nil, err
		}
		if err := s.orders.SetQRCodeTx(ctx, tx, order.ID, qrToken); err != nil {
			return nil, err
		}
		order.QRCode = qrToken
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return order, nil
}

// grantScoreTx credits the loyalty points a settled order earns.  A named
// customer always earns them; otherwise the acting account does, but only
// when it is a regular user account.
func (s *OrderService) grantScoreTx(ctx context.Context, tx *sql.Tx, user *model.User, customer *model.User, promo model.Promotion, order *model.Order) error {
	score := pricing.OrderScore(order.TotalPrice, promo.Exchange)
	if score == 0 {
		return nil
	}
	switch {
	case customer != nil:
		return s.users.AddScoreTx(ctx, tx, customer.ID, score, order.ID)
	case user.Role == model.RoleUser:
		return s.users.AddScoreTx(ctx, tx, user.ID, score, order.ID)
	default:
		log.Printf("order %d: no score grantee (staff sale without customer)", order.ID)
		return nil
	}
}
