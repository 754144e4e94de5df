package model

import "time"

// Order is one purchase attempt.  It is created exactly once per checkout
// request; for cash payments it is born SUCCESS, otherwise PENDING until
// the gateway reports settlement.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – acting account that submitted the checkout.
//  CustomerID      – optional named customer (staff sales), never equal to UserID.
//  PromotionID     – applied promotion; 1 is the no-promotion sentinel.
//  TotalPrice      – final price after promotion, rounded up to 1000.
//  OriginalTickets – seat total before the promotion was applied.
//  Status          – PENDING, SUCCESS or FAILED.
//  QRCode          – signed token embedded in the confirmation mail.
//  OrderDate       – creation timestamp.
type Order struct {
	ID              uint64      // orders.id
	UserID          string      // orders.user_id
	CustomerID      string      // orders.customer_id (empty when absent)
	PromotionID     uint64      // orders.promotion_id
	TotalPrice      int64       // orders.total_prices
	OriginalTickets int64       // orders.original_tickets
	Status          OrderStatus // orders.status
	QRCode          string      // orders.qr_code
	OrderDate       time.Time   // orders.order_date
}

// Transaction is the single payment attempt tied to an order.  The
// gateway's own reference code is the lookup key for return callbacks.
// Status mirrors the order's and is guarded the same way.
type Transaction struct {
	ID              uint64        // transactions.id
	OrderID         uint64        // transactions.order_id
	TransactionCode string        // transactions.transaction_code (provider reference)
	Price           int64         // transactions.prices
	Status          OrderStatus   // transactions.status
	Method          PaymentMethod // transactions.payment_method_id
	TransactionDate time.Time     // transactions.transaction_date
}

// Ticket is the admission record for one seat of one showtime.  Status
// and IsUsed start true only for cash sales; gateway sales activate them
// on settlement.
type Ticket struct {
	ID           uint64 // ticket.id
	ScheduleID   uint64 // ticket.schedule_id
	SeatID       string // ticket.seat_id
	TicketTypeID uint64 // ticket.ticket_type_id
	Status       bool   // ticket.status
	IsUsed       bool   // ticket.is_used
}

// OrderDetail links a ticket to its order with the per-seat price that
// was actually charged.  Immutable once written.
type OrderDetail struct {
	ID         uint64 // order_details.id
	OrderID    uint64 // order_details.order_id
	TicketID   uint64 // order_details.ticket_id
	ScheduleID uint64 // order_details.schedule_id
	Total      int64  // order_details.total_each_ticket
}

// OrderExtra is one concession line on an order: quantity of a product at
// the unit price that remains after promotion and combo discounts.
type OrderExtra struct {
	ID        uint64      // order_extra.id
	OrderID   uint64      // order_extra.order_id
	ProductID uint64      // order_extra.product_id
	Quantity  int         // order_extra.quantity
	UnitPrice int64       // order_extra.unit_price
	Status    OrderStatus // order_extra.status
}

// TicketType maps an audience type (adult, student, child...) to the
// percentage knocked off the seat-type base price.
type TicketType struct {
	ID           uint64  // ticket_type.id
	Name         string  // ticket_type.ticket_name
	AudienceType string  // ticket_type.audience_type
	Discount     float64 // ticket_type.discount, percent
}

// Product is a concession item.  ComboDiscount is non-nil for combos and
// holds the additional percentage applied to the unit price.
type Product struct {
	ID            uint64   // products.id
	Name          string   // products.name
	Price         int64    // products.price
	Category      string   // products.category
	ComboDiscount *float64 // combos.discount, percent; nil for plain products
}

// IsCombo reports whether the product carries a combo discount.
func (p Product) IsCombo() bool { return p.ComboDiscount != nil }

// HistoryScore records one loyalty-score mutation, always tied to the
// finalized order that caused it.
type HistoryScore struct {
	ID          uint64    // history_scores.id
	UserID      string    // history_scores.user_id
	OrderID     uint64    // history_scores.order_id
	ScoreChange int64     // history_scores.score_change
	CreatedAt   time.Time // history_scores.created_at
}
