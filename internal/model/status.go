package model

// SeatStatus is the availability state of one seat within one showtime.
// The only legal transitions are NOT_HELD→HELD, HELD→BOOKED and
// HELD→NOT_HELD (release).  BOOKED is terminal for the showtime.
type SeatStatus string

const (
	SeatNotHeld SeatStatus = "NOT_HELD"
	SeatHeld    SeatStatus = "HELD"
	SeatBooked  SeatStatus = "BOOKED"
)

// CanTransition reports whether moving from s to next is a legal seat
// transition.  Every write site checks this before touching the row so
// that an illegal transition is rejected instead of silently stored.
func (s SeatStatus) CanTransition(next SeatStatus) bool {
	switch s {
	case SeatNotHeld:
		return next == SeatHeld
	case SeatHeld:
		return next == SeatBooked || next == SeatNotHeld
	case SeatBooked:
		return false
	}
	return false
}

// OrderStatus is shared by orders, transactions and order extras.  Status
// only ever moves forward from PENDING; SUCCESS and FAILED are terminal.
type OrderStatus string

const (
	OrderPending OrderStatus = "PENDING"
	OrderSuccess OrderStatus = "SUCCESS"
	OrderFailed  OrderStatus = "FAILED"
)

// CanTransition reports whether moving from s to next is legal.  Repeat
// gateway callbacks hit a non-PENDING status and must become no-ops.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == OrderPending && (next == OrderSuccess || next == OrderFailed)
}

// PaymentMethod identifies how an order is settled.  Cash settles
// synchronously inside the checkout request; every other method defers
// settlement to the provider's return callback.
type PaymentMethod uint8

const (
	MethodCash    PaymentMethod = 1
	MethodMomo    PaymentMethod = 2
	MethodPaypal  PaymentMethod = 3
	MethodVisa    PaymentMethod = 4
	MethodVnpay   PaymentMethod = 5
	MethodZalopay PaymentMethod = 6
)

// IsCash reports whether the method settles without an external gateway.
func (m PaymentMethod) IsCash() bool { return m == MethodCash }

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool { return m >= MethodCash && m <= MethodZalopay }

func (m PaymentMethod) String() string {
	switch m {
	case MethodCash:
		return "CASH"
	case MethodMomo:
		return "MOMO"
	case MethodPaypal:
		return "PAYPAL"
	case MethodVisa:
		return "VISA"
	case MethodVnpay:
		return "VNPAY"
	case MethodZalopay:
		return "ZALOPAY"
	}
	return "UNKNOWN"
}

// AllPaymentMethods lists every method in a stable order.  The daily
// settlement report emits one summary row per entry.
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodMomo, MethodPaypal, MethodVisa, MethodVnpay, MethodZalopay}
}
