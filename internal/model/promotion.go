package model

import "time"

// NoPromotionID is the sentinel promotion every order without a real
// promotion references.  Eligibility rules are skipped for it.
const NoPromotionID uint64 = 1

// Promotion discount kinds.  Percentage promotions scale with the order
// total; fixed promotions subtract a flat amount.
const (
	PromotionPercentage = "percentage"
	PromotionFixed      = "fixed"
)

// Promotion is a discount with an eligibility window and a loyalty-point
// exchange cost.  Read-only to the checkout path.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – display name.
//  Discount  – percentage rate or fixed amount, depending on Type.
//  Type      – "percentage" or "fixed".
//  Exchange  – loyalty points consumed by applying the promotion.
//  StartTime – start of the eligibility window (nil = no bound recorded).
//  EndTime   – end of the eligibility window.
//  IsActive  – inactive promotions are invisible to orders.
type Promotion struct {
	ID        uint64     // promotion.id
	Title     string     // promotion.title
	Discount  float64    // promotion.discount
	Type      string     // promotion_types.type
	Exchange  int64      // promotion.exchange
	StartTime *time.Time // promotion.start_time
	EndTime   *time.Time // promotion.end_time
	IsActive  bool       // promotion.is_active
}

// IsSentinel reports whether p is the no-promotion placeholder.
func (p Promotion) IsSentinel() bool { return p.ID == NoPromotionID }

// ActiveAt reports whether now falls inside the promotion's window.  A
// promotion with either bound missing is never active.
func (p Promotion) ActiveAt(now time.Time) bool {
	if p.StartTime == nil || p.EndTime == nil {
		return false
	}
	return !p.StartTime.After(now) && !p.EndTime.Before(now)
}
