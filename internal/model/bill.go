package model

// SeatSelection is one requested seat with the audience type that decides
// its ticket discount.
type SeatSelection struct {
	ID           string `json:"id"`
	AudienceType string `json:"audience_type"`
}

// ProductSelection is one requested concession line.
type ProductSelection struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderBill is the client's checkout submission.  TotalPrice is the price
// the client displayed; the orchestrator recomputes it and rejects the
// order when the two disagree.
type OrderBill struct {
	ScheduleID      uint64             `json:"schedule_id"`
	PaymentMethodID uint64             `json:"payment_method_id"`
	PromotionID     uint64             `json:"promotion_id"`
	CustomerID      string             `json:"customer_id,omitempty"`
	TotalPrice      int64              `json:"total_prices"`
	Seats           []SeatSelection    `json:"seats"`
	Products        []ProductSelection `json:"products,omitempty"`
}

// SeatIDs returns the requested seat identifiers in submission order.
func (b OrderBill) SeatIDs() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.ID)
	}
	return ids
}

// ProductIDs returns the requested product identifiers.
func (b OrderBill) ProductIDs() []uint64 {
	ids := make([]uint64, 0, len(b.Products))
	for _, p := range b.Products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// Quantities maps product ID to requested quantity.
func (b OrderBill) Quantities() map[uint64]int {
	q := make(map[uint64]int, len(b.Products))
	for _, p := range b.Products {
		q[p.ProductID] = p.Quantity
	}
	return q
}
