// Package pricing computes seat, concession and promotion prices.  Every
// function is pure: inputs in, breakdown out, no storage access.
package pricing

import (
	"fmt"
	"math"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// priceUnit is the currency granularity customers are charged in.
const priceUnit = 1000

// Breakdown is the full result of pricing one order.  The invariant
// SeatDiscount + ProductDiscount == PromotionAmount holds exactly: the
// product share is the remainder, not an independent rounding.
type Breakdown struct {
	TotalSeats           int64
	TotalProduct         int64
	TotalBeforePromotion int64
	PromotionAmount      int64
	TotalPrice           int64
	SeatDiscount         int64
	ProductDiscount      int64
	IsPercentage         bool
	// SeatPrices maps seat ID to its audience-discounted price before
	// the promotion split, retained for ticket line items.
	SeatPrices map[string]int64
}

// ProductLine pairs a product with the quantity ordered and its revenue
// before any promotion.
type ProductLine struct {
	Product  model.Product
	Quantity int
	Total    int64
}

// SeatPrices prices each requested seat: seat-type base price reduced by
// the audience-type ticket discount percentage.  Seats missing from the
// showtime rows are an error; a missing ticket type prices at full rate.
func SeatPrices(seats []model.SeatSelection, scheduleSeats []model.ScheduleSeat, ticketTypes []model.TicketType) (int64, map[string]int64, error) {
	byID := make(map[string]model.ScheduleSeat, len(scheduleSeats))
	for _, ss := range scheduleSeats {
		byID[ss.Seat.ID] = ss
	}
	byAudience := make(map[string]model.TicketType, len(ticketTypes))
	for _, tt := range ticketTypes {
		byAudience[tt.AudienceType] = tt
	}

	var total int64
	prices := make(map[string]int64, len(seats))
	for _, sel := range seats {
		ss, ok := byID[sel.ID]
		if !ok {
			return 0, nil, fmt.Errorf("seat %s not found in schedule", sel.ID)
		}
		var discount float64
		if tt, ok := byAudience[sel.AudienceType]; ok {
			discount = tt.Discount
		}
		price := applyAudienceDiscount(ss.Seat.SeatType.Price, discount)
		prices[sel.ID] = price
		total += price
	}
	return total, prices, nil
}

// applyAudienceDiscount reduces a base price by a percentage.
func applyAudienceDiscount(base int64, discount float64) int64 {
	return int64(math.Round(float64(base) * (1 - discount/100)))
}

// ProductLines expands the requested products into lines with quantities
// and pre-promotion revenue.
func ProductLines(extras []model.Product, quantities map[uint64]int) []ProductLine {
	lines := make([]ProductLine, 0, len(extras))
	for _, p := range extras {
		qty := quantities[p.ID]
		lines = append(lines, ProductLine{Product: p, Quantity: qty, Total: p.Price * int64(qty)})
	}
	return lines
}

// productTotal sums concession revenue before promotion.
func productTotal(lines []ProductLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Total
	}
	return total
}

// PromotionAmount computes the discount one promotion grants on a given
// pre-promotion total, and whether the promotion is percentage-typed.
func PromotionAmount(promo model.Promotion, totalBeforePromotion int64) (int64, bool) {
	isPercentage := promo.Type == model.PromotionPercentage
	if isPercentage {
		return int64(math.Round(float64(totalBeforePromotion) * promo.Discount / 100)), true
	}
	return int64(math.Round(promo.Discount)), false
}

// Calculate prices a whole order.  The promotion amount is split between
// the seat and product segments proportionally to their share of the
// pre-promotion total, with the product side taking the remainder so the
// two parts always sum to the promotion amount exactly.
func Calculate(seats []model.SeatSelection, scheduleSeats []model.ScheduleSeat, ticketTypes []model.TicketType, extras []model.Product, quantities map[uint64]int, promo model.Promotion) (Breakdown, error) {
	totalSeats, seatPrices, err := SeatPrices(seats, scheduleSeats, ticketTypes)
	if err != nil {
		return Breakdown{}, err
	}
	totalProduct := productTotal(ProductLines(extras, quantities))
	totalBefore := totalSeats + totalProduct

	promotionAmount, isPercentage := PromotionAmount(promo, totalBefore)

	var seatDiscount int64
	if totalBefore > 0 {
		seatDiscount = int64(math.Round(float64(promotionAmount) * float64(totalSeats) / float64(totalBefore)))
	}
	productDiscount := promotionAmount - seatDiscount

	return Breakdown{
		TotalSeats:           totalSeats,
		TotalProduct:         totalProduct,
		TotalBeforePromotion: totalBefore,
		PromotionAmount:      promotionAmount,
		TotalPrice:           utils.RoundUpToNearest(totalBefore-promotionAmount, priceUnit),
		SeatDiscount:         seatDiscount,
		ProductDiscount:      productDiscount,
		IsPercentage:         isPercentage,
		SeatPrices:           seatPrices,
	}, nil
}

// ProductUnitPrice computes the unit price charged for one concession
// line after the promotion.  Percentage promotions spread the product
// discount uniformly over revenue; fixed promotions allocate it by each
// line's revenue share.  Combos then apply their own percentage, and the
// result is charged in 1000-dong steps.
func ProductUnitPrice(line ProductLine, productDiscount, totalProductBefore int64, isPercentage bool) int64 {
	base := float64(line.Product.Price)
	unit := base
	if totalProductBefore > 0 {
		if isPercentage {
			unit = math.Round(base - base*float64(productDiscount)/float64(totalProductBefore))
		} else if line.Quantity > 0 {
			share := float64(line.Total) / float64(totalProductBefore)
			unit = math.Round(base - float64(productDiscount)*share/float64(line.Quantity))
		}
	}
	if line.Product.IsCombo() {
		unit *= 1 - *line.Product.ComboDiscount/100
	}
	// Ceil before charging in 1000-dong steps; truncating first would let
	// a fractional combo price round down across a step boundary.
	return utils.RoundUpToNearest(int64(math.Ceil(unit)), priceUnit)
}

// SeatFinalPrice allocates the seat-side promotion discount to one seat
// by its share of the seat total.  Used when presenting per-ticket
// prices after a promotion.
func SeatFinalPrice(seatID string, seatPrices map[string]int64, totalSeats, seatDiscount int64) int64 {
	price := float64(seatPrices[seatID])
	if totalSeats == 0 {
		return int64(price)
	}
	share := price / float64(totalSeats)
	return int64(math.Round(price - float64(seatDiscount)*share))
}

// TicketCharge is the amount stored on a ticket's order detail: the
// audience-discounted seat price charged in 1000-dong steps.
func TicketCharge(seatID string, seatPrices map[string]int64) int64 {
	return utils.RoundUpToNearest(seatPrices[seatID], priceUnit)
}

// OrderScore converts a finalized total into granted loyalty points,
// minus the promotion's exchange cost.
func OrderScore(totalPrice int64, promotionExchange int64) int64 {
	return totalPrice/priceUnit - promotionExchange
}
