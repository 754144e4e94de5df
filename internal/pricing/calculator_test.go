package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/pricing"
)

func scheduleSeat(id string, price int64) model.ScheduleSeat {
	return model.ScheduleSeat{
		Seat: model.Seat{ID: id, SeatType: model.SeatType{Name: "standard", Price: price}},
	}
}

func percentagePromo(discount float64) model.Promotion {
	now := time.Now()
	start, end := now.Add(-time.Hour), now.Add(time.Hour)
	return model.Promotion{ID: 2, Discount: discount, Type: model.PromotionPercentage, StartTime: &start, EndTime: &end}
}

func TestSeatPricesAudienceDiscount(t *testing.T) {
	seats := []model.SeatSelection{
		{ID: "A1", AudienceType: "student"},
		{ID: "A2", AudienceType: "adult"},
	}
	scheduleSeats := []model.ScheduleSeat{scheduleSeat("A1", 90000), scheduleSeat("A2", 90000)}
	ticketTypes := []model.TicketType{{ID: 1, AudienceType: "student", Discount: 10}}

	total, prices, err := pricing.SeatPrices(seats, scheduleSeats, ticketTypes)
	require.NoError(t, err)

	assert.Equal(t, int64(81000), prices["A1"], "student seat gets the 10 percent ticket discount")
	assert.Equal(t, int64(90000), prices["A2"], "unknown audience type prices at full rate")
	assert.Equal(t, int64(171000), total)
}

func TestSeatPricesUnknownSeat(t *testing.T) {
	seats := []model.SeatSelection{{ID: "Z9", AudienceType: "adult"}}
	_, _, err := pricing.SeatPrices(seats, []model.ScheduleSeat{scheduleSeat("A1", 90000)}, nil)
	assert.Error(t, err)
}

// TestCalculatePercentagePromotion walks the full worked example: two
// student seats at 90000 base, one product at 50000 x2, 10 percent promotion.
func TestCalculatePercentagePromotion(t *testing.T) {
	seats := []model.SeatSelection{
		{ID: "A1", AudienceType: "student"},
		{ID: "A2", AudienceType: "student"},
	}
	scheduleSeats := []model.ScheduleSeat{scheduleSeat("A1", 90000), scheduleSeat("A2", 90000)}
	ticketTypes := []model.TicketType{{ID: 1, AudienceType: "student", Discount: 10}}
	extras := []model.Product{{ID: 7, Name: "popcorn", Price: 50000}}
	quantities := map[uint64]int{7: 2}

	b, err := pricing.Calculate(seats, scheduleSeats, ticketTypes, extras, quantities, percentagePromo(10))
	require.NoError(t, err)

	assert.Equal(t, int64(162000), b.TotalSeats)
	assert.Equal(t, int64(100000), b.TotalProduct)
	assert.Equal(t, int64(262000), b.TotalBeforePromotion)
	assert.Equal(t, int64(26200), b.PromotionAmount)
	assert.Equal(t, int64(236000), b.TotalPrice, "235800 rounds up to the next 1000")
	assert.Equal(t, int64(16200), b.SeatDiscount)
	assert.Equal(t, int64(10000), b.ProductDiscount)
	assert.True(t, b.IsPercentage)
	assert.Equal(t, b.PromotionAmount, b.SeatDiscount+b.ProductDiscount)
}

func TestCalculateFixedPromotion(t *testing.T) {
	seats := []model.SeatSelection{{ID: "A1", AudienceType: "adult"}}
	scheduleSeats := []model.ScheduleSeat{scheduleSeat("A1", 90000)}
	promo := model.Promotion{ID: 3, Discount: 20000, Type: model.PromotionFixed}

	b, err := pricing.Calculate(seats, scheduleSeats, nil, nil, nil, promo)
	require.NoError(t, err)

	assert.Equal(t, int64(20000), b.PromotionAmount)
	assert.False(t, b.IsPercentage)
	assert.Equal(t, int64(70000), b.TotalPrice)
	assert.Equal(t, b.PromotionAmount, b.SeatDiscount+b.ProductDiscount)
}

func TestCalculateNoPromotion(t *testing.T) {
	seats := []model.SeatSelection{{ID: "A1", AudienceType: "adult"}}
	scheduleSeats := []model.ScheduleSeat{scheduleSeat("A1", 85500)}

	b, err := pricing.Calculate(seats, scheduleSeats, nil, nil, nil, model.Promotion{ID: model.NoPromotionID})
	require.NoError(t, err)

	assert.Zero(t, b.PromotionAmount)
	assert.Equal(t, int64(86000), b.TotalPrice, "85500 rounds up to the next 1000")
}

func TestCalculateEmptyOrder(t *testing.T) {
	b, err := pricing.Calculate(nil, nil, nil, nil, nil, percentagePromo(10))
	require.NoError(t, err)
	assert.Zero(t, b.TotalBeforePromotion)
	assert.Zero(t, b.PromotionAmount)
	assert.Zero(t, b.TotalPrice)
}

func TestProductUnitPricePercentage(t *testing.T) {
	line := pricing.ProductLine{Product: model.Product{ID: 7, Price: 50000}, Quantity: 2, Total: 100000}

	// 10000 product discount spread over 100000 revenue knocks 10 percent off
	// each unit: 45000, already on a 1000 boundary.
	unit := pricing.ProductUnitPrice(line, 10000, 100000, true)
	assert.Equal(t, int64(45000), unit)
}

func TestProductUnitPriceFixedShare(t *testing.T) {
	lineA := pricing.ProductLine{Product: model.Product{ID: 7, Price: 50000}, Quantity: 2, Total: 100000}
	lineB := pricing.ProductLine{Product: model.Product{ID: 8, Price: 25000}, Quantity: 4, Total: 100000}

	// Fixed 20000 discount over 200000 revenue: each line carries its
	// revenue share (10000), divided over its quantity.
	unitA := pricing.ProductUnitPrice(lineA, 20000, 200000, false)
	unitB := pricing.ProductUnitPrice(lineB, 20000, 200000, false)
	assert.Equal(t, int64(45000), unitA)
	assert.Equal(t, int64(23000), unitB, "22500 rounds up to the next 1000")
}

func TestProductUnitPriceCombo(t *testing.T) {
	comboDiscount := 20.0
	line := pricing.ProductLine{
		Product:  model.Product{ID: 9, Price: 100000, ComboDiscount: &comboDiscount},
		Quantity: 1,
		Total:    100000,
	}

	unit := pricing.ProductUnitPrice(line, 0, 100000, true)
	assert.Equal(t, int64(80000), unit)
}

func TestProductUnitPriceComboCeilsFractionalUnit(t *testing.T) {
	comboDiscount := 20.0
	line := pricing.ProductLine{
		Product:  model.Product{ID: 9, Price: 38751, ComboDiscount: &comboDiscount},
		Quantity: 1,
		Total:    38751,
	}

	// 38751 at 80 percent is 31000.8; the fraction still charges the
	// next 1000-dong step.
	unit := pricing.ProductUnitPrice(line, 0, 38751, true)
	assert.Equal(t, int64(32000), unit)
}

func TestTicketCharge(t *testing.T) {
	prices := map[string]int64{"A1": 81000, "A2": 85500}
	assert.Equal(t, int64(81000), pricing.TicketCharge("A1", prices))
	assert.Equal(t, int64(86000), pricing.TicketCharge("A2", prices))
}

func TestSeatFinalPrice(t *testing.T) {
	prices := map[string]int64{"A1": 81000, "A2": 81000}

	// 16200 seat discount over 162000 total: each seat sheds its half.
	got := pricing.SeatFinalPrice("A1", prices, 162000, 16200)
	assert.Equal(t, int64(72900), got)

	assert.Equal(t, int64(81000), pricing.SeatFinalPrice("A1", prices, 0, 16200))
}

func TestOrderScore(t *testing.T) {
	assert.Equal(t, int64(236), pricing.OrderScore(236000, 0))
	assert.Equal(t, int64(186), pricing.OrderScore(236000, 50))
	assert.Equal(t, int64(-50), pricing.OrderScore(0, 50))
}
