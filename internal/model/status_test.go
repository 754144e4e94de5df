package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinetick/cinema-booking/internal/model"
)

func TestSeatStatusTransitions(t *testing.T) {
	assert.True(t, model.SeatNotHeld.CanTransition(model.SeatHeld))
	assert.True(t, model.SeatHeld.CanTransition(model.SeatBooked))
	assert.True(t, model.SeatHeld.CanTransition(model.SeatNotHeld))

	assert.False(t, model.SeatNotHeld.CanTransition(model.SeatBooked), "booking skips the hold step")
	assert.False(t, model.SeatBooked.CanTransition(model.SeatHeld), "booked is terminal")
	assert.False(t, model.SeatBooked.CanTransition(model.SeatNotHeld))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, model.OrderPending.CanTransition(model.OrderSuccess))
	assert.True(t, model.OrderPending.CanTransition(model.OrderFailed))

	assert.False(t, model.OrderSuccess.CanTransition(model.OrderFailed))
	assert.False(t, model.OrderFailed.CanTransition(model.OrderSuccess))
	assert.False(t, model.OrderPending.CanTransition(model.OrderPending))
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, model.MethodCash.IsCash())
	assert.False(t, model.MethodVnpay.IsCash())

	assert.True(t, model.MethodZalopay.Valid())
	assert.False(t, model.PaymentMethod(0).Valid())
	assert.False(t, model.PaymentMethod(7).Valid())

	assert.Equal(t, "VNPAY", model.MethodVnpay.String())
	assert.Equal(t, "UNKNOWN", model.PaymentMethod(99).String())
	assert.Len(t, model.AllPaymentMethods(), 6)
}
