// Package service holds the checkout orchestration, order queries and the
// daily settlement reconciler.  Handlers translate these errors to HTTP
// statuses; nothing here knows about echo.
package service

import "errors"

var (
	// ErrNegativeTotal rejects a bill whose displayed total is below zero.
	ErrNegativeTotal = errors.New("total price must be greater than 0")

	// ErrCustomerIsSelf rejects a checkout naming the acting account as
	// its own customer.
	ErrCustomerIsSelf = errors.New("cannot use your own ID as customer ID")

	// ErrCustomerNotUser rejects a named customer that is not a regular
	// user account.
	ErrCustomerNotUser = errors.New("customer must have USER role")

	// ErrStaffNeedsCustomer rejects a staff checkout that applies a real
	// promotion without naming the customer who earns and spends points.
	ErrStaffNeedsCustomer = errors.New("staff must provide customer ID when using promotion")

	// ErrPromotionInactive rejects a promotion outside its window.
	ErrPromotionInactive = errors.New("promotion is not valid at this time")

	// ErrInsufficientScore rejects a promotion whose exchange cost exceeds
	// the spending party's balance.
	ErrInsufficientScore = errors.New("not enough score to use this promotion")

	// ErrSeatsContested means another user's hold overlaps the request.
	ErrSeatsContested = errors.New("seats are being held by another user")

	// ErrSeatsUnavailable means a requested seat is already HELD or BOOKED
	// in the database.
	ErrSeatsUnavailable = errors.New("seats are already booked or held")

	// ErrTotalPriceMismatch means the recomputed total disagrees with the
	// one the client displayed.
	ErrTotalPriceMismatch = errors.New("total price mismatch, please refresh and try again")

	// ErrNoTickets means a scanned order carries no tickets to mark used.
	ErrNoTickets = errors.New("no tickets found for this order")
)
