package utils // package utils provides currency and token helpers shared across services

import (
	"fmt"
	"math"
	"time"
)

// usdRate is the fixed VND per USD rate used when a provider only accepts
// USD amounts.  The providers that bill in VND never see this value.
const usdRate = 25000.0

// RoundUpToNearest rounds amount up to the next multiple of unit.  Ticket
// and concession prices are always charged in 1000-dong steps.
func RoundUpToNearest(amount int64, unit int64) int64 {
	if unit <= 0 {
		return amount
	}
	if rem := amount % unit; rem != 0 {
		return amount + unit - rem
	}
	return amount
}

// VNDToUSD converts a whole-dong amount to a USD string with two decimal
// places, the format PayPal expects in purchase units.
func VNDToUSD(amount int64) string {
	return fmt.Sprintf("%.2f", float64(amount)/usdRate)
}

// VNDToUSDCents converts a whole-dong amount to integer USD cents, the
// unit Stripe checkout sessions bill in.
func VNDToUSDCents(amount int64) int64 {
	return int64(math.Round(float64(amount) / usdRate * 100))
}

// VnpayDate formats a timestamp the way the VNPay API expects
// (yyyyMMddHHmmss in local provider time).
func VnpayDate(t time.Time) string {
	return t.Format("20060102150405")
}
