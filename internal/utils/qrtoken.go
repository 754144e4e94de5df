package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidQRToken is returned when a scanned code does not verify or
// does not carry an order reference.
var ErrInvalidQRToken = errors.New("invalid qr token")

// NewQRToken signs an HS256 token embedding the order ID.  The token is
// rendered as a QR code in the confirmation mail and scanned at the door
// to mark the order's tickets used.
func NewQRToken(secret string, orderID uint64) (string, error) {
	claims := jwt.MapClaims{
		"order_id": orderID,
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseQRToken verifies a scanned token and returns the order ID it
// references.  Any parse or claim failure maps to ErrInvalidQRToken so
// handlers can answer with a single validation error.
func ParseQRToken(secret, token string) (uint64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidQRToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidQRToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidQRToken
	}
	raw, ok := claims["order_id"].(float64)
	if !ok || raw <= 0 {
		return 0, ErrInvalidQRToken
	}
	return uint64(raw), nil
}
