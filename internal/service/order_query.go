package service

import (
	"context"

	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// GetOrder loads one order for display.  Staff see every order; everyone
// else only their own purchases, whether as actor or named customer.
func (s *OrderService) GetOrder(ctx context.Context, actorID string, actorRole model.Role, orderID uint64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actorRole.IsStaff() && order.UserID != actorID && order.CustomerID != actorID {
		return nil, repository.ErrForbidden
	}
	return order, nil
}

// ListMyOrders returns the actor's purchase history, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, actorID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, actorID)
}

// ScanQR verifies an admission token at the door, loads its order and
// burns every ticket on it.  A token that fails verification never
// touches storage.
func (s *OrderService) ScanQR(ctx context.Context, token string) (*model.Order, error) {
	orderID, err := utils.ParseQRToken(s.qrSecret, token)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ticketIDs, err := s.orders.TicketIDsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(ticketIDs) == 0 {
		return nil, ErrNoTickets
	}
	if err := s.orders.MarkTicketsUsed(ctx, ticketIDs); err != nil {
		return nil, err
	}
	return order, nil
}
