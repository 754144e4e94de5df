package handler

import (
	"errors"   // for errors.Is comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/cinetick/cinema-booking/internal/hold"
	"github.com/cinetick/cinema-booking/internal/middleware"
	"github.com/cinetick/cinema-booking/internal/model"
	"github.com/cinetick/cinema-booking/internal/payment"
	"github.com/cinetick/cinema-booking/internal/repository"
	"github.com/cinetick/cinema-booking/internal/service"
	"github.com/cinetick/cinema-booking/internal/utils"
)

// OrderHandler exposes checkout and the order queries.  All methods
// assume JWT authentication already ran; role checks beyond that are
// registered per route.
type OrderHandler struct {
	Orders *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	if orders == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// Create handles POST /v1/orders.  The body is the client's order bill;
// the response carries the new order ID and the pay URL to redirect to
// (or the cash sentinel).
func (h *OrderHandler) Create(c echo.Context) error {
	actorID := middleware.ActorID(c)
	if actorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var bill model.OrderBill
	if err := c.Bind(&bill); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if bill.ScheduleID == 0 || len(bill.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id and seats are required"})
	}
	if bill.PromotionID == 0 {
		bill.PromotionID = model.NoPromotionID
	}

	result, err := h.Orders.CreateOrder(c.Request().Context(), actorID, bill, c.RealIP())
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	actorID := middleware.ActorID(c)
	if actorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	order, err := h.Orders.GetOrder(c.Request().Context(), actorID, middleware.ActorRole(c), orderID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// MyOrders handles GET /v1/my-orders.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	actorID := middleware.ActorID(c)
	if actorID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListMyOrders(c.Request().Context(), actorID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// ScanQR handles POST /v1/orders/scan-qr (staff only).  The body carries
// the admission token read at the door; a valid scan burns every ticket
// on the order and returns it.
func (h *OrderHandler) ScanQR(c echo.Context) error {
	var body struct {
		QRCode string `json:"qr_code"`
	}
	if err := c.Bind(&body); err != nil || body.QRCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}

	order, err := h.Orders.ScanQR(c.Request().Context(), body.QRCode)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// orderError maps service and repository errors onto HTTP statuses the
// way the clients expect them.
func orderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrCustomerIsSelf),
		errors.Is(err, service.ErrCustomerNotUser),
		errors.Is(err, service.ErrStaffNeedsCustomer),
		errors.Is(err, service.ErrInsufficientScore),
		errors.Is(err, repository.ErrStatusConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNegativeTotal),
		errors.Is(err, service.ErrPromotionInactive),
		errors.Is(err, service.ErrSeatsContested),
		errors.Is(err, service.ErrSeatsUnavailable),
		errors.Is(err, service.ErrTotalPriceMismatch),
		errors.Is(err, service.ErrNoTickets),
		errors.Is(err, hold.ErrHoldExpired),
		errors.Is(err, payment.ErrCreateFailed),
		errors.Is(err, utils.ErrInvalidQRToken):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("order handler: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
