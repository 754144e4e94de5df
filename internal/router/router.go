package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/cinetick/cinema-booking/internal/config"
	"github.com/cinetick/cinema-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/cinetick/cinema-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.  The
// seat map is read-heavy and guest-visible, so it sits behind the
// Redis-backed rate limit and response cache when a client is available.
func RegisterPublic(e *echo.Echo, h *handler.ScheduleSeatHandler, rdb *redis.Client) {
	e.GET("/v1/schedules/:id/seats", h.GetSeats,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	)
}

// RegisterHolds registers the seat hold endpoints under /v1.  Holding
// requires a session; checkout later consumes the hold.
func RegisterHolds(e *echo.Echo, h *handler.ScheduleSeatHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/schedules/:id/hold", h.HoldSeats)
	g.DELETE("/schedules/:id/hold", h.ReleaseHold)
}

// RegisterOrders registers the checkout and order-query endpoints under
// /v1.  Every route requires a valid access token; the door scanner is
// additionally restricted to staff.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/orders", h.Create)
	g.GET("/orders/:id", h.Get)
	g.GET("/my-orders", h.MyOrders)

	g.POST("/orders/scan-qr", h.ScanQR, middleware.RequireStaff())
}

// RegisterPaymentReturns registers the provider callback routes.  The
// providers redirect the customer's browser here, so these routes carry
// no JWT; the finalizer's PENDING guard and each provider's settlement
// proof are the protection.  A Redis-backed rate limit shields them from
// reference guessing when a Redis client is available.
func RegisterPaymentReturns(e *echo.Echo, h *handler.PaymentReturnHandler, rdb *redis.Client) {
	g := e.Group("/v1/payment", middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	g.GET("/momo/return", h.MomoReturn)
	g.GET("/paypal/return", h.PayPalReturn)
	g.GET("/paypal/cancel", h.PayPalCancel)
	g.GET("/visa/return", h.VisaReturn)
	g.GET("/visa/cancel", h.VisaCancel)
	g.GET("/vnpay/return", h.VnpayReturn)
	g.GET("/zalopay/return", h.ZalopayReturn)
}

// RegisterAdmin registers staff-only operational endpoints.  Responses
// for the report rerun are small, so no cache middleware is applied; the
// route still sits behind auth plus the staff role check.
func RegisterAdmin(e *echo.Echo, h *handler.ReportHandler, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireStaff())

	g.POST("/reports/daily", h.RunDaily)
}
