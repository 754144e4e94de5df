package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cinetick/cinema-booking/internal/model"
)

// CatalogRepo bundles the read-only lookups of reference data the order
// pipeline needs: schedules, ticket types, products, promotions and
// payment methods.  The catalog service owns all writes to these tables.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the provided database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// GetSchedule loads one non-deleted showtime.
func (r *CatalogRepo) GetSchedule(ctx context.Context, id uint64) (*model.Schedule, error) {
	const q = `SELECT id, movie_id, room_id, start_time, end_time, is_deleted
	           FROM schedules WHERE id = ? AND is_deleted = FALSE`
	var s model.Schedule
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartTime, &s.EndTime, &s.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetTicketTypes loads the ticket types for the requested audience
// types.  An empty result maps to ErrNotFound: an order naming an
// unknown audience type cannot be priced.
func (r *CatalogRepo) GetTicketTypes(ctx context.Context, audienceTypes []string) ([]model.TicketType, error) {
	if len(audienceTypes) == 0 {
		return nil, ErrNotFound
	}
	q := `SELECT id, ticket_name, audience_type, discount FROM ticket_type WHERE audience_type IN (?` +
		strings.Repeat(",?", len(audienceTypes)-1) + `)`
	args := make([]interface{}, 0, len(audienceTypes))
	for _, a := range audienceTypes {
		args = append(args, a)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []model.TicketType
	for rows.Next() {
		var tt model.TicketType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.AudienceType, &tt.Discount); err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, ErrNotFound
	}
	return types, nil
}

// GetProducts loads the requested non-deleted products with any combo
// discount joined in.  An empty result maps to ErrNotFound.
func (r *CatalogRepo) GetProducts(ctx context.Context, ids []uint64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	q := `SELECT p.id, p.name, p.price, p.category, c.discount
	      FROM products p
	      LEFT JOIN combos c ON c.id = p.id
	      WHERE p.is_deleted = FALSE AND p.id IN (?` + strings.Repeat(",?", len(ids)-1) + `)`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []model.Product
	for rows.Next() {
		var p model.Product
		var combo sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &combo); err != nil {
			return nil, err
		}
		if combo.Valid {
			d := combo.Float64
			p.ComboDiscount = &d
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return products, nil
}

// GetPromotion loads one active promotion with its type.
func (r *CatalogRepo) GetPromotion(ctx context.Context, id uint64) (*model.Promotion, error) {
	const q = `SELECT p.id, p.title, p.discount, pt.type, p.exchange, p.start_time, p.end_time, p.is_active
	           FROM promotion p
	           JOIN promotion_types pt ON pt.id = p.promotion_type_id
	           WHERE p.id = ? AND p.is_active = TRUE`
	var promo model.Promotion
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&promo.ID, &promo.Title, &promo.Discount, &promo.Type,
		&promo.Exchange, &promo.StartTime, &promo.EndTime, &promo.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetPaymentMethod resolves a payment method row into the closed enum.
func (r *CatalogRepo) GetPaymentMethod(ctx context.Context, id uint64) (model.PaymentMethod, error) {
	const q = `SELECT id FROM payment_methods WHERE id = ?`
	var raw uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	method := model.PaymentMethod(raw)
	if !method.Valid() {
		return 0, ErrNotFound
	}
	return method, nil
}
