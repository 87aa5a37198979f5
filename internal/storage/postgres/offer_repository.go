package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const offerColumns = `id, store_id, title, category, original_price_cents, sale_price_cents,
pickup_start, pickup_end, items_left, active, created_at`

func (r *OfferRepository) CreateOffer(ctx context.Context, offer domain.Offer) error {
	const stmt = `
INSERT INTO offers (id, store_id, title, category, original_price_cents, sale_price_cents,
	pickup_start, pickup_end, items_left, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		offer.ID,
		offer.StoreID,
		offer.Title,
		string(offer.Category),
		offer.OriginalPriceCents,
		offer.SalePriceCents,
		offer.PickupStart,
		offer.PickupEnd,
		offer.ItemsLeft,
		offer.Active,
		offer.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create offer: %w", err)
	}
	return nil
}

func (r *OfferRepository) GetOffer(ctx context.Context, offerID string) (domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	var o domain.Offer
	var category string
	err := r.queryRow(ctx, query, offerID).Scan(
		&o.ID, &o.StoreID, &o.Title, &category, &o.OriginalPriceCents, &o.SalePriceCents,
		&o.PickupStart, &o.PickupEnd, &o.ItemsLeft, &o.Active, &o.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Offer{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Offer{}, domain.ErrOfferNotFound
		}
		return domain.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	o.Category = domain.Category(category)
	return o, nil
}

func (r *OfferRepository) ListActiveOffers(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	query := `
SELECT ` + offerColumns + `
FROM offers
WHERE active = true AND pickup_end > $1 AND items_left > 0
ORDER BY pickup_end ASC`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		var category string
		if err := rows.Scan(
			&o.ID, &o.StoreID, &o.Title, &category, &o.OriginalPriceCents, &o.SalePriceCents,
			&o.PickupStart, &o.PickupEnd, &o.ItemsLeft, &o.Active, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.Category = domain.Category(category)
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	return offers, nil
}

// DecrementIfReservable performs the atomic check-and-decrement. The WHERE
// clause is the sole authority on whether a unit may be taken; concurrent
// callers serialize on the row update. Returns the sale price snapshot taken
// in the same statement, and ok=false when no row qualified.
func (r *OfferRepository) DecrementIfReservable(ctx context.Context, offerID string, now time.Time) (int, bool, error) {
	const stmt = `
UPDATE offers
SET items_left = items_left - 1
WHERE id = $1 AND active = true AND pickup_end > $2 AND items_left > 0
RETURNING sale_price_cents`

	var priceCents int
	err := r.queryRow(ctx, stmt, offerID, now).Scan(&priceCents)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, false, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrement offer: %w", err)
	}
	return priceCents, true, nil
}

// IncrementItemsLeft hands qty units back to the offer. Used for restock and
// for compensating a decrement whose ledger write failed.
func (r *OfferRepository) IncrementItemsLeft(ctx context.Context, offerID string, qty int) error {
	const stmt = `UPDATE offers SET items_left = items_left + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, offerID, qty)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("increment items left: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

func (r *OfferRepository) Deactivate(ctx context.Context, offerID string) error {
	const stmt = `UPDATE offers SET active = false WHERE id = $1`

	tag, err := r.exec(ctx, stmt, offerID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("deactivate offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

// DeactivateExpired flips active=false on offers whose pickup window has
// passed and returns their ids so the sweeper can close out reservations.
func (r *OfferRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]string, error) {
	const stmt = `
UPDATE offers SET active = false
WHERE active = true AND pickup_end <= $1
RETURNING id`

	rows, err := r.query(ctx, stmt, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate expired offers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired offer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("deactivate expired offers: %w", err)
	}
	return ids, nil
}

func (r *OfferRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OfferRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OfferRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
