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

const (
	idempotencyKeyConstraint = "reservations_idempotency_key_key"
	pickupCodeConstraint     = "reservations_offer_pickup_code_key"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const reservationColumns = `id, offer_id, user_id, pickup_code, status, reject_reason,
price_cents, idempotency_key, created_at, updated_at`

func (r *ReservationRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE idempotency_key = $1`

	res, err := r.scanOne(r.queryRow(ctx, query, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find reservation by idempotency key: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, offer_id, user_id, pickup_code, status, reject_reason,
	price_cents, idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.OfferID,
		res.UserID,
		res.PickupCode,
		string(res.Status),
		res.RejectReason,
		res.PriceCents,
		res.IdempotencyKey,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		switch violatedConstraint(err) {
		case idempotencyKeyConstraint:
			return domain.ErrIdempotencyConflict
		case pickupCodeConstraint:
			return domain.ErrPickupCodeCollision
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, reservationID string) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`

	res, err := r.scanOne(r.queryRow(ctx, query, reservationID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, reservationID string, status domain.ReservationStatus, now time.Time) error {
	const stmt = `UPDATE reservations SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, reservationID, string(status), now)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
FROM reservations
WHERE user_id = $1 AND status <> 'rejected'
ORDER BY created_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations by user: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations by user: %w", err)
	}
	return out, nil
}

// ForceNoShowForOffers closes out confirmed reservations on swept offers.
// No restock: the pickup window has passed, the unit is gone either way.
func (r *ReservationRepository) ForceNoShowForOffers(ctx context.Context, offerIDs []string, now time.Time) (int, error) {
	if len(offerIDs) == 0 {
		return 0, nil
	}
	const stmt = `
UPDATE reservations SET status = 'no_show', updated_at = $2
WHERE offer_id = ANY($1) AND status = 'confirmed'`

	tag, err := r.exec(ctx, stmt, offerIDs, now)
	if err != nil {
		return 0, fmt.Errorf("force no-show: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReservationRepository) scanOne(row rowScanner) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	var pickupCode, rejectReason *string
	err := row.Scan(
		&res.ID, &res.OfferID, &res.UserID, &pickupCode, &status, &rejectReason,
		&res.PriceCents, &res.IdempotencyKey, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	if pickupCode != nil {
		res.PickupCode = *pickupCode
	}
	if rejectReason != nil {
		res.RejectReason = *rejectReason
	}
	return res, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
