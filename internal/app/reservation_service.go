package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/clock"
	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
	"github.com/Rishi-Mehta1/surplus-saver/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InventoryStore is the offer-side persistence the engine depends on. The
// decrement must be atomic relative to concurrent callers; it is the only
// authority on whether a unit may be taken.
type InventoryStore interface {
	GetOffer(ctx context.Context, offerID string) (domain.Offer, error)
	DecrementIfReservable(ctx context.Context, offerID string, now time.Time) (priceCents int, ok bool, err error)
	IncrementItemsLeft(ctx context.Context, offerID string, qty int) error
	DeactivateExpired(ctx context.Context, now time.Time) ([]string, error)
}

// ReservationLedger is the append-ish reservation record store. Create must
// enforce idempotency-key and (offer, pickup code) uniqueness.
type ReservationLedger interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error)
	Create(ctx context.Context, res domain.Reservation) error
	GetForUpdate(ctx context.Context, reservationID string) (domain.Reservation, error)
	UpdateStatus(ctx context.Context, reservationID string, status domain.ReservationStatus, now time.Time) error
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	ForceNoShowForOffers(ctx context.Context, offerIDs []string, now time.Time) (int, error)
}

// ChangeNotifier broadcasts offer mutations to observers. Best effort only;
// reservation correctness never depends on delivery.
type ChangeNotifier interface {
	OfferChanged(ctx context.Context, offerID string)
}

type ReservationService struct {
	inventory InventoryStore
	ledger    ReservationLedger
	notifier  ChangeNotifier
	clock     clock.Clock
	logger    zerolog.Logger

	codeAttempts      int
	decrementAttempts int
	decrementBackoff  time.Duration

	newCode func() (string, error)
}

const (
	defaultCodeAttempts      = 5
	defaultDecrementAttempts = 3
	defaultDecrementBackoff  = 50 * time.Millisecond
)

func NewReservationService(inv InventoryStore, ledger ReservationLedger, notifier ChangeNotifier, clk clock.Clock, logger zerolog.Logger, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		inventory:         inv,
		ledger:            ledger,
		notifier:          notifier,
		clock:             clk,
		logger:            logger,
		codeAttempts:      defaultCodeAttempts,
		decrementAttempts: defaultDecrementAttempts,
		decrementBackoff:  defaultDecrementBackoff,
		newCode:           newPickupCode,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithPickupCodeAttempts overrides how many collisions are tolerated before
// the reservation is abandoned and compensated.
func WithPickupCodeAttempts(n int) ReservationServiceOption {
	return func(s *ReservationService) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

// WithDecrementRetry overrides the bounded retry applied to transient
// decrement failures.
func WithDecrementRetry(attempts int, backoff time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if attempts > 0 {
			s.decrementAttempts = attempts
		}
		if backoff > 0 {
			s.decrementBackoff = backoff
		}
	}
}

type ReserveInput struct {
	OfferID        string
	UserID         string
	IdempotencyKey string
}

// Reserve takes one unit of the offer for the user, or replays the stored
// outcome when the idempotency key has been seen before. On success the
// decrement and the ledger write have both happened; on failure neither has
// (a failed ledger write is compensated by re-incrementing the offer).
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (domain.Reservation, error) {
	if in.OfferID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}
	if in.UserID == "" {
		return domain.Reservation{}, domain.ErrUserIDRequired
	}
	if in.IdempotencyKey == "" {
		return domain.Reservation{}, domain.ErrIdempotencyKeyRequired
	}

	if existing, err := s.ledger.FindByIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
		return domain.Reservation{}, err
	} else if existing != nil {
		return s.replay(*existing, in)
	}

	now := s.clock.Now()

	var priceCents int
	var decremented bool
	err := withRetry(ctx, s.decrementAttempts, s.decrementBackoff, func() error {
		var err error
		priceCents, decremented, err = s.inventory.DecrementIfReservable(ctx, in.OfferID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidID) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		return domain.Reservation{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if !decremented {
		return s.reject(ctx, in, now)
	}

	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			if cerr := s.compensate(ctx, in.OfferID); cerr != nil {
				return domain.Reservation{}, cerr
			}
			return domain.Reservation{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}

		res := domain.Reservation{
			ID:             uuid.NewString(),
			OfferID:        in.OfferID,
			UserID:         in.UserID,
			PickupCode:     code,
			Status:         domain.ReservationStatusConfirmed,
			PriceCents:     priceCents,
			IdempotencyKey: in.IdempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = s.ledger.Create(ctx, res)
		if err == nil {
			metrics.ReservationsConfirmed.Inc()
			s.notifier.OfferChanged(ctx, in.OfferID)
			return res, nil
		}
		if errors.Is(err, domain.ErrPickupCodeCollision) {
			continue
		}
		if errors.Is(err, domain.ErrIdempotencyConflict) {
			// A concurrent retry with the same key won the race. Give the
			// unit back and answer from what that request stored.
			if cerr := s.compensate(ctx, in.OfferID); cerr != nil {
				return domain.Reservation{}, cerr
			}
			stored, ferr := s.ledger.FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if ferr != nil {
				return domain.Reservation{}, ferr
			}
			if stored != nil {
				return s.replay(*stored, in)
			}
			return domain.Reservation{}, domain.ErrIdempotencyConflict
		}
		if cerr := s.compensate(ctx, in.OfferID); cerr != nil {
			return domain.Reservation{}, cerr
		}
		return domain.Reservation{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if cerr := s.compensate(ctx, in.OfferID); cerr != nil {
		return domain.Reservation{}, cerr
	}
	return domain.Reservation{}, fmt.Errorf("%w: pickup code space exhausted", domain.ErrStoreUnavailable)
}

// replay answers a reserve call from a stored outcome. The key must belong
// to the same (offer, user) pair; otherwise two distinct requests collided
// on a key and neither outcome can be trusted for the other.
func (s *ReservationService) replay(stored domain.Reservation, in ReserveInput) (domain.Reservation, error) {
	if stored.OfferID != in.OfferID || stored.UserID != in.UserID {
		return domain.Reservation{}, domain.ErrIdempotencyConflict
	}
	metrics.IdempotentReplays.Inc()
	if stored.Status == domain.ReservationStatusRejected {
		return domain.Reservation{}, domain.RejectErrorFor(stored.RejectReason)
	}
	return stored, nil
}

// reject classifies a zero-row decrement and records the outcome so retries
// replay it. The classifying read is diagnostic only; it never authorizes a
// reservation.
func (s *ReservationService) reject(ctx context.Context, in ReserveInput, now time.Time) (domain.Reservation, error) {
	reasonErr := domain.ErrOfferExhausted

	offer, err := s.inventory.GetOffer(ctx, in.OfferID)
	switch {
	case errors.Is(err, domain.ErrOfferNotFound), errors.Is(err, domain.ErrInvalidID):
		// Nothing to record: the ledger references offers, and a retry on a
		// missing offer re-derives the same answer.
		metrics.ReservationsRejected.WithLabelValues("offer_not_found").Inc()
		return domain.Reservation{}, domain.ErrOfferNotFound
	case err != nil:
		return domain.Reservation{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	case !offer.Active || !offer.PickupEnd.After(now):
		reasonErr = domain.ErrOfferInactive
	}

	reason, _ := domain.RejectReasonFor(reasonErr)
	metrics.ReservationsRejected.WithLabelValues(reason).Inc()

	rejection := domain.Reservation{
		ID:             uuid.NewString(),
		OfferID:        in.OfferID,
		UserID:         in.UserID,
		Status:         domain.ReservationStatusRejected,
		RejectReason:   reason,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ledger.Create(ctx, rejection); err != nil {
		if errors.Is(err, domain.ErrIdempotencyConflict) {
			stored, ferr := s.ledger.FindByIdempotencyKey(ctx, in.IdempotencyKey)
			if ferr == nil && stored != nil {
				return s.replay(*stored, in)
			}
		}
		// Best effort: the caller still gets the rejection, a retry just
		// re-derives it instead of replaying.
		s.logger.Warn().Err(err).Str("offer_id", in.OfferID).Msg("failed to record rejection")
	}
	return domain.Reservation{}, reasonErr
}

// compensate reverts a decrement whose ledger write did not stick. Runs
// detached from the request's cancellation: once the decrement happened the
// revert must be attempted even if the caller went away.
func (s *ReservationService) compensate(ctx context.Context, offerID string) error {
	if err := s.inventory.IncrementItemsLeft(context.WithoutCancel(ctx), offerID, 1); err != nil {
		s.logger.Error().Err(err).Str("offer_id", offerID).
			Msg("compensating increment failed; offer under-counted, operator intervention required")
		metrics.CompensationFailures.Inc()
		return domain.ErrCompensationFailed
	}
	return nil
}

type TransitionInput struct {
	ReservationID string
	NewStatus     domain.ReservationStatus
	ActorRole     domain.ActorRole
}

// Transition moves a confirmed reservation to picked_up, no_show or
// cancelled. Cancellation and no-show restore the offer's count in the same
// transaction as the status write.
func (s *ReservationService) Transition(ctx context.Context, in TransitionInput) (domain.Reservation, error) {
	if in.ReservationID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Reservation
	var restocked bool

	err := s.ledger.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.ledger.GetForUpdate(txCtx, in.ReservationID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(res.Status, in.NewStatus, in.ActorRole) {
			return domain.ErrInvalidTransition
		}
		if err := s.ledger.UpdateStatus(txCtx, res.ID, in.NewStatus, now); err != nil {
			return err
		}
		if domain.RestoresStock(in.NewStatus) {
			if err := s.inventory.IncrementItemsLeft(txCtx, res.OfferID, 1); err != nil {
				return err
			}
			restocked = true
		}
		res.Status = in.NewStatus
		res.UpdatedAt = now
		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	if restocked {
		s.notifier.OfferChanged(ctx, result.OfferID)
	}
	return result, nil
}

// ListUserReservations returns the user's reservation history, newest first.
func (s *ReservationService) ListUserReservations(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	return s.ledger.ListByUser(ctx, userID)
}
