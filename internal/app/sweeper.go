package app

import (
	"context"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/metrics"
)

// SweepExpired deactivates offers whose pickup window has passed and forces
// their still-confirmed reservations to no_show. No restock happens: the
// window is over, the unit cannot be resold.
func (s *ReservationService) SweepExpired(ctx context.Context) (offersSwept, reservationsClosed int, err error) {
	now := s.clock.Now()

	ids, err := s.inventory.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, 0, err
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	closed, err := s.ledger.ForceNoShowForOffers(ctx, ids, now)
	if err != nil {
		return len(ids), 0, err
	}

	metrics.OffersSwept.Add(float64(len(ids)))
	for _, id := range ids {
		s.notifier.OfferChanged(ctx, id)
	}
	return len(ids), closed, nil
}

// RunSweeper sweeps on the given interval until ctx is cancelled.
func (s *ReservationService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			swept, closed, err := s.SweepExpired(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("expiry sweep failed")
				continue
			}
			if swept > 0 {
				s.logger.Info().Int("offers", swept).Int("reservations", closed).Msg("expired offers swept")
			}
		}
	}
}
