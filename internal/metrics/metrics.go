package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsConfirmed counts successful reservations.
	ReservationsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surplus_reservations_confirmed_total",
		Help: "Number of reservations confirmed.",
	})

	// ReservationsRejected counts rejected reservation attempts by reason.
	ReservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "surplus_reservations_rejected_total",
		Help: "Number of reservation attempts rejected, by reason.",
	}, []string{"reason"})

	// IdempotentReplays counts reserve calls answered from the ledger.
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surplus_reservations_replayed_total",
		Help: "Number of reserve calls replayed from a stored outcome.",
	})

	// CompensationFailures counts decrements that could not be reverted after
	// a ledger write failure. Every increment here needs operator attention.
	CompensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surplus_reservation_compensation_failures_total",
		Help: "Number of failed compensating increments; offer counts are off by one until repaired.",
	})

	// OffersSwept counts offers deactivated by the expiry sweeper.
	OffersSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "surplus_offers_swept_total",
		Help: "Number of offers deactivated after their pickup window passed.",
	})
)
