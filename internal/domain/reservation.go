package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusPickedUp  ReservationStatus = "picked_up"
	ReservationStatusNoShow    ReservationStatus = "no_show"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a ledger entry for one reservation attempt. Rejected
// attempts are recorded too so that idempotent retries replay the original
// outcome, not a fresh decision.
type Reservation struct {
	ID             string
	OfferID        string
	UserID         string
	PickupCode     string
	Status         ReservationStatus
	// RejectReason is set only on status=rejected rows.
	RejectReason string
	// PriceCents snapshots the sale price at reservation time; later price
	// changes on the offer must not affect it.
	PriceCents     int
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleStaff    ActorRole = "staff"
)

// CanTransition reports whether a reservation in status from may move to
// while driven by role. pending -> confirmed/rejected is engine-internal and
// deliberately absent here.
func CanTransition(from, to ReservationStatus, role ActorRole) bool {
	if from != ReservationStatusConfirmed {
		return false
	}
	switch to {
	case ReservationStatusCancelled:
		return role == RoleCustomer || role == RoleStaff
	case ReservationStatusPickedUp, ReservationStatusNoShow:
		return role == RoleStaff
	}
	return false
}

// RestoresStock reports whether moving a confirmed reservation to status
// hands the unit back to the offer.
func RestoresStock(to ReservationStatus) bool {
	return to == ReservationStatusCancelled || to == ReservationStatusNoShow
}
