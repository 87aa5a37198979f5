package domain

import "errors"

var (
	ErrOfferNotFound          = errors.New("offer not found")
	ErrOfferInactive          = errors.New("offer inactive")
	ErrOfferExhausted         = errors.New("offer exhausted")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")
	ErrPickupCodeCollision    = errors.New("pickup code collision")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInvalidPickupWindow    = errors.New("invalid pickup window")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrTitleRequired          = errors.New("title required")
	ErrStoreIDRequired        = errors.New("store id required")
	ErrUserIDRequired         = errors.New("user id required")
	ErrInvalidID              = errors.New("invalid id")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrCompensationFailed     = errors.New("compensation failed")
)

// RejectReasonFor maps the expected reservation rejections to the stable
// string stored in the ledger. Other errors are not recorded.
func RejectReasonFor(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrOfferNotFound):
		return "offer_not_found", true
	case errors.Is(err, ErrOfferInactive):
		return "offer_inactive", true
	case errors.Is(err, ErrOfferExhausted):
		return "offer_exhausted", true
	}
	return "", false
}

// RejectErrorFor is the inverse of RejectReasonFor, used when replaying a
// stored rejection.
func RejectErrorFor(reason string) error {
	switch reason {
	case "offer_not_found":
		return ErrOfferNotFound
	case "offer_inactive":
		return ErrOfferInactive
	case "offer_exhausted":
		return ErrOfferExhausted
	}
	return ErrStoreUnavailable
}
