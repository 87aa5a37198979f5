package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/app"
	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

// Reserver is the minimal interface needed to create a reservation.
type Reserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (domain.Reservation, error)
}

// Transitioner is the minimal interface needed to move a reservation through
// its state machine.
type Transitioner interface {
	Transition(ctx context.Context, in app.TransitionInput) (domain.Reservation, error)
}

// HandleCreateReservation returns an HTTP handler for reserving a surplus
// bag. The Idempotency-Key header makes retried calls safe; clients that
// time out must retry with the same key.
func HandleCreateReservation(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createReservationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		key := r.Header.Get(idempotencyHeader)
		if key == "" {
			key = req.IdempotencyKey
		}
		if key == "" {
			writeError(w, http.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
			return
		}

		res, err := svc.Reserve(r.Context(), app.ReserveInput{
			OfferID:        req.OfferID,
			UserID:         req.UserID,
			IdempotencyKey: key,
		})
		if err != nil {
			writeReserveError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReservationResponse(res))
	}
}

func writeReserveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
	case errors.Is(err, domain.ErrUserIDRequired):
		writeError(w, http.StatusBadRequest, codeUserIDRequired, err.Error())
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
	case errors.Is(err, domain.ErrOfferNotFound):
		writeError(w, http.StatusNotFound, codeOfferNotFound, err.Error())
	case errors.Is(err, domain.ErrOfferInactive):
		writeError(w, http.StatusConflict, codeOfferInactive, "offer is no longer available")
	case errors.Is(err, domain.ErrOfferExhausted):
		writeError(w, http.StatusConflict, codeOfferExhausted, "offer is no longer available, refresh for other offers")
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, codeIdempotencyConflict, domain.ErrIdempotencyConflict.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "temporarily unavailable, please try again")
	case errors.Is(err, domain.ErrCompensationFailed):
		// Operator alerting happens in the engine; the caller only sees a
		// generic failure.
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "temporarily unavailable, please try again")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// HandleReservationTransition returns an HTTP handler for
// POST /reservations/{id}/transition.
func HandleReservationTransition(svc Transitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		reservationID, ok := parseTransitionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req transitionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Transition(r.Context(), app.TransitionInput{
			ReservationID: reservationID,
			NewStatus:     domain.ReservationStatus(req.Status),
			ActorRole:     domain.ActorRole(req.ActorRole),
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrReservationNotFound):
				writeError(w, http.StatusNotFound, codeReservationNotFound, err.Error())
			case errors.Is(err, domain.ErrInvalidTransition):
				writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, toReservationResponse(res))
	}
}

func parseTransitionPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "reservations" || parts[2] != "transition" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type createReservationRequest struct {
	OfferID        string `json:"offer_id"`
	UserID         string `json:"user_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type transitionRequest struct {
	Status    string `json:"status"`
	ActorRole string `json:"actor_role"`
}

type reservationResponse struct {
	ID         string    `json:"id"`
	OfferID    string    `json:"offer_id"`
	UserID     string    `json:"user_id"`
	PickupCode string    `json:"pickup_code,omitempty"`
	Status     string    `json:"status"`
	PriceCents int       `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         res.ID,
		OfferID:    res.OfferID,
		UserID:     res.UserID,
		PickupCode: res.PickupCode,
		Status:     string(res.Status),
		PriceCents: res.PriceCents,
		CreatedAt:  res.CreatedAt,
	}
}
