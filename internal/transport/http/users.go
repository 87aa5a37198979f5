package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
)

// ReservationLister is the minimal interface for the user history endpoint.
type ReservationLister interface {
	ListUserReservations(ctx context.Context, userID string) ([]domain.Reservation, error)
}

// HandleUserReservations returns an HTTP handler for
// GET /users/{id}/reservations.
func HandleUserReservations(svc ReservationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		userID, ok := parseUserReservationsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		reservations, err := svc.ListUserReservations(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserIDRequired) {
				writeError(w, http.StatusBadRequest, codeUserIDRequired, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]reservationResponse, 0, len(reservations))
		for _, res := range reservations {
			resp = append(resp, toReservationResponse(res))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseUserReservationsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "users" || parts[2] != "reservations" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
