package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/app"
	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
)

type stubReserver struct {
	gotInput app.ReserveInput
	res      domain.Reservation
	err      error
	calls    int
}

func (s *stubReserver) Reserve(_ context.Context, in app.ReserveInput) (domain.Reservation, error) {
	s.calls++
	s.gotInput = in
	return s.res, s.err
}

type stubTransitioner struct {
	gotInput app.TransitionInput
	res      domain.Reservation
	err      error
}

func (s *stubTransitioner) Transition(_ context.Context, in app.TransitionInput) (domain.Reservation, error) {
	s.gotInput = in
	return s.res, s.err
}

func TestHandleCreateReservation(t *testing.T) {
	confirmed := domain.Reservation{
		ID:         "res-1",
		OfferID:    "offer-1",
		UserID:     "user-a",
		PickupCode: "AB23CD",
		Status:     domain.ReservationStatusConfirmed,
		PriceCents: 450,
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("creates reservation", func(t *testing.T) {
		svc := &stubReserver{res: confirmed}
		handler := HandleCreateReservation(svc)

		req := httptest.NewRequest(http.MethodPost, "/reservations",
			strings.NewReader(`{"offer_id":"offer-1","user_id":"user-a"}`))
		req.Header.Set(idempotencyHeader, "key-a")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp reservationResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.PickupCode != "AB23CD" || resp.Status != "confirmed" || resp.PriceCents != 450 {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if svc.gotInput.IdempotencyKey != "key-a" {
			t.Fatalf("expected header key passed through, got %q", svc.gotInput.IdempotencyKey)
		}
	})

	t.Run("falls back to key in body", func(t *testing.T) {
		svc := &stubReserver{res: confirmed}
		handler := HandleCreateReservation(svc)

		req := httptest.NewRequest(http.MethodPost, "/reservations",
			strings.NewReader(`{"offer_id":"offer-1","user_id":"user-a","idempotency_key":"key-b"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}
		if svc.gotInput.IdempotencyKey != "key-b" {
			t.Fatalf("expected body key passed through, got %q", svc.gotInput.IdempotencyKey)
		}
	})

	t.Run("requires an idempotency key", func(t *testing.T) {
		svc := &stubReserver{res: confirmed}
		handler := HandleCreateReservation(svc)

		req := httptest.NewRequest(http.MethodPost, "/reservations",
			strings.NewReader(`{"offer_id":"offer-1","user_id":"user-a"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if svc.calls != 0 {
			t.Fatalf("expected service untouched, got %d calls", svc.calls)
		}
		assertErrorCode(t, rec, codeIdempotencyRequired)
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		handler := HandleCreateReservation(&stubReserver{})

		req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(`{bad json`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		assertErrorCode(t, rec, codeInvalidRequestBody)
	})

	t.Run("rejects non-POST", func(t *testing.T) {
		handler := HandleCreateReservation(&stubReserver{})

		req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("maps engine errors", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"offer not found", domain.ErrOfferNotFound, http.StatusNotFound, codeOfferNotFound},
			{"offer inactive", domain.ErrOfferInactive, http.StatusConflict, codeOfferInactive},
			{"offer exhausted", domain.ErrOfferExhausted, http.StatusConflict, codeOfferExhausted},
			{"idempotency conflict", domain.ErrIdempotencyConflict, http.StatusConflict, codeIdempotencyConflict},
			{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
			{"user required", domain.ErrUserIDRequired, http.StatusBadRequest, codeUserIDRequired},
			{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
			{"compensation failed", domain.ErrCompensationFailed, http.StatusServiceUnavailable, codeStoreUnavailable},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				handler := HandleCreateReservation(&stubReserver{err: tc.err})

				req := httptest.NewRequest(http.MethodPost, "/reservations",
					strings.NewReader(`{"offer_id":"offer-1","user_id":"user-a"}`))
				req.Header.Set(idempotencyHeader, "key-a")
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				if rec.Code != tc.wantStatus {
					t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
				}
				assertErrorCode(t, rec, tc.wantCode)
			})
		}
	})
}

func TestHandleReservationTransition(t *testing.T) {
	pickedUp := domain.Reservation{
		ID:      "res-1",
		OfferID: "offer-1",
		UserID:  "user-a",
		Status:  domain.ReservationStatusPickedUp,
	}

	t.Run("transitions reservation", func(t *testing.T) {
		svc := &stubTransitioner{res: pickedUp}
		handler := HandleReservationTransition(svc)

		req := httptest.NewRequest(http.MethodPost, "/reservations/res-1/transition",
			strings.NewReader(`{"status":"picked_up","actor_role":"staff"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.gotInput.ReservationID != "res-1" {
			t.Fatalf("expected reservation id parsed, got %q", svc.gotInput.ReservationID)
		}
		if svc.gotInput.NewStatus != domain.ReservationStatusPickedUp || svc.gotInput.ActorRole != domain.RoleStaff {
			t.Fatalf("unexpected input: %+v", svc.gotInput)
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		handler := HandleReservationTransition(&stubTransitioner{})

		for _, path := range []string{"/reservations/res-1", "/reservations//transition", "/reservations/res-1/cancel"} {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("%s: expected status 404, got %d", path, rec.Code)
			}
		}
	})

	t.Run("maps transition errors", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"not found", domain.ErrReservationNotFound, http.StatusNotFound, codeReservationNotFound},
			{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict, codeInvalidTransition},
			{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
			{"unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				handler := HandleReservationTransition(&stubTransitioner{err: tc.err})

				req := httptest.NewRequest(http.MethodPost, "/reservations/res-1/transition",
					strings.NewReader(`{"status":"cancelled","actor_role":"customer"}`))
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				if rec.Code != tc.wantStatus {
					t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
				}
				assertErrorCode(t, rec, tc.wantCode)
			})
		}
	})
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != want {
		t.Fatalf("expected code %s, got %s", want, resp.Code)
	}
}
