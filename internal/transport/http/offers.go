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

// OfferService is the minimal interface needed by the offer endpoints.
type OfferService interface {
	CreateOffer(ctx context.Context, in app.CreateOfferInput) (domain.Offer, error)
	ListOffers(ctx context.Context) ([]domain.Offer, error)
	Restock(ctx context.Context, offerID string, qty int) error
	Deactivate(ctx context.Context, offerID string) error
}

// HandleOffers returns an HTTP handler for listing and creating offers.
func HandleOffers(svc OfferService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			offers, err := svc.ListOffers(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]offerResponse, 0, len(offers))
			for _, o := range offers {
				resp = append(resp, toOfferResponse(o))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createOfferRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			pickupStart, err := time.Parse(time.RFC3339, req.PickupStart)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPickupWindow, "invalid pickup_start format")
				return
			}
			pickupEnd, err := time.Parse(time.RFC3339, req.PickupEnd)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPickupWindow, "invalid pickup_end format")
				return
			}

			offer, err := svc.CreateOffer(r.Context(), app.CreateOfferInput{
				StoreID:            req.StoreID,
				Title:              req.Title,
				Category:           domain.Category(req.Category),
				OriginalPriceCents: req.OriginalPriceCents,
				SalePriceCents:     req.SalePriceCents,
				PickupStart:        pickupStart,
				PickupEnd:          pickupEnd,
				Quantity:           req.Quantity,
			})
			if err != nil {
				writeCreateOfferError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toOfferResponse(offer))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func writeCreateOfferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreIDRequired):
		writeError(w, http.StatusBadRequest, codeStoreIDRequired, err.Error())
	case errors.Is(err, domain.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, codeInvalidCategory, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidPickupWindow):
		writeError(w, http.StatusBadRequest, codeInvalidPickupWindow, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

// HandleOfferActions returns an HTTP handler for
// POST /offers/{id}/restock and POST /offers/{id}/deactivate.
func HandleOfferActions(svc OfferService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		offerID, action, ok := parseOfferActionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var err error
		switch action {
		case "restock":
			var req restockRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if derr := dec.Decode(&req); derr != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			err = svc.Restock(r.Context(), offerID, req.Quantity)
		case "deactivate":
			err = svc.Deactivate(r.Context(), offerID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrInvalidQuantity):
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case errors.Is(err, domain.ErrOfferNotFound):
				writeError(w, http.StatusNotFound, codeOfferNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func parseOfferActionPath(path string) (offerID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[0] != "offers" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

type createOfferRequest struct {
	StoreID            string `json:"store_id"`
	Title              string `json:"title"`
	Category           string `json:"category"`
	OriginalPriceCents int    `json:"original_price_cents"`
	SalePriceCents     int    `json:"sale_price_cents"`
	PickupStart        string `json:"pickup_start"`
	PickupEnd          string `json:"pickup_end"`
	Quantity           int    `json:"quantity"`
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type offerResponse struct {
	ID                 string    `json:"id"`
	StoreID            string    `json:"store_id"`
	Title              string    `json:"title"`
	Category           string    `json:"category"`
	OriginalPriceCents int       `json:"original_price_cents"`
	SalePriceCents     int       `json:"sale_price_cents"`
	PickupStart        time.Time `json:"pickup_start"`
	PickupEnd          time.Time `json:"pickup_end"`
	ItemsLeft          int       `json:"items_left"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
}

func toOfferResponse(o domain.Offer) offerResponse {
	return offerResponse{
		ID:                 o.ID,
		StoreID:            o.StoreID,
		Title:              o.Title,
		Category:           string(o.Category),
		OriginalPriceCents: o.OriginalPriceCents,
		SalePriceCents:     o.SalePriceCents,
		PickupStart:        o.PickupStart,
		PickupEnd:          o.PickupEnd,
		ItemsLeft:          o.ItemsLeft,
		Active:             o.Active,
		CreatedAt:          o.CreatedAt,
	}
}
