package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeOfferNotFound        = "offer_not_found"
	codeOfferInactive        = "offer_inactive"
	codeOfferExhausted       = "offer_exhausted"
	codeReservationNotFound  = "reservation_not_found"
	codeInvalidTransition    = "invalid_transition"
	codeIdempotencyRequired  = "idempotency_key_required"
	codeIdempotencyConflict  = "idempotency_conflict"
	codeUserIDRequired       = "user_id_required"
	codeStoreIDRequired      = "store_id_required"
	codeTitleRequired        = "title_required"
	codeInvalidCategory      = "invalid_category"
	codeInvalidPrice         = "invalid_price"
	codeInvalidPickupWindow  = "invalid_pickup_window"
	codeInvalidQuantity      = "invalid_quantity"
	codeStoreUnavailable     = "store_unavailable"
	codeAssistantUnavailable = "assistant_unavailable"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
