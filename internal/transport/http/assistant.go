package http

import (
	"encoding/json"
	"net/http"

	"github.com/Rishi-Mehta1/surplus-saver/internal/ai"
)

// HandleAssistant returns an HTTP handler that forwards a shopper prompt to
// the completion model and relays the reply verbatim.
func HandleAssistant(completer ai.Completer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req assistantRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil || req.Prompt == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		reply, err := completer.Complete(r.Context(), req.Prompt)
		if err != nil {
			writeError(w, http.StatusBadGateway, codeAssistantUnavailable, "assistant unavailable, please try again")
			return
		}

		writeJSON(w, http.StatusOK, assistantResponse{Reply: reply})
	}
}

type assistantRequest struct {
	Prompt string `json:"prompt"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}
