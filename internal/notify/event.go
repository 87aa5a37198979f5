package notify

import "encoding/json"

const KindOfferChanged = "offer.changed"

// Event is the change notification fanned out to subscribed clients.
// Delivery is best effort, at-least-once; clients are expected to re-fetch
// the offer list rather than patch local state.
type Event struct {
	Kind    string `json:"kind"`
	OfferID string `json:"offer_id"`
}

func (e Event) marshal() []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return b
}
