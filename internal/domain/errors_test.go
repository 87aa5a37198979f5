package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRejectReasonRoundTrip(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{ErrOfferNotFound, ErrOfferInactive, ErrOfferExhausted} {
		reason, ok := RejectReasonFor(sentinel)
		if !ok {
			t.Fatalf("expected reason for %v", sentinel)
		}
		if got := RejectErrorFor(reason); !errors.Is(got, sentinel) {
			t.Fatalf("round trip via %q gave %v, want %v", reason, got, sentinel)
		}
	}
}

func TestRejectReasonForWrappedError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("reserve: %w", ErrOfferExhausted)
	reason, ok := RejectReasonFor(wrapped)
	if !ok || reason != "offer_exhausted" {
		t.Fatalf("expected offer_exhausted, got %q (%v)", reason, ok)
	}
}

func TestRejectReasonForUnknownError(t *testing.T) {
	t.Parallel()

	if _, ok := RejectReasonFor(errors.New("boom")); ok {
		t.Fatalf("unexpected reason for arbitrary error")
	}
	if got := RejectErrorFor("corrupted"); !errors.Is(got, ErrStoreUnavailable) {
		t.Fatalf("unknown stored reason should map to ErrStoreUnavailable, got %v", got)
	}
}
