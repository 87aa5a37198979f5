package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
)

// fakeInventory is an in-memory InventoryStore and OfferRepository whose
// decrement mirrors the conditional-update semantics of the real store.
type fakeInventory struct {
	mu     sync.Mutex
	offers map[string]*domain.Offer

	decrementFailures int   // fail this many decrements with a transient error
	incrementErr      error // injected IncrementItemsLeft failure
}

func newFakeInventory(offers ...domain.Offer) *fakeInventory {
	f := &fakeInventory{offers: make(map[string]*domain.Offer)}
	for _, o := range offers {
		oc := o
		f.offers[o.ID] = &oc
	}
	return f
}

func (f *fakeInventory) GetOffer(_ context.Context, offerID string) (domain.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return domain.Offer{}, domain.ErrOfferNotFound
	}
	return *o, nil
}

func (f *fakeInventory) DecrementIfReservable(_ context.Context, offerID string, now time.Time) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decrementFailures > 0 {
		f.decrementFailures--
		return 0, false, errTransient
	}
	o, ok := f.offers[offerID]
	if !ok || !o.Active || !o.PickupEnd.After(now) || o.ItemsLeft <= 0 {
		return 0, false, nil
	}
	o.ItemsLeft--
	return o.SalePriceCents, true, nil
}

func (f *fakeInventory) IncrementItemsLeft(_ context.Context, offerID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	o, ok := f.offers[offerID]
	if !ok {
		return domain.ErrOfferNotFound
	}
	o.ItemsLeft += qty
	return nil
}

func (f *fakeInventory) DeactivateExpired(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept []string
	for id, o := range f.offers {
		if o.Active && !o.PickupEnd.After(now) {
			o.Active = false
			swept = append(swept, id)
		}
	}
	return swept, nil
}

func (f *fakeInventory) CreateOffer(_ context.Context, offer domain.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oc := offer
	f.offers[offer.ID] = &oc
	return nil
}

func (f *fakeInventory) ListActiveOffers(_ context.Context, now time.Time) ([]domain.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Offer
	for _, o := range f.offers {
		if o.Active && o.PickupEnd.After(now) && o.ItemsLeft > 0 {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PickupEnd.Before(out[j].PickupEnd) })
	return out, nil
}

func (f *fakeInventory) Deactivate(_ context.Context, offerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return domain.ErrOfferNotFound
	}
	o.Active = false
	return nil
}

func (f *fakeInventory) itemsLeft(offerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.offers[offerID]; ok {
		return o.ItemsLeft
	}
	return -1
}

func (f *fakeInventory) restock(offerID string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.offers[offerID]; ok {
		o.ItemsLeft += qty
	}
}

func (f *fakeInventory) setSalePrice(offerID string, cents int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.offers[offerID]; ok {
		o.SalePriceCents = cents
	}
}

func (f *fakeInventory) offerCopy(offerID string) domain.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.offers[offerID]; ok {
		return *o
	}
	return domain.Offer{}
}

var errTransient = &transientError{}

type transientError struct{}

func (*transientError) Error() string { return "transient store error" }

// fakeLedger is an in-memory ReservationLedger enforcing the same unique
// constraints as the Postgres schema.
type fakeLedger struct {
	mu    sync.Mutex
	byID  map[string]domain.Reservation
	byKey map[string]string   // idempotency key -> reservation id
	codes map[string]struct{} // offerID + "|" + pickup code

	failConfirmedCreate error // injected failure for confirmed inserts
	codeCollisions      int   // force this many pickup-code collisions
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		byID:  make(map[string]domain.Reservation),
		byKey: make(map[string]string),
		codes: make(map[string]struct{}),
	}
}

func (f *fakeLedger) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeLedger) FindByIdempotencyKey(_ context.Context, key string) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byKey[key]
	if !ok {
		return nil, nil
	}
	res := f.byID[id]
	return &res, nil
}

func (f *fakeLedger) Create(_ context.Context, res domain.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.Status == domain.ReservationStatusConfirmed && f.failConfirmedCreate != nil {
		return f.failConfirmedCreate
	}
	if res.PickupCode != "" && f.codeCollisions > 0 {
		f.codeCollisions--
		return domain.ErrPickupCodeCollision
	}
	if _, exists := f.byKey[res.IdempotencyKey]; exists {
		return domain.ErrIdempotencyConflict
	}
	if res.PickupCode != "" {
		codeKey := res.OfferID + "|" + res.PickupCode
		if _, exists := f.codes[codeKey]; exists {
			return domain.ErrPickupCodeCollision
		}
		f.codes[codeKey] = struct{}{}
	}
	f.byID[res.ID] = res
	f.byKey[res.IdempotencyKey] = res.ID
	return nil
}

func (f *fakeLedger) GetForUpdate(_ context.Context, reservationID string) (domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[reservationID]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return res, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, reservationID string, status domain.ReservationStatus, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[reservationID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	res.Status = status
	res.UpdatedAt = now
	f.byID[reservationID] = res
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Reservation
	for _, res := range f.byID {
		if res.UserID == userID && res.Status != domain.ReservationStatusRejected {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedger) ForceNoShowForOffers(_ context.Context, offerIDs []string, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make(map[string]struct{}, len(offerIDs))
	for _, id := range offerIDs {
		ids[id] = struct{}{}
	}
	n := 0
	for id, res := range f.byID {
		if _, hit := ids[res.OfferID]; hit && res.Status == domain.ReservationStatusConfirmed {
			res.Status = domain.ReservationStatusNoShow
			res.UpdatedAt = now
			f.byID[id] = res
			n++
		}
	}
	return n, nil
}

func (f *fakeLedger) put(res domain.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[res.ID] = res
	if res.IdempotencyKey != "" {
		f.byKey[res.IdempotencyKey] = res.ID
	}
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeLedger) byKeyCopy(key string) *domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byKey[key]
	if !ok {
		return nil
	}
	res := f.byID[id]
	return &res
}

func (f *fakeLedger) byIDCopy(id string) domain.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type nopNotifier struct{}

func (nopNotifier) OfferChanged(context.Context, string) {}
