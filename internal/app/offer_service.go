package app

import (
	"context"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/clock"
	"github.com/Rishi-Mehta1/surplus-saver/internal/domain"
	"github.com/google/uuid"
)

// OfferRepository is the store-operations persistence surface.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offer domain.Offer) error
	GetOffer(ctx context.Context, offerID string) (domain.Offer, error)
	ListActiveOffers(ctx context.Context, now time.Time) ([]domain.Offer, error)
	IncrementItemsLeft(ctx context.Context, offerID string, qty int) error
	Deactivate(ctx context.Context, offerID string) error
}

type OfferService struct {
	repo     OfferRepository
	notifier ChangeNotifier
	clock    clock.Clock
}

func NewOfferService(repo OfferRepository, notifier ChangeNotifier, clk clock.Clock) *OfferService {
	return &OfferService{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
	}
}

type CreateOfferInput struct {
	StoreID            string
	Title              string
	Category           domain.Category
	OriginalPriceCents int
	SalePriceCents     int
	PickupStart        time.Time
	PickupEnd          time.Time
	Quantity           int
}

func (s *OfferService) CreateOffer(ctx context.Context, in CreateOfferInput) (domain.Offer, error) {
	if in.StoreID == "" {
		return domain.Offer{}, domain.ErrStoreIDRequired
	}
	if in.Title == "" {
		return domain.Offer{}, domain.ErrTitleRequired
	}
	if !domain.ValidCategory(in.Category) {
		return domain.Offer{}, domain.ErrInvalidCategory
	}
	if in.OriginalPriceCents < 0 || in.SalePriceCents < 0 || in.SalePriceCents > in.OriginalPriceCents {
		return domain.Offer{}, domain.ErrInvalidPrice
	}
	if !in.PickupStart.Before(in.PickupEnd) {
		return domain.Offer{}, domain.ErrInvalidPickupWindow
	}
	if in.Quantity <= 0 {
		return domain.Offer{}, domain.ErrInvalidQuantity
	}

	offer := domain.Offer{
		ID:                 uuid.NewString(),
		StoreID:            in.StoreID,
		Title:              in.Title,
		Category:           in.Category,
		OriginalPriceCents: in.OriginalPriceCents,
		SalePriceCents:     in.SalePriceCents,
		PickupStart:        in.PickupStart,
		PickupEnd:          in.PickupEnd,
		ItemsLeft:          in.Quantity,
		Active:             true,
		CreatedAt:          s.clock.Now(),
	}

	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return domain.Offer{}, err
	}
	s.notifier.OfferChanged(ctx, offer.ID)
	return offer, nil
}

func (s *OfferService) GetOffer(ctx context.Context, offerID string) (domain.Offer, error) {
	if offerID == "" {
		return domain.Offer{}, domain.ErrInvalidID
	}
	return s.repo.GetOffer(ctx, offerID)
}

// ListOffers returns offers a shopper can still reserve.
func (s *OfferService) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	return s.repo.ListActiveOffers(ctx, s.clock.Now())
}

// Restock adds units back to an offer (operator action).
func (s *OfferService) Restock(ctx context.Context, offerID string, qty int) error {
	if offerID == "" {
		return domain.ErrInvalidID
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := s.repo.IncrementItemsLeft(ctx, offerID, qty); err != nil {
		return err
	}
	s.notifier.OfferChanged(ctx, offerID)
	return nil
}

func (s *OfferService) Deactivate(ctx context.Context, offerID string) error {
	if offerID == "" {
		return domain.ErrInvalidID
	}
	if err := s.repo.Deactivate(ctx, offerID); err != nil {
		return err
	}
	s.notifier.OfferChanged(ctx, offerID)
	return nil
}
