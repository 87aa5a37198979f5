package domain

import "time"

type Category string

const (
	CategoryBakery  Category = "bakery"
	CategoryProduce Category = "produce"
	CategoryDeli    Category = "deli"
	CategoryDairy   Category = "dairy"
	CategoryGrocery Category = "grocery"
)

// ValidCategory reports whether c is one of the known offer categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryBakery, CategoryProduce, CategoryDeli, CategoryDairy, CategoryGrocery:
		return true
	}
	return false
}

// Offer represents a surplus bag listed by a store. ItemsLeft is the only
// contended field; it is mutated exclusively through conditional updates.
type Offer struct {
	ID                 string
	StoreID            string
	Title              string
	Category           Category
	OriginalPriceCents int
	SalePriceCents     int
	PickupStart        time.Time
	PickupEnd          time.Time
	ItemsLeft          int
	Active             bool
	CreatedAt          time.Time
}

// Reservable reports whether the offer can accept a reservation at now.
// The authoritative check happens inside the conditional decrement; this is
// only used for diagnostics after a zero-row update.
func (o Offer) Reservable(now time.Time) bool {
	return o.Active && o.PickupEnd.After(now) && o.ItemsLeft > 0
}
