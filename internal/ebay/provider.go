// Package ebay provides access to the eBay Trading API for seller listing
// data. The legacy XML Trading API is the only surface that exposes per
// listing view and watch counts, so both the real client and the
// deterministic mock speak its vocabulary.
package ebay

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Item holds the listing details and engagement counters returned by GetItem.
type Item struct {
	ItemID        string
	Title         string
	CurrentPrice  decimal.Decimal
	Currency      string
	ViewCount     int
	WatchCount    int
	BidCount      int
	Quantity      int
	QuantitySold  int
	ListingType   string
	ListingStatus string
	CategoryID    string
	CategoryName  string
	ImageURL      string
	StartTime     *time.Time
	EndTime       *time.Time
}

// ItemSummary is a single entry from a page of the seller's active listings.
type ItemSummary struct {
	ItemID string
	Title  string
}

// ActiveListingsPage is one page of GetMyeBaySelling results.
type ActiveListingsPage struct {
	Items        []ItemSummary
	TotalPages   int
	TotalEntries int
}

// Provider fetches seller listing data from the marketplace. Implemented by
// the Trading API client and by MockProvider for credential-free operation.
type Provider interface {
	// GetActiveListings returns one page of the seller's active listings.
	// Pages are 1-indexed.
	GetActiveListings(ctx context.Context, page, entriesPerPage int) (*ActiveListingsPage, error)

	// GetItem returns full details for a single listing, including view and
	// watch counts.
	GetItem(ctx context.Context, itemID string) (*Item, error)
}
