package ebay

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

const mockItemCount = 50

var mockProducts = []string{
	"Vintage Watch Classic Design",
	"Wireless Bluetooth Headphones Pro",
	"Gaming Keyboard RGB Mechanical",
	"4K Action Camera Waterproof",
	"Smart Watch Fitness Tracker",
	"Laptop Stand Adjustable Aluminum",
	"LED Desk Lamp USB Rechargeable",
	"Phone Case Premium Leather",
	"External SSD 1TB Portable",
	"Coffee Maker Programmable 12-Cup",
}

var mockCategories = []struct {
	id   string
	name string
}{
	{"11450", "Clothing, Shoes & Accessories"},
	{"58058", "Cell Phones & Accessories"},
	{"293", "Computers/Tablets & Networking"},
	{"220", "Toys & Hobbies"},
	{"625", "Cameras & Photo"},
	{"267", "Books, Movies & Music"},
	{"11233", "Home & Garden"},
	{"888", "Sporting Goods"},
	{"15032", "Video Games & Consoles"},
	{"1", "Collectibles"},
}

// mockEpoch anchors the counter accumulation so any query day maps to a
// fixed point on each item's growth curve.
var mockEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MockProvider serves fake listing data so the full pipeline can run without
// marketplace credentials. Listing attributes are seeded from the item ID and
// stay stable across calls; view and watch counters grow deterministically
// day by day, so consecutive daily syncs see cumulative counts that only move
// upward, the way real hit counters do.
type MockProvider struct {
	itemCount int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{itemCount: mockItemCount}
}

func (m *MockProvider) GetActiveListings(_ context.Context, page, entriesPerPage int) (*ActiveListingsPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if entriesPerPage < 1 {
		entriesPerPage = 200
	}

	totalPages := (m.itemCount + entriesPerPage - 1) / entriesPerPage
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * entriesPerPage
	end := start + entriesPerPage
	if end > m.itemCount {
		end = m.itemCount
	}

	result := &ActiveListingsPage{
		TotalPages:   totalPages,
		TotalEntries: m.itemCount,
	}
	for i := start; i < end; i++ {
		itemID := fmt.Sprintf("MOCK%d", 1000000+i)
		stable := rand.New(rand.NewSource(seedFor(itemID)))
		result.Items = append(result.Items, ItemSummary{
			ItemID: itemID,
			Title:  mockProducts[stable.Intn(len(mockProducts))],
		})
	}
	return result, nil
}

func (m *MockProvider) GetItem(_ context.Context, itemID string) (*Item, error) {
	return m.ItemAt(itemID, time.Now()), nil
}

// ItemAt returns the item's state as of the given day. Past days yield the
// counts a sync on that day would have seen, which lets seed tooling backfill
// a consistent metric history.
func (m *MockProvider) ItemAt(itemID string, day time.Time) *Item {
	stable := rand.New(rand.NewSource(seedFor(itemID)))

	title := mockProducts[stable.Intn(len(mockProducts))]
	category := mockCategories[stable.Intn(len(mockCategories))]
	basePrice := 9.99 + stable.Float64()*290
	quantity := 1 + stable.Intn(10)

	day = day.UTC()
	startTime := day.AddDate(0, 0, -(1 + stable.Intn(30)))
	endTime := startTime.AddDate(0, 0, 60)

	// Per-item daily rates, plus a jitter seeded by the date. The jitter is
	// kept below the rate so counts never go backwards between days.
	viewRate := 5 + stable.Intn(40)
	watchRate := 1 + stable.Intn(5)

	dayNum := int(day.Sub(mockEpoch).Hours() / 24)
	if dayNum < 0 {
		dayNum = 0
	}
	daily := rand.New(rand.NewSource(seedFor(itemID + day.Format("2006-01-02"))))
	views := 50 + stable.Intn(300) + dayNum*viewRate + daily.Intn(viewRate)
	watches := 5 + stable.Intn(25) + dayNum*watchRate + daily.Intn(watchRate+1)

	// Sellers reprice now and then; a few percent either way gives the price
	// momentum component something to measure.
	price := decimal.NewFromFloat(basePrice * (1 + (daily.Float64()-0.5)*0.06)).Round(2)

	return &Item{
		ItemID:        itemID,
		Title:         title,
		CurrentPrice:  price,
		Currency:      "USD",
		ViewCount:     views,
		WatchCount:    watches,
		BidCount:      daily.Intn(20),
		Quantity:      quantity,
		QuantitySold:  daily.Intn(quantity + 1),
		ListingType:   "FixedPriceItem",
		ListingStatus: "Active",
		CategoryID:    category.id,
		CategoryName:  category.name,
		ImageURL:      fmt.Sprintf("https://i.ebayimg.com/images/g/%s/s-l300.jpg", itemID),
		StartTime:     &startTime,
		EndTime:       &endTime,
	}
}

func seedFor(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
