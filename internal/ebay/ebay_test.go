package ebay

import (
	"context"
	"encoding/xml"
	"testing"
	"time"
)

func TestMockProviderPagination(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	tests := []struct {
		name           string
		page           int
		entriesPerPage int
		wantItems      int
		wantPages      int
	}{
		{"single page holds everything", 1, 200, 50, 1},
		{"first of several pages", 1, 20, 20, 3},
		{"middle page", 2, 20, 20, 3},
		{"short last page", 3, 20, 10, 3},
		{"page past the end is empty", 4, 20, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := m.GetActiveListings(ctx, tt.page, tt.entriesPerPage)
			if err != nil {
				t.Fatalf("GetActiveListings(%d, %d) error: %v", tt.page, tt.entriesPerPage, err)
			}
			if len(page.Items) != tt.wantItems {
				t.Errorf("got %d items, want %d", len(page.Items), tt.wantItems)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("got %d total pages, want %d", page.TotalPages, tt.wantPages)
			}
			if page.TotalEntries != 50 {
				t.Errorf("got %d total entries, want 50", page.TotalEntries)
			}
		})
	}

	if _, err := m.GetActiveListings(ctx, 0, 20); err == nil {
		t.Error("expected error for page 0")
	}
}

func TestMockProviderDeterministic(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	first, err := m.GetItem(ctx, "MOCK1000007")
	if err != nil {
		t.Fatalf("GetItem error: %v", err)
	}
	second, err := m.GetItem(ctx, "MOCK1000007")
	if err != nil {
		t.Fatalf("GetItem error: %v", err)
	}

	// Same item ID on the same day must produce identical data, or re-syncs
	// would rewrite daily metrics with different numbers.
	if first.Title != second.Title {
		t.Errorf("title changed between calls: %q vs %q", first.Title, second.Title)
	}
	if !first.CurrentPrice.Equal(second.CurrentPrice) {
		t.Errorf("price changed between calls: %s vs %s", first.CurrentPrice, second.CurrentPrice)
	}
	if first.ViewCount != second.ViewCount {
		t.Errorf("view count changed between calls: %d vs %d", first.ViewCount, second.ViewCount)
	}
	if first.WatchCount != second.WatchCount {
		t.Errorf("watch count changed between calls: %d vs %d", first.WatchCount, second.WatchCount)
	}

	// Different items should not be clones of each other.
	other, err := m.GetItem(ctx, "MOCK1000031")
	if err != nil {
		t.Fatalf("GetItem error: %v", err)
	}
	if other.ViewCount == first.ViewCount && other.WatchCount == first.WatchCount &&
		other.CurrentPrice.Equal(first.CurrentPrice) {
		t.Error("distinct items returned identical metrics")
	}
}

func TestMockProviderCountersAccumulate(t *testing.T) {
	m := NewMockProvider()
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	prev := m.ItemAt("MOCK1000003", day)
	for i := 1; i <= 14; i++ {
		cur := m.ItemAt("MOCK1000003", day.AddDate(0, 0, i))
		if cur.ViewCount <= prev.ViewCount {
			t.Fatalf("day +%d: view count went from %d to %d, want strictly increasing",
				i, prev.ViewCount, cur.ViewCount)
		}
		if cur.WatchCount < prev.WatchCount {
			t.Fatalf("day +%d: watch count went from %d to %d, want non-decreasing",
				i, prev.WatchCount, cur.WatchCount)
		}
		prev = cur
	}
}

func TestMockProviderListingTitlesMatchGetItem(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	page, err := m.GetActiveListings(ctx, 1, 200)
	if err != nil {
		t.Fatalf("GetActiveListings error: %v", err)
	}

	for _, summary := range page.Items[:5] {
		item, err := m.GetItem(ctx, summary.ItemID)
		if err != nil {
			t.Fatalf("GetItem(%s) error: %v", summary.ItemID, err)
		}
		if item.Title != summary.Title {
			t.Errorf("item %s: summary title %q != detail title %q", summary.ItemID, summary.Title, item.Title)
		}
	}
}

func TestParseGetItemResponse(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<GetItemResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Success</Ack>
  <Item>
    <ItemID>254123456789</ItemID>
    <Title>Wireless Bluetooth Headphones Pro</Title>
    <HitCount>142</HitCount>
    <WatchCount>11</WatchCount>
    <Quantity>3</Quantity>
    <ListingType>FixedPriceItem</ListingType>
    <SellingStatus>
      <CurrentPrice currencyID="USD">49.95</CurrentPrice>
      <BidCount>0</BidCount>
      <QuantitySold>1</QuantitySold>
      <ListingStatus>Active</ListingStatus>
    </SellingStatus>
    <PrimaryCategory>
      <CategoryID>58058</CategoryID>
      <CategoryName>Cell Phones &amp; Accessories</CategoryName>
    </PrimaryCategory>
    <PictureDetails>
      <GalleryURL>https://i.ebayimg.com/images/g/abc/s-l300.jpg</GalleryURL>
    </PictureDetails>
    <ListingDetails>
      <StartTime>2026-08-01T12:00:00Z</StartTime>
      <EndTime>2026-08-31T12:00:00Z</EndTime>
    </ListingDetails>
  </Item>
</GetItemResponse>`

	var parsed getItemResponse
	if err := xml.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := ackError("GetItem", parsed.Ack, parsed.Errors); err != nil {
		t.Fatalf("unexpected ack error: %v", err)
	}

	item := parsed.Item.toItem()
	if item.ItemID != "254123456789" {
		t.Errorf("ItemID = %q", item.ItemID)
	}
	if item.ViewCount != 142 {
		t.Errorf("ViewCount = %d, want 142", item.ViewCount)
	}
	if item.WatchCount != 11 {
		t.Errorf("WatchCount = %d, want 11", item.WatchCount)
	}
	if got := item.CurrentPrice.String(); got != "49.95" {
		t.Errorf("CurrentPrice = %s, want 49.95", got)
	}
	if item.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", item.Currency)
	}
	if item.ListingStatus != "Active" {
		t.Errorf("ListingStatus = %q, want Active", item.ListingStatus)
	}
	if item.CategoryName != "Cell Phones & Accessories" {
		t.Errorf("CategoryName = %q", item.CategoryName)
	}
	if item.StartTime == nil || item.StartTime.Day() != 1 {
		t.Errorf("StartTime not parsed: %v", item.StartTime)
	}
	if item.EndTime == nil || item.EndTime.Day() != 31 {
		t.Errorf("EndTime not parsed: %v", item.EndTime)
	}
}

func TestParseGetMyEbaySellingResponse(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<GetMyeBaySellingResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Success</Ack>
  <ActiveList>
    <ItemArray>
      <Item><ItemID>111</ItemID><Title>First</Title></Item>
      <Item><ItemID>222</ItemID><Title>Second</Title></Item>
    </ItemArray>
    <PaginationResult>
      <TotalNumberOfPages>4</TotalNumberOfPages>
      <TotalNumberOfEntries>700</TotalNumberOfEntries>
    </PaginationResult>
  </ActiveList>
</GetMyeBaySellingResponse>`

	var parsed getMyEbaySellingResponse
	if err := xml.Unmarshal([]byte(raw), &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(parsed.ActiveList.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(parsed.ActiveList.Items))
	}
	if parsed.ActiveList.Items[0].ItemID != "111" || parsed.ActiveList.Items[1].Title != "Second" {
		t.Errorf("items parsed wrong: %+v", parsed.ActiveList.Items)
	}
	if parsed.ActiveList.Pagination.TotalNumberOfPages != 4 {
		t.Errorf("TotalNumberOfPages = %d, want 4", parsed.ActiveList.Pagination.TotalNumberOfPages)
	}
	if parsed.ActiveList.Pagination.TotalNumberOfEntries != 700 {
		t.Errorf("TotalNumberOfEntries = %d, want 700", parsed.ActiveList.Pagination.TotalNumberOfEntries)
	}
}

func TestAckError(t *testing.T) {
	tests := []struct {
		name    string
		ack     string
		errs    []apiError
		wantErr bool
	}{
		{"success passes", "Success", nil, false},
		{"warning passes", "Warning", nil, false},
		{"failure with details", "Failure", []apiError{
			{ShortMessage: "Auth failed", LongMessage: "Invalid token", ErrorCode: "931", SeverityCode: "Error"},
		}, true},
		{"failure without details", "Failure", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ackError("GetItem", tt.ack, tt.errs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ackError(%q) error = %v, wantErr %v", tt.ack, err, tt.wantErr)
			}
			if err != nil && len(tt.errs) > 0 {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("error type = %T, want *APIError", err)
				}
				if apiErr.Code != "931" {
					t.Errorf("Code = %q, want 931", apiErr.Code)
				}
				if apiErr.Message != "Invalid token" {
					t.Errorf("Message = %q, want long message", apiErr.Message)
				}
			}
		})
	}
}
