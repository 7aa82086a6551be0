package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/0ji3/my-trend-search/internal/ebay"
)

type fakeProvider struct {
	pages    [][]ebay.ItemSummary
	failPage int // 1-indexed page that errors, 0 for none
	calls    int
}

func (f *fakeProvider) GetActiveListings(_ context.Context, page, _ int) (*ebay.ActiveListingsPage, error) {
	f.calls++
	if f.failPage != 0 && page == f.failPage {
		return nil, errors.New("marketplace unavailable")
	}
	if page < 1 || page > len(f.pages) {
		return &ebay.ActiveListingsPage{TotalPages: len(f.pages)}, nil
	}
	return &ebay.ActiveListingsPage{
		Items:      f.pages[page-1],
		TotalPages: len(f.pages),
	}, nil
}

func (f *fakeProvider) GetItem(_ context.Context, itemID string) (*ebay.Item, error) {
	return &ebay.Item{ItemID: itemID, ListingStatus: "Active"}, nil
}

func summaries(prefix string, n int) []ebay.ItemSummary {
	out := make([]ebay.ItemSummary, n)
	for i := range out {
		out[i] = ebay.ItemSummary{ItemID: fmt.Sprintf("%s-%d", prefix, i)}
	}
	return out
}

func TestFetchAllActiveCollectsEveryPage(t *testing.T) {
	provider := &fakeProvider{pages: [][]ebay.ItemSummary{
		summaries("a", 3),
		summaries("b", 3),
		summaries("c", 2),
	}}
	svc := NewListingSyncService(provider, 3, 100)

	items, apiCalls, err := svc.fetchAllActive(context.Background())
	if err != nil {
		t.Fatalf("fetchAllActive error: %v", err)
	}
	if len(items) != 8 {
		t.Errorf("got %d items, want 8", len(items))
	}
	if apiCalls != 3 {
		t.Errorf("got %d API calls, want 3", apiCalls)
	}
	if items[0].ItemID != "a-0" || items[7].ItemID != "c-1" {
		t.Errorf("page order broken: first=%s last=%s", items[0].ItemID, items[7].ItemID)
	}
}

func TestFetchAllActiveStopsAtItemCap(t *testing.T) {
	provider := &fakeProvider{pages: [][]ebay.ItemSummary{
		summaries("a", 5),
		summaries("b", 5),
		summaries("c", 5),
	}}
	svc := NewListingSyncService(provider, 5, 7)

	items, apiCalls, err := svc.fetchAllActive(context.Background())
	if err != nil {
		t.Fatalf("fetchAllActive error: %v", err)
	}
	if len(items) != 7 {
		t.Errorf("got %d items, want cap of 7", len(items))
	}
	// The cap was hit on page two; page three must not be fetched.
	if apiCalls != 2 {
		t.Errorf("got %d API calls, want 2", apiCalls)
	}
}

func TestFetchAllActiveEnumerationFailure(t *testing.T) {
	provider := &fakeProvider{
		pages:    [][]ebay.ItemSummary{summaries("a", 5), summaries("b", 5)},
		failPage: 2,
	}
	svc := NewListingSyncService(provider, 5, 100)

	_, _, err := svc.fetchAllActive(context.Background())
	if err == nil {
		t.Fatal("expected error when a page fetch fails")
	}
}

func TestSyncCacheKeyPerDay(t *testing.T) {
	morning := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 26, 0, 1, 0, 0, time.UTC)

	if syncCacheKey("acct", morning) != syncCacheKey("acct", evening) {
		t.Error("same account and day should share a cache key")
	}
	if syncCacheKey("acct", morning) == syncCacheKey("acct", nextDay) {
		t.Error("different days must not share a cache key")
	}
	if syncCacheKey("acct", morning) == syncCacheKey("other", morning) {
		t.Error("different accounts must not share a cache key")
	}
}
