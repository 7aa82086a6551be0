package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0ji3/my-trend-search/internal/models"
)

func result(id, listingID, score string) models.TrendResult {
	return models.TrendResult{
		ID:         id,
		ListingID:  listingID,
		TrendScore: decimal.RequireFromString(score),
	}
}

func TestRankedUpdatesOrdering(t *testing.T) {
	// B has the highest score; A and C tie and must fall back to listing
	// ID order, giving consecutive distinct ranks.
	results := []models.TrendResult{
		result("r-a", "listing-a", "50.00"),
		result("r-b", "listing-b", "80.00"),
		result("r-c", "listing-c", "50.00"),
	}

	updates := rankedUpdates(results, 10)
	if len(updates) != 3 {
		t.Fatalf("got %d updates, want 3", len(updates))
	}

	want := []rankUpdate{
		{ResultID: "r-b", Rank: 1, Trending: true},
		{ResultID: "r-a", Rank: 2, Trending: true},
		{ResultID: "r-c", Rank: 3, Trending: true},
	}
	for i, w := range want {
		if updates[i] != w {
			t.Errorf("updates[%d] = %+v, want %+v", i, updates[i], w)
		}
	}
}

func TestRankedUpdatesDeterministic(t *testing.T) {
	// The same population in a different input order must produce the same
	// rank assignment.
	forward := []models.TrendResult{
		result("r-1", "listing-1", "10.00"),
		result("r-2", "listing-2", "30.00"),
		result("r-3", "listing-3", "30.00"),
		result("r-4", "listing-4", "5.00"),
	}
	shuffled := []models.TrendResult{forward[3], forward[2], forward[0], forward[1]}

	a := rankedUpdates(forward, 2)
	b := rankedUpdates(shuffled, 2)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("update %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	// Ranks are dense 1..n regardless of ties.
	for i, u := range a {
		if u.Rank != i+1 {
			t.Errorf("rank at position %d = %d, want %d", i, u.Rank, i+1)
		}
	}
}

func TestRankedUpdatesTopNBoundary(t *testing.T) {
	build := func(n int) []models.TrendResult {
		results := make([]models.TrendResult, 0, n)
		for i := 0; i < n; i++ {
			results = append(results, result(
				fmt.Sprintf("r-%02d", i),
				fmt.Sprintf("listing-%02d", i),
				fmt.Sprintf("%d.00", 100-i),
			))
		}
		return results
	}

	// Exactly topN listings: every one is trending.
	updates := rankedUpdates(build(10), 10)
	for _, u := range updates {
		if !u.Trending {
			t.Errorf("rank %d not trending with exactly 10 listings", u.Rank)
		}
	}

	// One more than topN: only the last is not.
	updates = rankedUpdates(build(11), 10)
	for _, u := range updates[:10] {
		if !u.Trending {
			t.Errorf("rank %d should be trending", u.Rank)
		}
	}
	if last := updates[10]; last.Trending {
		t.Errorf("rank %d should not be trending", last.Rank)
	}

	// Smaller topN cuts deeper.
	updates = rankedUpdates(build(5), 3)
	trending := 0
	for _, u := range updates {
		if u.Trending {
			trending++
		}
	}
	if trending != 3 {
		t.Errorf("got %d trending with topN=3, want 3", trending)
	}
}

func TestRankedUpdatesEmpty(t *testing.T) {
	if updates := rankedUpdates(nil, 10); len(updates) != 0 {
		t.Errorf("got %d updates for empty input, want 0", len(updates))
	}
}

func TestAppendBounded(t *testing.T) {
	var errs []string
	for i := 0; i < 25; i++ {
		errs = appendBounded(errs, fmt.Sprintf("error %d", i))
	}
	if len(errs) != maxReportedErrors {
		t.Fatalf("got %d errors, want %d", len(errs), maxReportedErrors)
	}
	// The first errors are kept, later ones dropped.
	if errs[0] != "error 0" || errs[len(errs)-1] != "error 9" {
		t.Errorf("unexpected boundary entries: first=%q last=%q", errs[0], errs[len(errs)-1])
	}
}
