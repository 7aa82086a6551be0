package services

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0ji3/my-trend-search/internal/models"
)

// fakeHistory is an in-memory MetricReader.
type fakeHistory struct {
	snapshots map[string][]models.DailyMetric
}

func (f *fakeHistory) Range(listingID string, start, end time.Time) ([]models.DailyMetric, error) {
	var out []models.DailyMetric
	for _, m := range f.snapshots[listingID] {
		d := DateOnly(m.RecordedDate)
		if !d.Before(start) && !d.After(end) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedDate.Before(out[j].RecordedDate)
	})
	return out, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// snap builds a snapshot; price "" means no recorded price that day.
func snap(date string, views, watches int, price string) models.DailyMetric {
	m := models.DailyMetric{
		RecordedDate: day(date),
		ViewCount:    views,
		WatchCount:   watches,
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		m.CurrentPrice = &p
	}
	return m
}

func scoreWith(t *testing.T, snapshots []models.DailyMetric, analysisDate string) *TrendScore {
	t.Helper()
	scorer := NewTrendScorer(&fakeHistory{snapshots: map[string][]models.DailyMetric{
		"listing-1": snapshots,
	}})
	got, err := scorer.Score("listing-1", day(analysisDate))
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	return got
}

func TestScoreNoSnapshotForDate(t *testing.T) {
	scorer := NewTrendScorer(&fakeHistory{snapshots: map[string][]models.DailyMetric{
		"listing-1": {snap("2025-01-01", 100, 10, "20.00")},
	}})

	// 2025-01-03 has no snapshot even though the window is not empty.
	_, err := scorer.Score("listing-1", day("2025-01-03"))
	if !errors.Is(err, ErrNoMetricData) {
		t.Fatalf("err = %v, want ErrNoMetricData", err)
	}

	// Unknown listing behaves the same way.
	_, err = scorer.Score("listing-unknown", day("2025-01-03"))
	if !errors.Is(err, ErrNoMetricData) {
		t.Fatalf("err for unknown listing = %v, want ErrNoMetricData", err)
	}
}

func TestScoreGrowthRates(t *testing.T) {
	tests := []struct {
		name            string
		yesterday       *models.DailyMetric
		today           models.DailyMetric
		wantViewGrowth  string
		wantWatchGrowth string
	}{
		{
			name:            "standard positive growth",
			yesterday:       ptr(snap("2025-01-01", 100, 10, "")),
			today:           snap("2025-01-02", 150, 15, ""),
			wantViewGrowth:  "50.00",
			wantWatchGrowth: "50.00",
		},
		{
			name:            "decline",
			yesterday:       ptr(snap("2025-01-01", 200, 40, "")),
			today:           snap("2025-01-02", 150, 30, ""),
			wantViewGrowth:  "-25.00",
			wantWatchGrowth: "-25.00",
		},
		{
			name:            "flat counts give zero growth",
			yesterday:       ptr(snap("2025-01-01", 80, 8, "")),
			today:           snap("2025-01-02", 80, 8, ""),
			wantViewGrowth:  "0.00",
			wantWatchGrowth: "0.00",
		},
		{
			name:            "growth from zero counts as full growth",
			yesterday:       ptr(snap("2025-01-01", 0, 0, "")),
			today:           snap("2025-01-02", 30, 3, ""),
			wantViewGrowth:  "100.00",
			wantWatchGrowth: "100.00",
		},
		{
			name:            "zero to zero stays zero",
			yesterday:       ptr(snap("2025-01-01", 0, 0, "")),
			today:           snap("2025-01-02", 0, 0, ""),
			wantViewGrowth:  "0.00",
			wantWatchGrowth: "0.00",
		},
		{
			name:            "no prior day snapshot gives zero growth",
			yesterday:       nil,
			today:           snap("2025-01-02", 500, 50, ""),
			wantViewGrowth:  "0.00",
			wantWatchGrowth: "0.00",
		},
		{
			name:            "mixed directions computed independently",
			yesterday:       ptr(snap("2025-01-01", 100, 20, "")),
			today:           snap("2025-01-02", 120, 10, ""),
			wantViewGrowth:  "20.00",
			wantWatchGrowth: "-50.00",
		},
		{
			name:            "repeating fraction rounds to two places",
			yesterday:       ptr(snap("2025-01-01", 3, 3, "")),
			today:           snap("2025-01-02", 4, 4, ""),
			wantViewGrowth:  "33.33",
			wantWatchGrowth: "33.33",
		},
		{
			name:            "exact half rounds up",
			yesterday:       ptr(snap("2025-01-01", 800, 800, "")),
			today:           snap("2025-01-02", 801, 801, ""),
			wantViewGrowth:  "0.13",
			wantWatchGrowth: "0.13",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots := []models.DailyMetric{tt.today}
			if tt.yesterday != nil {
				snapshots = append(snapshots, *tt.yesterday)
			}
			got := scoreWith(t, snapshots, "2025-01-02")
			if s := got.ViewGrowthRate.StringFixed(2); s != tt.wantViewGrowth {
				t.Errorf("view growth = %s, want %s", s, tt.wantViewGrowth)
			}
			if s := got.WatchGrowthRate.StringFixed(2); s != tt.wantWatchGrowth {
				t.Errorf("watch growth = %s, want %s", s, tt.wantWatchGrowth)
			}
		})
	}
}

func TestScoreSevenDayAverageUsesPresentSnapshotsOnly(t *testing.T) {
	// Snapshots only on days 1, 3 and 5 of the window; the average divides
	// by three, not seven.
	got := scoreWith(t, []models.DailyMetric{
		snap("2025-01-01", 10, 2, ""),
		snap("2025-01-03", 20, 4, ""),
		snap("2025-01-05", 30, 6, ""),
	}, "2025-01-05")

	if s := got.View7DayAvg.StringFixed(2); s != "20.00" {
		t.Errorf("view 7day avg = %s, want 20.00", s)
	}
	if s := got.Watch7DayAvg.StringFixed(2); s != "4.00" {
		t.Errorf("watch 7day avg = %s, want 4.00", s)
	}
}

func TestScoreSevenDayAverageWindowBounds(t *testing.T) {
	// A snapshot exactly 7 days before the analysis date falls outside the
	// [date-6, date] window; one exactly 6 days before falls inside.
	got := scoreWith(t, []models.DailyMetric{
		snap("2025-01-03", 700, 70, ""), // outside
		snap("2025-01-04", 40, 4, ""),   // inside, boundary
		snap("2025-01-10", 60, 6, ""),   // analysis date
	}, "2025-01-10")

	if s := got.View7DayAvg.StringFixed(2); s != "50.00" {
		t.Errorf("view 7day avg = %s, want 50.00", s)
	}
	if s := got.Watch7DayAvg.StringFixed(2); s != "5.00" {
		t.Errorf("watch 7day avg = %s, want 5.00", s)
	}
}

func TestScorePriceMomentum(t *testing.T) {
	tests := []struct {
		name      string
		snapshots []models.DailyMetric
		// momentum enters the composite with weight 0.2, so with zero
		// growth rates score = momentum * 0.2 floored at 0.
		wantScore string
	}{
		{
			name: "no priced snapshots",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, ""),
				snap("2025-01-02", 10, 1, ""),
			},
			wantScore: "0.00",
		},
		{
			name: "single priced snapshot is not enough",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, ""),
				snap("2025-01-02", 10, 1, "25.00"),
			},
			wantScore: "0.00",
		},
		{
			name: "rising price",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, "20.00"),
				snap("2025-01-02", 10, 1, "22.00"),
			},
			// momentum 10.00 * 0.2
			wantScore: "2.00",
		},
		{
			name: "extreme rise clamps at 100",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, "10.00"),
				snap("2025-01-02", 10, 1, "80.00"),
			},
			// raw momentum 700, clamped to 100, * 0.2
			wantScore: "20.00",
		},
		{
			name: "zero first price is guarded to zero",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, "0.00"),
				snap("2025-01-02", 10, 1, "50.00"),
			},
			wantScore: "0.00",
		},
		{
			name: "unpriced days are skipped when picking endpoints",
			snapshots: []models.DailyMetric{
				snap("2025-01-01", 10, 1, ""),
				snap("2025-01-02", 10, 1, "20.00"),
				snap("2025-01-03", 10, 1, ""),
				snap("2025-01-04", 10, 1, "30.00"),
				snap("2025-01-05", 10, 1, ""),
			},
			// endpoints 20 -> 30, momentum 50, * 0.2
			wantScore: "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.snapshots[len(tt.snapshots)-1]
			got := scoreWith(t, tt.snapshots, DateOnly(last.RecordedDate).Format("2006-01-02"))
			if s := got.TrendScore.StringFixed(2); s != tt.wantScore {
				t.Errorf("trend score = %s, want %s", s, tt.wantScore)
			}
		})
	}
}

func TestScoreCompositeNeverNegative(t *testing.T) {
	// Falling views, watches and price: every component is negative, but
	// the composite floors at zero.
	got := scoreWith(t, []models.DailyMetric{
		snap("2025-01-01", 200, 40, "50.00"),
		snap("2025-01-02", 100, 20, "25.00"),
	}, "2025-01-02")

	if s := got.TrendScore.StringFixed(2); s != "0.00" {
		t.Errorf("trend score = %s, want 0.00", s)
	}
	// The component fields keep their signed values.
	if s := got.ViewGrowthRate.StringFixed(2); s != "-50.00" {
		t.Errorf("view growth = %s, want -50.00", s)
	}
	if s := got.WatchGrowthRate.StringFixed(2); s != "-50.00" {
		t.Errorf("watch growth = %s, want -50.00", s)
	}
}

func TestScoreFullScenario(t *testing.T) {
	// Two consecutive days with views 100->150, watches 10->15 and price
	// 20.00->22.00: both growth rates 50.00, momentum 10.00, so the score
	// is 0.4*50 + 0.4*50 + 0.2*10 = 42.00.
	got := scoreWith(t, []models.DailyMetric{
		snap("2025-01-01", 100, 10, "20.00"),
		snap("2025-01-02", 150, 15, "22.00"),
	}, "2025-01-02")

	if s := got.TrendScore.StringFixed(2); s != "42.00" {
		t.Errorf("trend score = %s, want 42.00", s)
	}
	if s := got.ViewGrowthRate.StringFixed(2); s != "50.00" {
		t.Errorf("view growth = %s, want 50.00", s)
	}
	if s := got.WatchGrowthRate.StringFixed(2); s != "50.00" {
		t.Errorf("watch growth = %s, want 50.00", s)
	}
	if s := got.View7DayAvg.StringFixed(2); s != "125.00" {
		t.Errorf("view avg = %s, want 125.00", s)
	}
	if s := got.Watch7DayAvg.StringFixed(2); s != "12.50" {
		t.Errorf("watch avg = %s, want 12.50", s)
	}
}

func TestScoreRepeatableForSameInputs(t *testing.T) {
	snapshots := []models.DailyMetric{
		snap("2025-01-01", 97, 13, "19.37"),
		snap("2025-01-02", 131, 17, "21.84"),
		snap("2025-01-04", 156, 12, "21.11"),
	}

	first := scoreWith(t, snapshots, "2025-01-04")
	second := scoreWith(t, snapshots, "2025-01-04")

	pairs := []struct {
		name string
		a, b decimal.Decimal
	}{
		{"trend_score", first.TrendScore, second.TrendScore},
		{"view_growth_rate", first.ViewGrowthRate, second.ViewGrowthRate},
		{"watch_growth_rate", first.WatchGrowthRate, second.WatchGrowthRate},
		{"view_7day_avg", first.View7DayAvg, second.View7DayAvg},
		{"watch_7day_avg", first.Watch7DayAvg, second.Watch7DayAvg},
	}
	for _, p := range pairs {
		if p.a.String() != p.b.String() {
			t.Errorf("%s differs between runs: %s vs %s", p.name, p.a, p.b)
		}
	}
}

func ptr(m models.DailyMetric) *models.DailyMetric {
	return &m
}
