package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0ji3/my-trend-search/internal/models"
)

// ErrNoMetricData reports that a listing has no snapshot on the analysis
// date and therefore cannot be scored for it.
var ErrNoMetricData = errors.New("no metric data for analysis date")

// Composite score weights. Views and watches dominate; price movement is a
// secondary signal.
var (
	weightViewGrowth  = decimal.NewFromFloat(0.4)
	weightWatchGrowth = decimal.NewFromFloat(0.4)
	weightMomentum    = decimal.NewFromFloat(0.2)

	hundred         = decimal.NewFromInt(100)
	negativeHundred = decimal.NewFromInt(-100)
)

// TrendScore bundles the computed fields for one listing on one date. All
// values carry two decimal places.
type TrendScore struct {
	TrendScore      decimal.Decimal
	ViewGrowthRate  decimal.Decimal
	WatchGrowthRate decimal.Decimal
	View7DayAvg     decimal.Decimal
	Watch7DayAvg    decimal.Decimal
}

// TrendScorer computes composite trend scores from metric history.
//
// Score = view_growth*0.4 + watch_growth*0.4 + price_momentum*0.2, floored
// at zero. Growth rates compare the analysis date against the previous day;
// averages and momentum use the trailing 7-day window ending on the
// analysis date.
type TrendScorer struct {
	history MetricReader
}

func NewTrendScorer(history MetricReader) *TrendScorer {
	return &TrendScorer{history: history}
}

// Score computes the trend score for one listing on analysisDate. Returns
// ErrNoMetricData when the listing has no snapshot for that date. Read-only;
// persisting the result is the caller's job.
func (s *TrendScorer) Score(listingID string, analysisDate time.Time) (*TrendScore, error) {
	day := DateOnly(analysisDate)
	windowStart := day.AddDate(0, 0, -6)

	// One range fetch covers the growth comparison, the averages and the
	// momentum endpoints.
	window, err := s.history.Range(listingID, windowStart, day)
	if err != nil {
		return nil, err
	}

	var today, yesterday *models.DailyMetric
	yesterdayDate := day.AddDate(0, 0, -1)
	for i := range window {
		switch d := DateOnly(window[i].RecordedDate); {
		case d.Equal(day):
			today = &window[i]
		case d.Equal(yesterdayDate):
			yesterday = &window[i]
		}
	}
	if today == nil {
		return nil, ErrNoMetricData
	}

	viewGrowth := decimal.Zero
	watchGrowth := decimal.Zero
	if yesterday != nil {
		viewGrowth = growthRate(yesterday.ViewCount, today.ViewCount)
		watchGrowth = growthRate(yesterday.WatchCount, today.WatchCount)
	}

	viewAvg := decimal.Zero
	watchAvg := decimal.Zero
	if len(window) > 0 {
		var totalViews, totalWatches int64
		for i := range window {
			totalViews += int64(window[i].ViewCount)
			totalWatches += int64(window[i].WatchCount)
		}
		// Divide by the snapshots actually present so gaps in coverage do
		// not drag the average down.
		n := decimal.NewFromInt(int64(len(window)))
		viewAvg = decimal.NewFromInt(totalViews).Div(n)
		watchAvg = decimal.NewFromInt(totalWatches).Div(n)
	}

	momentum := priceMomentum(window)

	score := viewGrowth.Mul(weightViewGrowth).
		Add(watchGrowth.Mul(weightWatchGrowth)).
		Add(momentum.Mul(weightMomentum))
	if score.IsNegative() {
		score = decimal.Zero
	}

	return &TrendScore{
		TrendScore:      score.Round(2),
		ViewGrowthRate:  viewGrowth.Round(2),
		WatchGrowthRate: watchGrowth.Round(2),
		View7DayAvg:     viewAvg.Round(2),
		Watch7DayAvg:    watchAvg.Round(2),
	}, nil
}

// growthRate computes day-over-day percent change. A zero previous count
// with a positive current count scores as 100% growth; zero to zero is 0.
// Never errors: division by zero is guarded, not raised.
func growthRate(previous, current int) decimal.Decimal {
	if previous > 0 {
		return decimal.NewFromInt(int64(current - previous)).
			Div(decimal.NewFromInt(int64(previous))).
			Mul(hundred)
	}
	if current > 0 {
		return hundred
	}
	return decimal.Zero
}

// priceMomentum computes the percent change between the earliest and latest
// priced snapshots in the window, clamped to [-100, 100]. Fewer than two
// priced snapshots, or a zero first price, yield 0.
func priceMomentum(window []models.DailyMetric) decimal.Decimal {
	var first, last *decimal.Decimal
	priced := 0
	for i := range window {
		if window[i].CurrentPrice == nil {
			continue
		}
		if first == nil {
			first = window[i].CurrentPrice
		}
		last = window[i].CurrentPrice
		priced++
	}
	if priced < 2 || first.IsZero() {
		return decimal.Zero
	}

	momentum := last.Sub(*first).Div(*first).Mul(hundred)
	if momentum.GreaterThan(hundred) {
		return hundred
	}
	if momentum.LessThan(negativeHundred) {
		return negativeHundred
	}
	return momentum
}
