package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single daily close. Day is truncated to UTC midnight.
type PricePoint struct {
	Day   time.Time
	Close decimal.Decimal
}

// Series is an ordered run of daily closes for one symbol.
// Points are strictly ascending by day with no duplicates; the series is
// only ever replaced wholesale, never appended to in place.
type Series struct {
	Symbol      string
	RetrievedAt time.Time
	Points      []PricePoint
}

func (s *Series) Len() int {
	return len(s.Points)
}

func (s *Series) IsEmpty() bool {
	return len(s.Points) == 0
}

// Last returns the most recent point. Callers must check IsEmpty first.
func (s *Series) Last() PricePoint {
	return s.Points[len(s.Points)-1]
}

// Closes returns the close values in ascending day order.
func (s *Series) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Day normalizes a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// NormalizePoints deduplicates points by calendar day (last write wins)
// and sorts them ascending. Venue kline endpoints differ in ordering and
// can repeat the in-progress day, so every provider funnels through here.
func NormalizePoints(points []PricePoint) []PricePoint {
	byDay := make(map[time.Time]PricePoint, len(points))
	for _, p := range points {
		p.Day = Day(p.Day)
		byDay[p.Day] = p
	}

	normalized := make([]PricePoint, 0, len(byDay))
	for _, p := range byDay {
		normalized = append(normalized, p)
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Day.Before(normalized[j].Day)
	})

	return normalized
}
