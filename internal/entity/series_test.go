package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizePoints(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	points := []PricePoint{
		{Day: day2.Add(3 * time.Hour), Close: decimal.NewFromInt(200)},
		{Day: day1, Close: decimal.NewFromInt(100)},
		// same day as the first point, later write wins
		{Day: day2.Add(10 * time.Hour), Close: decimal.NewFromInt(250)},
	}

	normalized := NormalizePoints(points)

	require.Len(t, normalized, 2)
	require.Equal(t, day1, normalized[0].Day)
	require.Equal(t, day2, normalized[1].Day)
	require.Equal(t, "250", normalized[1].Close.String())
}

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2024, 3, 15, 2, 30, 0, 0, loc) // 2024-03-14 21:30 UTC

	require.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Day(ts))
}

func TestOutcomeString(t *testing.T) {
	date := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	pair := Pair{From: "BTC", To: "USDT"}

	noBuy := NoBuyOutcome(date, pair, "Conditions not met", nil)
	require.Equal(t, "2024-05-10: No purchase - Conditions not met", noBuy.String())

	bought := Outcome{
		Date:    date,
		Pair:    pair,
		Bought:  true,
		Tier:    TierFNG,
		Amount:  decimal.RequireFromString("0.0001"),
		Quote:   decimal.RequireFromString("4.4"),
		OrderID: "12345",
		Reason:  "Fear and Greed ≤ 25",
	}
	require.Equal(t, "2024-05-10: Bought 0.0001 BTC (~4.40 USDT) - Fear and Greed ≤ 25 (Order ID: 12345)", bought.String())
}

func TestPairForms(t *testing.T) {
	p := Pair{From: "BTC", To: "USDT"}
	require.Equal(t, "BTC_USDT", p.String())
	require.Equal(t, "BTCUSDT", p.Symbol())
}
