package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the single terminal record of one evaluation cycle.
// Every cycle produces exactly one, success or not.
type Outcome struct {
	Date    time.Time
	Pair    Pair
	Bought  bool
	Tier    Tier
	Amount  decimal.Decimal
	Quote   decimal.Decimal
	OrderID string
	Reason  string
	Err     error
}

// NoBuyOutcome builds a terminal outcome for a cycle that bought nothing.
func NoBuyOutcome(date time.Time, pair Pair, reason string, err error) Outcome {
	return Outcome{Date: date, Pair: pair, Reason: reason, Err: err}
}

func (o Outcome) String() string {
	day := o.Date.UTC().Format("2006-01-02")
	if !o.Bought {
		return fmt.Sprintf("%s: No purchase - %s", day, o.Reason)
	}
	return fmt.Sprintf("%s: Bought %s %s (~%s %s) - %s (Order ID: %s)",
		day, o.Amount.String(), o.Pair.From, o.Quote.StringFixed(2), o.Pair.To, o.Reason, o.OrderID)
}
