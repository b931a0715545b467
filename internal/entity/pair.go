package entity

import "fmt"

// Pair is a base/quote trading pair, e.g. {From: "BTC", To: "USDT"}.
type Pair struct {
	From string
	To   string
}

func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the venue symbol form without separator, e.g. BTCUSDT.
func (p Pair) Symbol() string {
	return p.From + p.To
}
