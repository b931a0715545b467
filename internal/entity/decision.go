package entity

import "github.com/shopspring/decimal"

// Tier identifies which signal fired and therefore which configured
// amount to buy. Tiers are mutually exclusive per cycle.
type Tier int

const (
	TierNone Tier = iota
	TierOverlap
	TierFNG
	TierMA
)

func (t Tier) String() string {
	switch t {
	case TierOverlap:
		return "overlap"
	case TierFNG:
		return "fng"
	case TierMA:
		return "ma"
	default:
		return "none"
	}
}

// Decision is the result of one evaluation: either no buy (with a
// reason) or a buy of Amount base units at the given tier.
type Decision struct {
	Buy    bool
	Tier   Tier
	Amount decimal.Decimal
	Reason string
}

// NoBuyDecision constructs the negative variant.
func NoBuyDecision(reason string) Decision {
	return Decision{Buy: false, Tier: TierNone, Reason: reason}
}
