// Package strategy combines the FNG and MA signals into a sizing
// decision and orchestrates one evaluation cycle.
package strategy

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
)

// Tiers carries the signal thresholds and the per-tier buy amounts.
type Tiers struct {
	// FNGThreshold: the FNG signal fires when the index is at or below
	// this value.
	FNGThreshold decimal.Decimal
	// MAThreshold is a fraction; the MA signal fires when the price is
	// at or below (1 - MAThreshold) * MA.
	MAThreshold decimal.Decimal

	OverlapAmount decimal.Decimal
	FNGAmount     decimal.Decimal
	MAAmount      decimal.Decimal
}

// Decide maps indicators to exactly one tier. Overlap beats FNG-only
// beats MA-only; amounts are never additive. A fired tier whose resolved
// amount is not positive is a configuration error, not a silent no-buy.
func Decide(ind entity.Indicators, tiers Tiers) (entity.Decision, error) {
	one := decimal.NewFromInt(1)

	buyFNG := ind.HasFNG && decimal.NewFromInt(int64(ind.FNG)).LessThanOrEqual(tiers.FNGThreshold)
	// an absent moving average can never fire the MA signal
	buyMA := ind.HasMA && ind.Price.LessThanOrEqual(one.Sub(tiers.MAThreshold).Mul(ind.MA))

	maPercent := tiers.MAThreshold.Mul(decimal.NewFromInt(100))

	var decision entity.Decision
	switch {
	case buyFNG && buyMA:
		decision = entity.Decision{
			Buy:    true,
			Tier:   entity.TierOverlap,
			Amount: tiers.OverlapAmount,
			Reason: fmt.Sprintf("Overlap (Fear and Greed ≤ %s, Price ≥ %s%% below MA)",
				tiers.FNGThreshold.String(), maPercent.String()),
		}
	case buyFNG:
		decision = entity.Decision{
			Buy:    true,
			Tier:   entity.TierFNG,
			Amount: tiers.FNGAmount,
			Reason: fmt.Sprintf("Fear and Greed ≤ %s", tiers.FNGThreshold.String()),
		}
	case buyMA:
		decision = entity.Decision{
			Buy:    true,
			Tier:   entity.TierMA,
			Amount: tiers.MAAmount,
			Reason: fmt.Sprintf("Price ≥ %s%% below MA", maPercent.String()),
		}
	default:
		return entity.NoBuyDecision("Conditions not met"), nil
	}

	if decision.Amount.LessThanOrEqual(decimal.Zero) {
		return entity.Decision{}, errors.Wrapf(entity.ErrInvalidConfiguration,
			"buy amount for tier %s must be positive, got %s", decision.Tier, decision.Amount.String())
	}

	return decision, nil
}
