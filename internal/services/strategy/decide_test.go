package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buydip/internal/entity"
)

func defaultTiers() Tiers {
	return Tiers{
		FNGThreshold:  decimal.NewFromInt(25),
		MAThreshold:   decimal.RequireFromString("0.1"),
		OverlapAmount: decimal.RequireFromString("0.0002"),
		FNGAmount:     decimal.RequireFromString("0.0001"),
		MAAmount:      decimal.RequireFromString("0.0005"),
	}
}

func TestDecide(t *testing.T) {
	ma := decimal.NewFromInt(50000)

	tests := []struct {
		name       string
		ind        entity.Indicators
		wantBuy    bool
		wantTier   entity.Tier
		wantAmount string
	}{
		{
			name: "both signals fire, overlap tier",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(44000), MA: ma, HasMA: true,
				FNG: 20, HasFNG: true,
			},
			wantBuy:    true,
			wantTier:   entity.TierOverlap,
			wantAmount: "0.0002",
		},
		{
			name: "fng only",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(49000), MA: ma, HasMA: true,
				FNG: 20, HasFNG: true,
			},
			wantBuy:    true,
			wantTier:   entity.TierFNG,
			wantAmount: "0.0001",
		},
		{
			name: "ma only",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(44000), MA: ma, HasMA: true,
				FNG: 60, HasFNG: true,
			},
			wantBuy:    true,
			wantTier:   entity.TierMA,
			wantAmount: "0.0005",
		},
		{
			name: "neither signal",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(49000), MA: ma, HasMA: true,
				FNG: 60, HasFNG: true,
			},
			wantBuy:  false,
			wantTier: entity.TierNone,
		},
		{
			name: "fng exactly at threshold fires",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(49000), MA: ma, HasMA: true,
				FNG: 25, HasFNG: true,
			},
			wantBuy:    true,
			wantTier:   entity.TierFNG,
			wantAmount: "0.0001",
		},
		{
			name: "price exactly at ma boundary fires",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(45000), MA: ma, HasMA: true,
				FNG: 60, HasFNG: true,
			},
			wantBuy:    true,
			wantTier:   entity.TierMA,
			wantAmount: "0.0005",
		},
		{
			name: "price one tick above boundary does not fire",
			ind: entity.Indicators{
				Price: decimal.RequireFromString("45000.01"), MA: ma, HasMA: true,
				FNG: 60, HasFNG: true,
			},
			wantBuy:  false,
			wantTier: entity.TierNone,
		},
		{
			name: "unknown fng cannot fire fng tier",
			ind: entity.Indicators{
				Price: decimal.NewFromInt(44000), MA: ma, HasMA: true,
				HasFNG: false,
			},
			wantBuy:    true,
			wantTier:   entity.TierMA,
			wantAmount: "0.0005",
		},
		{
			name: "unknown fng and no ma signal",
			ind: entity.Indicators{
				Price: ma, MA: ma, HasMA: true,
				HasFNG: false,
			},
			wantBuy:  false,
			wantTier: entity.TierNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Decide(tt.ind, defaultTiers())
			require.NoError(t, err)
			require.Equal(t, tt.wantBuy, decision.Buy)
			require.Equal(t, tt.wantTier, decision.Tier)
			if tt.wantBuy {
				require.Equal(t, tt.wantAmount, decision.Amount.String())
				require.NotEmpty(t, decision.Reason)
			} else {
				require.Equal(t, "Conditions not met", decision.Reason)
			}
		})
	}
}

func TestDecideZeroThresholdMA(t *testing.T) {
	// ma threshold 0 means any price at or below the MA fires
	tiers := defaultTiers()
	tiers.MAThreshold = decimal.Zero

	ind := entity.Indicators{
		Price: decimal.NewFromInt(50000),
		MA:    decimal.NewFromInt(50000),
		HasMA: true,
		FNG:   60, HasFNG: true,
	}

	decision, err := Decide(ind, tiers)
	require.NoError(t, err)
	require.True(t, decision.Buy)
	require.Equal(t, entity.TierMA, decision.Tier)
}

func TestDecideNonPositiveAmountIsConfigError(t *testing.T) {
	tiers := defaultTiers()
	tiers.FNGAmount = decimal.Zero

	ind := entity.Indicators{
		Price: decimal.NewFromInt(49000),
		MA:    decimal.NewFromInt(50000),
		HasMA: true,
		FNG:   10, HasFNG: true,
	}

	_, err := Decide(ind, tiers)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
}
