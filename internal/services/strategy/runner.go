package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/internal/services/indicator"
	"go.uber.org/zap"
)

type sentimentClient interface {
	GetFNG(ctx context.Context) (int, error)
}

type seriesCache interface {
	Get(ctx context.Context, pair entity.Pair, windowDays int) (entity.Series, bool, error)
}

type pricer interface {
	GetPrice(ctx context.Context, pair entity.Pair) (decimal.Decimal, error)
}

type orderSubmitter interface {
	SubmitMarketBuy(ctx context.Context, amount decimal.Decimal) (entity.OrderResult, error)
}

// Runner executes one evaluation cycle: sentiment, history, indicators,
// decision, and (conditionally) order submission. Any fatal step
// short-circuits to a terminal no-buy outcome; a failed sentiment fetch
// only degrades the FNG signal. Every cycle yields exactly one Outcome.
type Runner struct {
	pair      entity.Pair
	window    int
	tiers     Tiers
	dailyBuy  decimal.Decimal
	sentiment sentimentClient
	cache     seriesCache
	market    pricer
	submitter orderSubmitter
	l         *zap.Logger

	now func() time.Time
}

func NewRunner(
	l *zap.Logger,
	pair entity.Pair,
	window int,
	tiers Tiers,
	dailyBuy decimal.Decimal,
	sentiment sentimentClient,
	cache seriesCache,
	market pricer,
	submitter orderSubmitter,
) *Runner {
	return &Runner{
		pair:      pair,
		window:    window,
		tiers:     tiers,
		dailyBuy:  dailyBuy,
		sentiment: sentiment,
		cache:     cache,
		market:    market,
		submitter: submitter,
		l:         l,
		now:       time.Now,
	}
}

// Run performs the signal-based evaluation cycle.
func (r *Runner) Run(ctx context.Context) entity.Outcome {
	date := r.now()
	r.l.Info("starting buy decision computation", zap.String("pair", r.pair.String()))

	ind := entity.Indicators{ConfiguredWindow: r.window}

	fng, err := r.sentiment.GetFNG(ctx)
	if err != nil {
		// best-effort indicator: unknown FNG never aborts the cycle
		r.l.Warn("failed to fetch Fear and Greed index", zap.Error(err))
	} else {
		ind.FNG = fng
		ind.HasFNG = true
		r.l.Info("FNG value", zap.Int("fng", fng))
	}

	series, short, err := r.cache.Get(ctx, r.pair, r.window)
	if err != nil {
		r.l.Error("failed to fetch or process historical data", zap.Error(err))
		return entity.NoBuyOutcome(date, r.pair, "Failed to fetch or process historical data", err)
	}
	if short {
		r.l.Warn("historical series shorter than configured window",
			zap.Int("points", series.Len()),
			zap.Int("window", r.window))
	}

	ma, effective, err := indicator.MovingAverage(series, r.window)
	if err != nil {
		r.l.Error("failed to compute moving average", zap.Error(err))
		return entity.NoBuyOutcome(date, r.pair, "Failed to fetch or process historical data", err)
	}
	ind.MA = ma
	ind.HasMA = true
	ind.EffectiveWindow = effective
	if ind.Degraded() {
		r.l.Warn("adjusted MA window due to insufficient data",
			zap.Int("effective", effective),
			zap.Int("configured", r.window))
	}
	r.l.Info("latest MA", zap.String("ma", ma.StringFixed(2)), zap.Int("window", effective))

	price, err := r.market.GetPrice(ctx, r.pair)
	if err != nil {
		r.l.Error("failed to fetch price", zap.Error(err))
		return entity.NoBuyOutcome(date, r.pair, "Failed to fetch price", err)
	}
	ind.Price = price
	r.l.Info("current price",
		zap.String("pair", r.pair.String()),
		zap.String("price", price.StringFixed(2)))

	decision, err := Decide(ind, r.tiers)
	if err != nil {
		r.l.Error("invalid buy amount", zap.Error(err))
		return entity.NoBuyOutcome(date, r.pair, "Invalid buy amount", err)
	}

	r.l.Info("buy conditions",
		zap.Bool("fng", ind.HasFNG),
		zap.String("tier", decision.Tier.String()),
		zap.Bool("buy", decision.Buy))

	if !decision.Buy {
		r.l.Info("no purchase, conditions not met")
		return entity.NoBuyOutcome(date, r.pair, decision.Reason, nil)
	}

	return r.submit(ctx, date, decision.Tier, decision.Amount, price, decision.Reason)
}

// RunDailyPurchase performs the unconditional fixed-amount purchase.
// It is independent of the signal purchase and may fire on the same
// trigger; a zero configured amount disables it.
func (r *Runner) RunDailyPurchase(ctx context.Context) entity.Outcome {
	date := r.now()
	if r.dailyBuy.LessThanOrEqual(decimal.Zero) {
		return entity.NoBuyOutcome(date, r.pair, "Daily purchase disabled", nil)
	}

	price, err := r.market.GetPrice(ctx, r.pair)
	if err != nil {
		r.l.Error("failed to fetch price for daily purchase", zap.Error(err))
		return entity.NoBuyOutcome(date, r.pair, "Failed to fetch price", err)
	}

	return r.submit(ctx, date, entity.TierNone, r.dailyBuy, price, "Daily purchase")
}

func (r *Runner) submit(ctx context.Context, date time.Time, tier entity.Tier, amount, price decimal.Decimal, reason string) entity.Outcome {
	quote := amount.Mul(price)
	r.l.Info("planning to buy",
		zap.String("amount", amount.String()),
		zap.String("quote", quote.StringFixed(2)),
		zap.String("reason", reason))

	result, err := r.submitter.SubmitMarketBuy(ctx, amount)
	if err != nil {
		r.l.Error("buy order failed", zap.Error(err), zap.String("amount", amount.String()))
		failReason := fmt.Sprintf("Failed to buy %s %s (~%s %s) - %s",
			amount.String(), r.pair.From, quote.StringFixed(2), r.pair.To, reason)
		return entity.NoBuyOutcome(date, r.pair, failReason, err)
	}

	outcome := entity.Outcome{
		Date:    date,
		Pair:    r.pair,
		Bought:  true,
		Tier:    tier,
		Amount:  amount,
		Quote:   quote,
		OrderID: result.ID,
		Reason:  reason,
	}
	r.l.Info("bought", zap.String("outcome", outcome.String()))
	return outcome
}
