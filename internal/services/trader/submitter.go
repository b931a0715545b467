// Package trader submits signed market buy orders to one venue with the
// shared retry policy and an on-disk intent journal.
package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
	"go.uber.org/zap"
)

const clientIDPrefix = "buydip"

// VenueAPI is the venue-specific single-attempt submission. A rejection
// by the venue must be wrapped with entity.ErrOrderRejected; anything
// else is treated as transport failure.
type VenueAPI interface {
	PlaceMarketBuy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (entity.OrderResult, error)
}

// Submitter places market buys with retries. Every attempt carries a
// freshly generated client order identifier and is journaled before the
// request is sent.
type Submitter struct {
	venue   VenueAPI
	retrier *retrier.Retrier
	journal *intentJournal
	l       *zap.Logger
}

func NewSubmitter(l *zap.Logger, venue VenueAPI, r *retrier.Retrier, walDir string) (*Submitter, error) {
	journal, err := openJournal(walDir)
	if err != nil {
		return nil, err
	}

	if pending := journal.Pending(); len(pending) > 0 {
		// a pending intent is an attempt whose acknowledgment was never
		// seen; the venue may or may not have filled it
		for _, intent := range pending {
			l.Warn("unresolved order intent from previous run, verify on the venue before re-buying",
				zap.String("client_id", intent.ClientID),
				zap.String("amount", intent.Amount.String()),
				zap.Time("time", intent.Time))
		}
	}

	return &Submitter{venue: venue, retrier: r, journal: journal, l: l}, nil
}

// SubmitMarketBuy buys the given base amount at market. Exhausting the
// retry budget yields ErrOrderRejected when the last failure was a venue
// decline, ErrUpstreamUnavailable otherwise. An accepted order is an
// irreversible financial action; there is no rollback.
func (s *Submitter) SubmitMarketBuy(ctx context.Context, amount decimal.Decimal) (entity.OrderResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return entity.OrderResult{}, errors.Wrapf(entity.ErrInvalidConfiguration,
			"buy amount must be positive, got %s", amount.String())
	}

	amount = amount.RoundFloor(8)

	result, err := retrier.DoWithData(s.retrier, ctx, func(ctx context.Context) (entity.OrderResult, error) {
		// Each attempt gets a fresh client order id. Reusing the prior
		// id on a venue that deduplicates by client id could silently
		// mask a fill whose acknowledgment we never saw; a fresh id can
		// instead double-buy if that earlier attempt actually landed.
		// At-least-once submission over an unreliable channel cannot
		// avoid both, which is why every attempt is journaled and
		// unresolved intents are flagged at startup.
		clientID := newClientOrderID()

		intent, err := s.journal.Prepare(clientID, amount, time.Now())
		if err != nil {
			return entity.OrderResult{}, err
		}

		res, err := s.venue.PlaceMarketBuy(ctx, amount, clientID)
		if err != nil {
			if markErr := s.journal.MarkFailed(intent, err); markErr != nil {
				s.l.Error("failed to journal order intent failure", zap.Error(markErr))
			}
			s.l.Warn("buy order attempt failed", zap.Error(err), zap.String("client_id", clientID))
			return entity.OrderResult{}, err
		}

		if markErr := s.journal.MarkDone(intent, res.ID); markErr != nil {
			s.l.Error("failed to journal order intent completion", zap.Error(markErr))
		}

		return res, nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrOrderRejected) {
			return entity.OrderResult{}, err
		}
		return entity.OrderResult{}, errors.Wrapf(entity.ErrUpstreamUnavailable,
			"order submission failed after %d attempts: %v", s.retrier.Attempts(), err)
	}

	return result, nil
}

func (s *Submitter) Close() error {
	return s.journal.Close()
}

func newClientOrderID() string {
	return fmt.Sprintf("%s-%s", clientIDPrefix, uuid.NewString()[:8])
}
