package trader

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
	"go.uber.org/zap"
)

type fakeVenue struct {
	calls     int
	clientIDs []string
	amounts   []decimal.Decimal
	failFirst int
	reject    bool
}

func (v *fakeVenue) PlaceMarketBuy(_ context.Context, amount decimal.Decimal, clientOrderID string) (entity.OrderResult, error) {
	v.calls++
	v.clientIDs = append(v.clientIDs, clientOrderID)
	v.amounts = append(v.amounts, amount)
	if v.reject {
		return entity.OrderResult{}, errors.Wrap(entity.ErrOrderRejected, "venue said no")
	}
	if v.calls <= v.failFirst {
		return entity.OrderResult{}, errors.New("connection reset")
	}
	return entity.OrderResult{ID: "42", ClientID: clientOrderID, Filled: true}, nil
}

func newTestSubmitter(t *testing.T, venue VenueAPI, attempts int) *Submitter {
	t.Helper()
	s, err := NewSubmitter(zap.NewNop(), venue,
		retrier.New(retrier.WithAttempts(attempts), retrier.WithDelay(0)), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubmitMarketBuySucceedsAfterTransientFailure(t *testing.T) {
	venue := &fakeVenue{failFirst: 2}
	s := newTestSubmitter(t, venue, 3)

	res, err := s.SubmitMarketBuy(context.Background(), decimal.RequireFromString("0.0002"))
	require.NoError(t, err)
	require.Equal(t, "42", res.ID)
	require.Equal(t, 3, venue.calls)
}

func TestSubmitMarketBuyFreshClientIDPerAttempt(t *testing.T) {
	venue := &fakeVenue{failFirst: 2}
	s := newTestSubmitter(t, venue, 3)

	_, err := s.SubmitMarketBuy(context.Background(), decimal.RequireFromString("0.0002"))
	require.NoError(t, err)

	require.Len(t, venue.clientIDs, 3)
	seen := make(map[string]struct{})
	for _, id := range venue.clientIDs {
		require.Contains(t, id, "buydip-")
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 3, "every attempt must carry a fresh client order id")
}

func TestSubmitMarketBuyExhaustionIsUpstreamUnavailable(t *testing.T) {
	venue := &fakeVenue{failFirst: 100}
	s := newTestSubmitter(t, venue, 3)

	_, err := s.SubmitMarketBuy(context.Background(), decimal.RequireFromString("0.0002"))
	require.ErrorIs(t, err, entity.ErrUpstreamUnavailable)
	require.Equal(t, 3, venue.calls)
}

func TestSubmitMarketBuyRejectionKeepsItsIdentity(t *testing.T) {
	venue := &fakeVenue{reject: true}
	s := newTestSubmitter(t, venue, 3)

	_, err := s.SubmitMarketBuy(context.Background(), decimal.RequireFromString("0.0002"))
	require.ErrorIs(t, err, entity.ErrOrderRejected)
}

func TestSubmitMarketBuyNonPositiveAmount(t *testing.T) {
	venue := &fakeVenue{}
	s := newTestSubmitter(t, venue, 3)

	_, err := s.SubmitMarketBuy(context.Background(), decimal.Zero)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
	require.Zero(t, venue.calls)
}

func TestSubmitMarketBuyRoundsAmountDown(t *testing.T) {
	venue := &fakeVenue{}
	s := newTestSubmitter(t, venue, 1)

	_, err := s.SubmitMarketBuy(context.Background(), decimal.RequireFromString("0.000123456789"))
	require.NoError(t, err)
	require.Len(t, venue.amounts, 1)
	require.Equal(t, "0.00012345", venue.amounts[0].String())
}

func TestJournalTracksIntentLifecycle(t *testing.T) {
	dir := t.TempDir()

	j, err := openJournal(dir)
	require.NoError(t, err)

	intent, err := j.Prepare("buydip-aaa", decimal.RequireFromString("0.0002"), time.Now())
	require.NoError(t, err)
	require.Len(t, j.Pending(), 1)

	require.NoError(t, j.MarkDone(intent, "42"))
	require.Empty(t, j.Pending())
	require.NoError(t, j.Close())

	// reopen and confirm the final state survived
	j2, err := openJournal(dir)
	require.NoError(t, err)
	defer j2.Close()
	require.Empty(t, j2.Pending())
	require.Equal(t, "42", j2.index["buydip-aaa"].OrderID)
}

func TestJournalPendingSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	j, err := openJournal(dir)
	require.NoError(t, err)
	_, err = j.Prepare("buydip-bbb", decimal.RequireFromString("0.0005"), time.Now())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j2, err := openJournal(dir)
	require.NoError(t, err)
	defer j2.Close()

	pending := j2.Pending()
	require.Len(t, pending, 1)
	require.Equal(t, "buydip-bbb", pending[0].ClientID)
}
