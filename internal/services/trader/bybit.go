package trader

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
)

// BybitOrderAPI submits spot market buys through the V5 API client.
type BybitOrderAPI struct {
	client *bybit.Client
	pair   entity.Pair
}

func NewBybitOrderAPI(client *bybit.Client, pair entity.Pair) *BybitOrderAPI {
	return &BybitOrderAPI{client: client, pair: pair}
}

func (a *BybitOrderAPI) PlaceMarketBuy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (entity.OrderResult, error) {
	qty := amount.String()
	orderLinkID := clientOrderID

	resp, err := a.client.V5().Order().CreateOrder(bybit.V5CreateOrderParam{
		Category:    bybit.CategoryV5Spot,
		Symbol:      bybit.SymbolV5(a.pair.Symbol()),
		Side:        bybit.SideBuy,
		OrderType:   bybit.OrderTypeMarket,
		Qty:         qty,
		OrderLinkID: &orderLinkID,
	})
	if err != nil {
		return entity.OrderResult{}, errors.Wrap(err, "bybit order request failed")
	}

	return entity.OrderResult{
		ID:       resp.Result.OrderID,
		ClientID: resp.Result.OrderLinkID,
		// submission response does not confirm the fill; bybit reports
		// execution asynchronously
		Filled: false,
	}, nil
}
