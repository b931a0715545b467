package trader

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/buydip/internal/entity"
)

// BinanceOrderAPI submits spot market buys through the official SDK.
type BinanceOrderAPI struct {
	client *binance.Client
	pair   entity.Pair
}

func NewBinanceOrderAPI(client *binance.Client, pair entity.Pair) *BinanceOrderAPI {
	return &BinanceOrderAPI{client: client, pair: pair}
}

func (a *BinanceOrderAPI) PlaceMarketBuy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (entity.OrderResult, error) {
	resp, err := a.client.NewCreateOrderService().
		Symbol(a.pair.Symbol()).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		Quantity(amount.String()).
		NewClientOrderID(clientOrderID).
		Do(ctx)
	if err != nil {
		if apiErr, ok := err.(*common.APIError); ok {
			return entity.OrderResult{}, errors.Wrapf(entity.ErrOrderRejected,
				"binance declined order: code %d: %s", apiErr.Code, apiErr.Message)
		}
		return entity.OrderResult{}, errors.Wrap(err, "binance order request failed")
	}

	return entity.OrderResult{
		ID:       strconv.FormatInt(resp.OrderID, 10),
		ClientID: resp.ClientOrderID,
		Filled:   resp.Status == binance.OrderStatusTypeFilled,
	}, nil
}
