package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/vadiminshakov/buydip/internal/entity"
	"github.com/vadiminshakov/buydip/pkg/retrier"
)

const coinexBaseURL = "https://api.coinex.com/v2"

// CoinexProvider reads CoinEx spot market data over the public REST v2
// API. CoinEx wraps every payload in {code, message, data}; a non-zero
// code is an application error and counts as an attempt failure.
type CoinexProvider struct {
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// NewCoinexProvider creates a provider with the shared retry policy.
func NewCoinexProvider(timeout time.Duration, r *retrier.Retrier) *CoinexProvider {
	return &CoinexProvider{
		baseURL:    coinexBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		retrier:    r,
	}
}

// NewCoinexProviderWithBaseURL is used by tests to point at a stub server.
func NewCoinexProviderWithBaseURL(baseURL string, timeout time.Duration, r *retrier.Retrier) *CoinexProvider {
	p := NewCoinexProvider(timeout, r)
	p.baseURL = baseURL
	return p
}

func (p *CoinexProvider) GetPrice(ctx context.Context, pair entity.Pair) (decimal.Decimal, error) {
	return fetchPrice(ctx, p.retrier, func(ctx context.Context) (decimal.Decimal, error) {
		url := fmt.Sprintf("%s/spot/ticker?market=%s", p.baseURL, pair.Symbol())
		data, err := p.get(ctx, url)
		if err != nil {
			return decimal.Decimal{}, err
		}

		last := gjson.GetBytes(data, "data.0.last")
		if !last.Exists() {
			return decimal.Decimal{}, errors.New("ticker payload has no last price")
		}
		return decimal.NewFromString(last.String())
	})
}

func (p *CoinexProvider) GetDailyHistory(ctx context.Context, pair entity.Pair, days int) ([]entity.PricePoint, error) {
	return fetchHistory(ctx, p.retrier, func(ctx context.Context) ([]entity.PricePoint, error) {
		url := fmt.Sprintf("%s/spot/kline?market=%s&period=1day&limit=%d", p.baseURL, pair.Symbol(), days)
		data, err := p.get(ctx, url)
		if err != nil {
			return nil, err
		}

		klines := gjson.GetBytes(data, "data")
		if !klines.IsArray() {
			return nil, errors.New("kline payload is not an array")
		}

		var points []entity.PricePoint
		var parseErr error
		klines.ForEach(func(_, k gjson.Result) bool {
			close, err := decimal.NewFromString(k.Get("close").String())
			if err != nil {
				parseErr = errors.Wrap(err, "failed to parse kline close")
				return false
			}
			points = append(points, entity.PricePoint{
				Day:   time.UnixMilli(k.Get("created_at").Int()),
				Close: close,
			})
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		return points, nil
	})
}

// get performs one GET attempt and unwraps the CoinEx envelope.
func (p *CoinexProvider) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("coinex returned status %d: %s", resp.StatusCode, string(body))
	}

	if code := gjson.GetBytes(body, "code").Int(); code != 0 {
		return nil, errors.Errorf("coinex API error %d: %s", code, gjson.GetBytes(body, "message").String())
	}

	return body, nil
}
