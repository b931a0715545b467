package trader

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/vadiminshakov/buydip/internal/entity"
)

const coinexOrderURL = "https://api.coinex.com/v2/spot/order"

// CoinexOrderAPI submits signed spot orders to CoinEx v2. The signature
// is an HMAC-SHA256 over the alphabetically sorted parameter string,
// hex-encoded uppercase, carried in the X-COINEX-* headers.
type CoinexOrderAPI struct {
	url        string
	apiKey     string
	apiSecret  string
	pair       entity.Pair
	httpClient *http.Client
}

func NewCoinexOrderAPI(apiKey, apiSecret string, pair entity.Pair, timeout time.Duration) *CoinexOrderAPI {
	return &CoinexOrderAPI{
		url:        coinexOrderURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		pair:       pair,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewCoinexOrderAPIWithURL is used by tests to point at a stub server.
func NewCoinexOrderAPIWithURL(url, apiKey, apiSecret string, pair entity.Pair, timeout time.Duration) *CoinexOrderAPI {
	api := NewCoinexOrderAPI(apiKey, apiSecret, pair, timeout)
	api.url = url
	return api
}

func (a *CoinexOrderAPI) PlaceMarketBuy(ctx context.Context, amount decimal.Decimal, clientOrderID string) (entity.OrderResult, error) {
	tonce := strconv.FormatInt(time.Now().UnixMilli(), 10)

	params := map[string]string{
		"market":      a.pair.Symbol(),
		"side":        "buy",
		"type":        "market",
		"market_type": "SPOT",
		"amount":      amount.String(),
		"client_id":   clientOrderID,
		"tonce":       tonce,
	}

	body, err := json.Marshal(params)
	if err != nil {
		return entity.OrderResult{}, errors.Wrap(err, "failed to marshal order params")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return entity.OrderResult{}, errors.Wrap(err, "failed to create order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-COINEX-ACCESS-ID", a.apiKey)
	req.Header.Set("X-COINEX-TONCE", tonce)
	req.Header.Set("X-COINEX-SIGN", a.sign(params))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return entity.OrderResult{}, errors.Wrap(err, "order request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.OrderResult{}, errors.Wrap(err, "failed to read order response")
	}
	if resp.StatusCode != http.StatusOK {
		return entity.OrderResult{}, errors.Errorf("coinex returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if code := gjson.GetBytes(respBody, "code").Int(); code != 0 {
		// venue looked at the order and said no
		return entity.OrderResult{}, errors.Wrapf(entity.ErrOrderRejected,
			"coinex declined order: code %d: %s", code, gjson.GetBytes(respBody, "message").String())
	}

	id := gjson.GetBytes(respBody, "data.order_id")
	if !id.Exists() {
		id = gjson.GetBytes(respBody, "data.id")
	}
	status := gjson.GetBytes(respBody, "data.status").String()

	return entity.OrderResult{
		ID:       id.String(),
		ClientID: clientOrderID,
		Filled:   status == "filled" || status == "done",
	}, nil
}

// sign builds the canonical sorted query string and MACs it.
func (a *CoinexOrderAPI) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
	}

	mac := hmac.New(sha256.New, []byte(a.apiSecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
