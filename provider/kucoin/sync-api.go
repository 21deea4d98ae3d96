package kucoin

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Kucoin/kucoin-go-sdk"

	"github.com/bookbridge-io/bookbridge/domain"
)

var logger = log.New(log.Writer(), "[kucoin] ", log.LstdFlags)

type SyncAPI struct {
	apiService *kucoin.ApiService
}

func NewSyncAPI(apiKey, apiSecret, passphrase string) *SyncAPI {
	return &SyncAPI{
		apiService: kucoin.NewApiService(
			kucoin.ApiKeyOption(apiKey),
			kucoin.ApiSecretOption(apiSecret),
			kucoin.ApiPassPhraseOption(passphrase),
		),
	}
}

type orderBookResponse struct {
	Sequence string     `json:"sequence"`
	Time     int64      `json:"time"`
	Bids     [][]string `json:"bids"`
	Asks     [][]string `json:"asks"`
}

// WsConnOpts requests a token and endpoint for a public websocket
// connection. Kucoin requires this handshake before every dial.
func (api *SyncAPI) WsConnOpts() (*kucoin.WebSocketTokenModel, error) {
	resp, err := api.apiService.WebSocketPublicToken()
	if err != nil {
		return nil, fmt.Errorf("requesting ws token: %w", err)
	}

	token := &kucoin.WebSocketTokenModel{}
	if err = resp.ReadData(token); err != nil {
		return nil, fmt.Errorf("unmarshaling ws token: %w", err)
	}
	return token, nil
}

func (api *SyncAPI) OrderBookSnapshot(symbol *domain.MarketSymbol, limit int) (*domain.BookSnapshot, error) {
	resp, err := api.apiService.AggregatedFullOrderBookV3(marketID(symbol))
	if err != nil {
		return nil, fmt.Errorf("fetching order book snapshot: %w", err)
	}

	data := &orderBookResponse{}
	if err = json.Unmarshal(resp.RawData, data); err != nil {
		return nil, fmt.Errorf("unmarshaling order book snapshot: %w", err)
	}

	sequence, err := strconv.ParseInt(data.Sequence, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot sequence %q: %w", data.Sequence, err)
	}

	return &domain.BookSnapshot{
		Source:       domain.OrderBookSource_Provider,
		Symbol:       symbol.String(),
		LastUpdateID: sequence,
		Bids:         truncate(data.Bids, limit),
		Asks:         truncate(data.Asks, limit),
		Timestamp:    data.Time,
	}, nil
}

// The full-book endpoint has no depth parameter, so the limit is applied
// locally.
func truncate(rows [][]string, limit int) [][]string {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

func marketID(symbol *domain.MarketSymbol) string {
	return strings.ToUpper(symbol.Join("-"))
}
