package currencycom

import (
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/bookbridge-io/bookbridge/domain"
)

// GET /api/v2/depth:
//
//	{
//	  "lastUpdateId": 1590999849037,
//	  "asks": [["0.02495", "60.0345"], ["0.02496", "34.1"]],
//	  "bids": [["0.02487", "72.4144854"]]
//	}
type depthResponse struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

type SyncAPI struct {
	http *resty.Client
}

func NewSyncAPI(baseURL string) *SyncAPI {
	return &SyncAPI{
		http: resty.New().SetBaseURL(baseURL),
	}
}

func (api *SyncAPI) OrderBookSnapshot(symbol *domain.MarketSymbol, limit int) (*domain.BookSnapshot, error) {
	response := &depthResponse{}

	request := api.http.R().
		SetResult(response).
		SetQueryParam("symbol", marketID(symbol))
	if limit > 0 {
		request.SetQueryParam("limit", strconv.Itoa(limit))
	}

	resp, err := request.Get("/api/v2/depth")
	if err != nil {
		return nil, fmt.Errorf("fetching depth: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching depth: http %d", resp.StatusCode())
	}

	return &domain.BookSnapshot{
		Source:       domain.OrderBookSource_Provider,
		Symbol:       symbol.String(),
		LastUpdateID: response.LastUpdateID,
		Bids:         response.Bids,
		Asks:         response.Asks,
	}, nil
}
