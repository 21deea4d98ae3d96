package bitstamp

import (
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/bookbridge-io/bookbridge/domain"
)

// SyncAPI pulls order book snapshots over REST. Bitstamp has no sequence
// numbers: the snapshot's microtimestamp seeds the book nonce and stream
// updates carry the same field.
type SyncAPI struct {
	http *resty.Client
}

type orderBookResponse struct {
	Timestamp      string     `json:"timestamp"`
	Microtimestamp string     `json:"microtimestamp"`
	Bids           [][]string `json:"bids"`
	Asks           [][]string `json:"asks"`
}

func NewSyncAPI(baseURL string) *SyncAPI {
	return &SyncAPI{
		http: resty.New().SetBaseURL(baseURL),
	}
}

func (api *SyncAPI) OrderBookSnapshot(symbol *domain.MarketSymbol, limit int) (*domain.BookSnapshot, error) {
	response := &orderBookResponse{}

	resp, err := api.http.R().
		SetResult(response).
		Get(fmt.Sprintf("/api/v2/order_book/%s/", marketID(symbol)))
	if err != nil {
		return nil, fmt.Errorf("fetching order book: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching order book: http %d", resp.StatusCode())
	}

	microtimestamp, err := strconv.ParseInt(response.Microtimestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing microtimestamp %q: %w", response.Microtimestamp, err)
	}

	return &domain.BookSnapshot{
		Source:       domain.OrderBookSource_Provider,
		Symbol:       symbol.String(),
		LastUpdateID: microtimestamp,
		Bids:         truncate(response.Bids, limit),
		Asks:         truncate(response.Asks, limit),
		Timestamp:    microtimestamp / 1000,
	}, nil
}

// truncate applies the caller's depth limit locally; the endpoint always
// returns the full book.
func truncate(rows [][]string, limit int) [][]string {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
