package rpc

import (
	"context"
	"fmt"

	"github.com/bookbridge-io/bookbridge/domain"
	"github.com/bookbridge-io/bookbridge/gen"
)

func (s *server) GetOrderBookSnapshot(ctx context.Context, in *gen.GetOrderBookSnapshotRequest) (*gen.GetOrderBookSnapshotResponse, error) {
	if !s.validationService.IsSupportedProvider(in.Provider) {
		return nil, fmt.Errorf("provider %s is not supported", in.Provider)
	}

	marketSymbol, err := domain.NewMarketSymbolFromString(in.Market)
	if err != nil {
		return nil, fmt.Errorf("invalid market symbol %q, use / or _ as the separator", in.Market)
	}

	snapshot, err := s.orderbookSnapshotUseCase.GetOrderBookSnapshot(in.Provider, marketSymbol, int(in.MaxDepth))
	if err != nil {
		return nil, err
	}

	return &gen.GetOrderBookSnapshotResponse{
		Source:       selectOrderBookSource(snapshot.Source),
		LastUpdateId: snapshot.LastUpdateID,
		Timestamp:    snapshot.Timestamp,
		Bids:         toLevels(snapshot.Bids),
		Asks:         toLevels(snapshot.Asks),
	}, nil
}

// WatchOrderBook streams the book after every applied depth update. The
// stream ends when the client disconnects or when the local book desyncs
// and is retired; the client resubscribes to get a freshly seeded book.
func (s *server) WatchOrderBook(in *gen.WatchOrderBookRequest, stream gen.MarketDataService_WatchOrderBookServer) error {
	if !s.validationService.IsSupportedProvider(in.Provider) {
		return fmt.Errorf("provider %s is not supported", in.Provider)
	}

	marketSymbol, err := domain.NewMarketSymbolFromString(in.Market)
	if err != nil {
		return fmt.Errorf("invalid market symbol %q, use / or _ as the separator", in.Market)
	}

	sub, err := s.orderbookSnapshotUseCase.WatchOrderBook(in.Provider, marketSymbol)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()

		case book, ok := <-sub.Stream:
			if !ok {
				return fmt.Errorf("order book for %s %s was retired, resubscribe", in.Provider, in.Market)
			}

			snapshot := book.TakeSnapshot(int(in.MaxDepth))
			err := stream.Send(&gen.OrderBookTick{
				Provider:     in.Provider,
				Market:       snapshot.Symbol,
				LastUpdateId: snapshot.LastUpdateID,
				Timestamp:    snapshot.Timestamp,
				Bids:         toLevels(snapshot.Bids),
				Asks:         toLevels(snapshot.Asks),
			})
			if err != nil {
				return err
			}
		}
	}
}

func toLevels(rows [][]string) []*gen.OrderBookLevel {
	levels := make([]*gen.OrderBookLevel, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, &gen.OrderBookLevel{
			Price: row[0],
			Qty:   row[1],
		})
	}
	return levels
}

func selectOrderBookSource(source domain.OrderBookSource) gen.OrderBookSource {
	switch source {
	case domain.OrderBookSource_LocalOrderBook:
		return gen.OrderBookSource_LocalOrderBook
	case domain.OrderBookSource_Provider:
		return gen.OrderBookSource_Provider
	default:
		return gen.OrderBookSource_Unknown
	}
}
