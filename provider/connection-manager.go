package provider

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/bookbridge-io/bookbridge/config"
	"github.com/bookbridge-io/bookbridge/domain"
	"github.com/bookbridge-io/bookbridge/provider/ascendex"
	"github.com/bookbridge-io/bookbridge/provider/bitstamp"
	"github.com/bookbridge-io/bookbridge/provider/currencycom"
	"github.com/bookbridge-io/bookbridge/provider/gopax"
	"github.com/bookbridge-io/bookbridge/provider/kucoin"
)

var logger = log.New(os.Stdout, "[conn-manager] ", log.LstdFlags)

type connection struct {
	client interface {
		Connect() error
		Close() error
	}
	streamAPI domain.ProviderStreamAPI
	syncAPI   domain.ProviderSyncAPI
}

// ConnectionManager owns one stream client per enabled provider and hands
// out the APIs bound to it. Connections are dialed concurrently on Init.
type ConnectionManager struct {
	connections map[string]*connection
}

func NewConnectionManager(conf *config.Config) *ConnectionManager {
	cm := &ConnectionManager{
		connections: make(map[string]*connection),
	}

	for _, name := range conf.AvailableProviders {
		limit := conf.PendingUpdatesLimit

		switch name {
		case "ascendex":
			client := ascendex.NewStreamClient()
			cm.connections[name] = &connection{
				client:    client,
				streamAPI: ascendex.NewStreamAPI(client, limit),
			}

		case "bitstamp":
			client := bitstamp.NewStreamClient()
			syncAPI := bitstamp.NewSyncAPI(conf.BitstampAPIURL)
			cm.connections[name] = &connection{
				client:    client,
				streamAPI: bitstamp.NewStreamAPI(client, syncAPI, limit),
				syncAPI:   syncAPI,
			}

		case "currencycom":
			client := currencycom.NewStreamClient()
			syncAPI := currencycom.NewSyncAPI(conf.CurrencycomAPIURL)
			cm.connections[name] = &connection{
				client:    client,
				streamAPI: currencycom.NewStreamAPI(client, syncAPI, limit),
				syncAPI:   syncAPI,
			}

		case "gopax":
			client := gopax.NewStreamClient()
			cm.connections[name] = &connection{
				client:    client,
				streamAPI: gopax.NewStreamAPI(client, limit),
			}

		case "kucoin":
			syncAPI := kucoin.NewSyncAPI(conf.KucoinAPIKey, conf.KucoinSecretKey, conf.KucoinPassphrase)
			client := kucoin.NewStreamClient(syncAPI)
			cm.connections[name] = &connection{
				client:    client,
				streamAPI: kucoin.NewStreamAPI(client, syncAPI, limit),
				syncAPI:   syncAPI,
			}

		default:
			panic("unknown provider in config: " + name)
		}
	}

	return cm
}

func (cm *ConnectionManager) Init() {
	wg := &sync.WaitGroup{}
	for name, conn := range cm.connections {
		wg.Add(1)
		go func(name string, conn *connection) {
			defer wg.Done()
			if err := conn.client.Connect(); err != nil {
				logger.Printf("failed to connect to %s ws: %s", name, err)
				return
			}
			logger.Printf("connected to %s", name)
		}(name, conn)
	}
	wg.Wait()
}

func (cm *ConnectionManager) StreamAPI(provider string) (domain.ProviderStreamAPI, error) {
	conn, ok := cm.connections[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, provider)
	}
	return conn.streamAPI, nil
}

func (cm *ConnectionManager) SyncAPI(provider string) (domain.ProviderSyncAPI, error) {
	conn, ok := cm.connections[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, provider)
	}
	if conn.syncAPI == nil {
		return nil, fmt.Errorf("provider %s has no sync api", provider)
	}
	return conn.syncAPI, nil
}

func (cm *ConnectionManager) Close() {
	for name, conn := range cm.connections {
		if err := conn.client.Close(); err != nil {
			logger.Printf("closing %s: %s", name, err)
		}
	}
}
