package gopax

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/recws-org/recws"

	"github.com/bookbridge-io/bookbridge/domain"
)

var logger = log.New(log.Writer(), "[gopax] ", log.LstdFlags)

const defaultWebsocketEndpoint = "wss://wsapi.gopax.co.kr"

type wsCommand struct {
	Name    string      `json:"n"`
	Options interface{} `json:"o"`
}

type subscribeOptions struct {
	TradingPairName string `json:"tradingPairName"`
}

type StreamClient struct {
	conn    *recws.RecConn
	router  *domain.Router
	writeMu sync.Mutex
}

func NewStreamClient() *StreamClient {
	return &StreamClient{
		router: domain.NewRouter(),
	}
}

func (c *StreamClient) Connect() error {
	conn := &recws.RecConn{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 5 * time.Second,
		NonVerbose:       true,
	}
	conn.Dial(defaultWebsocketEndpoint, nil)
	c.conn = conn

	go c.read()
	return nil
}

// Subscribe registers for one event name on one trading pair; the topic key
// is "<event>:<pair>". One upstream SubscribeToOrderBook covers both the
// snapshot and the event stream for the pair, so only the first subscriber
// of a pair sends it.
func (c *StreamClient) Subscribe(event, pair string) (*domain.Subscription[[]byte], error) {
	sub, isNew := c.router.Subscribe(event + ":" + pair)
	if isNew {
		err := c.writeJSON(wsCommand{
			Name:    "SubscribeToOrderBook",
			Options: subscribeOptions{TradingPairName: pair},
		})
		if err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}

	sub.Unsubscribe = func() {
		if !c.router.Unsubscribe(event + ":" + pair) {
			return
		}
		err := c.writeJSON(wsCommand{
			Name:    "UnsubscribeFromOrderBook",
			Options: subscribeOptions{TradingPairName: pair},
		})
		if err != nil {
			logger.Printf("unsubscribe from %s: %s", pair, err)
		}
	}
	return sub, nil
}

func (c *StreamClient) Close() error {
	c.router.CloseAll()
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	return c.conn.Conn.Close()
}

func (c *StreamClient) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *StreamClient) read() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %s", err)
			continue
		}

		var frame struct {
			Name    string `json:"n"`
			Options struct {
				TradingPairName string `json:"tradingPairName"`
			} `json:"o"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			logger.Printf("unparsable frame: %s", err)
			continue
		}

		switch frame.Name {
		case "SubscribeToOrderBook", "UnsubscribeFromOrderBook":
			// command acks
		default:
			topic := frame.Name + ":" + frame.Options.TradingPairName
			if !c.router.Dispatch(topic, msg) {
				logger.Printf("unhandled frame on %s", topic)
			}
		}
	}
}
