package currencycom

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/recws-org/recws"

	"github.com/bookbridge-io/bookbridge/domain"
)

var logger = log.New(log.Writer(), "[currencycom] ", log.LstdFlags)

// currency.com exposes a binance-compatible stream protocol: SUBSCRIBE
// frames with numeric request ids, payloads wrapped in a multi-stream
// envelope keyed by stream name.
const defaultWebsocketEndpoint = "wss://api-adapter.backend.currency.com/connect/stream"

type wsRequest struct {
	ID     int      `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
	ID     *int            `json:"id"`
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

func (c *StreamClient) Subscribe(topic string) (*domain.Subscription[[]byte], error) {
	sub, isNew := c.router.Subscribe(topic)
	if isNew {
		err := c.writeJSON(wsRequest{ID: requestID(), Method: "SUBSCRIBE", Params: []string{topic}})
		if err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}

	sub.Unsubscribe = func() {
		if !c.router.Unsubscribe(topic) {
			return
		}
		err := c.writeJSON(wsRequest{ID: requestID(), Method: "UNSUBSCRIBE", Params: []string{topic}})
		if err != nil {
			logger.Printf("unsubscribe from %s: %s", topic, err)
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

		envelope := &streamEnvelope{}
		if err := json.Unmarshal(msg, envelope); err != nil {
			logger.Printf("unparsable frame: %s", err)
			continue
		}

		if envelope.ID != nil {
			// response to a subscribe/unsubscribe request
			continue
		}

		if envelope.Stream == "" || !c.router.Dispatch(envelope.Stream, msg) {
			logger.Printf("unhandled frame on %q", envelope.Stream)
		}
	}
}

func requestID() int {
	return 10000 + rand.Intn(9989999)
}
