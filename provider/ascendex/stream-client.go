package ascendex

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/recws-org/recws"

	"github.com/bookbridge-io/bookbridge/domain"
)

var logger = log.New(log.Writer(), "[ascendex] ", log.LstdFlags)

const defaultWebsocketEndpoint = "wss://ascendex.com/0/api/pro/v1/stream"

type wsRequest struct {
	Op string `json:"op"`
	ID string `json:"id"`
	Ch string `json:"ch"`
}

// StreamClient owns one reconnecting websocket to the ascendex stream
// endpoint and demultiplexes inbound frames by channel through a Router.
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

// Subscribe registers for one channel, sending the subscribe frame only
// when this client has no other subscriber for it yet.
func (c *StreamClient) Subscribe(channel string) (*domain.Subscription[[]byte], error) {
	sub, isNew := c.router.Subscribe(channel)
	if isNew {
		if err := c.writeJSON(wsRequest{Op: "sub", ID: requestID(), Ch: channel}); err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}

	sub.Unsubscribe = func() {
		if !c.router.Unsubscribe(channel) {
			return
		}
		if err := c.writeJSON(wsRequest{Op: "unsub", ID: requestID(), Ch: channel}); err != nil {
			logger.Printf("unsubscribe from %s: %s", channel, err)
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

// read is the single reader for the connection. Depth frames are routed by
// "<m>:<symbol>"; everything else (pings, acks) is handled here, because
// unsolicited server messages are normal, not errors.
func (c *StreamClient) read() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %s", err)
			continue
		}

		var frame struct {
			M      string `json:"m"`
			Symbol string `json:"symbol"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			logger.Printf("unparsable frame: %s", err)
			continue
		}

		switch frame.M {
		case "ping":
			if err := c.writeJSON(map[string]string{"op": "pong"}); err != nil {
				logger.Printf("pong: %s", err)
			}
		case "sub", "unsub", "connected":
			// subscription acks carry no payload
		default:
			topic := frame.M + ":" + frame.Symbol
			if !c.router.Dispatch(topic, msg) {
				logger.Printf("unhandled frame on %s", topic)
			}
		}
	}
}

func requestID() string {
	return uuid.NewString()
}
