package bitstamp

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

var logger = log.New(log.Writer(), "[bitstamp] ", log.LstdFlags)

const defaultWebsocketEndpoint = "wss://ws.bitstamp.net"

type wsEvent struct {
	Event string      `json:"event"`
	Data  wsEventData `json:"data"`
}

type wsEventData struct {
	Channel string `json:"channel"`
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

func (c *StreamClient) Subscribe(channel string) (*domain.Subscription[[]byte], error) {
	sub, isNew := c.router.Subscribe(channel)
	if isNew {
		err := c.writeJSON(wsEvent{Event: "bts:subscribe", Data: wsEventData{Channel: channel}})
		if err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}

	sub.Unsubscribe = func() {
		if !c.router.Unsubscribe(channel) {
			return
		}
		err := c.writeJSON(wsEvent{Event: "bts:unsubscribe", Data: wsEventData{Channel: channel}})
		if err != nil {
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

func (c *StreamClient) read() {
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %s", err)
			continue
		}

		var frame struct {
			Event   string `json:"event"`
			Channel string `json:"channel"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			logger.Printf("unparsable frame: %s", err)
			continue
		}

		switch frame.Event {
		case "data":
			if !c.router.Dispatch(frame.Channel, msg) {
				logger.Printf("unhandled frame on %s", frame.Channel)
			}
		case "bts:subscription_succeeded", "bts:unsubscription_succeeded":
			// acks carry no payload
		case "bts:request_reconnect":
			// the server will close the connection; recws redials and the
			// books are rebuilt through resubscription
			logger.Println("server requested reconnect")
		default:
			logger.Printf("unhandled event %q", frame.Event)
		}
	}
}
