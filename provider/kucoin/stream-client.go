package kucoin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/recws-org/recws"

	"github.com/bookbridge-io/bookbridge/domain"
)

type wsRequest struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Topic          string `json:"topic,omitempty"`
	PrivateChannel bool   `json:"privateChannel,omitempty"`
	Response       bool   `json:"response,omitempty"`
}

type wsFrame struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
}

// StreamClient owns one reconnecting websocket to a kucoin instance
// server. The endpoint and connection token come from a REST handshake,
// so the client needs a SyncAPI even for public streams.
type StreamClient struct {
	conn    *recws.RecConn
	syncAPI *SyncAPI
	router  *domain.Router
	writeMu sync.Mutex
	stop    chan struct{}
}

func NewStreamClient(syncAPI *SyncAPI) *StreamClient {
	return &StreamClient{
		syncAPI: syncAPI,
		router:  domain.NewRouter(),
		stop:    make(chan struct{}),
	}
}

func (c *StreamClient) Connect() error {
	opts, err := c.syncAPI.WsConnOpts()
	if err != nil {
		return err
	}

	server, err := opts.Servers.RandomServer()
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s?token=%s&connectId=%s",
		server.Endpoint, opts.Token, uuid.NewString())

	conn := &recws.RecConn{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 5 * time.Second,
		NonVerbose:       true,
	}
	conn.Dial(endpoint, nil)
	c.conn = conn

	go c.read()
	go c.pingLoop(time.Duration(server.PingInterval) * time.Millisecond)
	return nil
}

// Subscribe registers for one topic, sending the subscribe frame only
// when this client has no other subscriber for it yet.
func (c *StreamClient) Subscribe(topic string) (*domain.Subscription[[]byte], error) {
	sub, isNew := c.router.Subscribe(topic)
	if isNew {
		err := c.writeJSON(wsRequest{
			ID:       uuid.NewString(),
			Type:     "subscribe",
			Topic:    topic,
			Response: true,
		})
		if err != nil {
			sub.Unsubscribe()
			return nil, err
		}
	}

	sub.Unsubscribe = func() {
		if !c.router.Unsubscribe(topic) {
			return
		}
		err := c.writeJSON(wsRequest{
			ID:    uuid.NewString(),
			Type:  "unsubscribe",
			Topic: topic,
		})
		if err != nil {
			logger.Printf("unsubscribe from %s: %s", topic, err)
		}
	}
	return sub, nil
}

func (c *StreamClient) Close() error {
	close(c.stop)
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

// Kucoin drops connections that miss the ping interval negotiated in the
// token handshake.
func (c *StreamClient) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.writeJSON(wsRequest{ID: uuid.NewString(), Type: "ping"}); err != nil {
				logger.Printf("ping: %s", err)
			}
		}
	}
}

func (c *StreamClient) read() {
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Printf("read: %s", err)
			continue
		}

		frame := &wsFrame{}
		if err := json.Unmarshal(msg, frame); err != nil {
			logger.Printf("unparsable frame: %s", err)
			continue
		}

		switch frame.Type {
		case "welcome", "ack", "pong":
			// control frames carry no payload
		case "message":
			if !c.router.Dispatch(frame.Topic, msg) {
				logger.Printf("unhandled frame on %s", frame.Topic)
			}
		default:
			logger.Printf("unexpected frame type %q", frame.Type)
		}
	}
}
