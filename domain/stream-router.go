package domain

import (
	"sync"
)

// Router demultiplexes inbound stream frames to per-topic subscriber
// channels. Stream clients own one Router per connection and feed it from
// their single read loop; Subscribe/Unsubscribe may be called from any
// goroutine, hence the mutex around the route map.
//
// Routes are reference counted: a second Subscribe for the same topic
// shares the channel instead of opening a second upstream subscription.
type Router struct {
	mu     sync.Mutex
	routes map[string]*route
}

type route struct {
	ch          chan []byte
	subscribers int
}

func NewRouter() *Router {
	return &Router{
		routes: make(map[string]*route),
	}
}

// Subscribe registers a route for topic. The second return value reports
// whether the topic is new on this connection, i.e. whether the caller
// still has to send the subscribe frame upstream.
func (r *Router) Subscribe(topic string) (*Subscription[[]byte], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.routes[topic]
	if ok {
		entry.subscribers++
	} else {
		entry = &route{ch: make(chan []byte, 64), subscribers: 1}
		r.routes[topic] = entry
	}

	return &Subscription[[]byte]{
		Stream: entry.ch,
		Topic:  topic,
		Unsubscribe: func() {
			r.Unsubscribe(topic)
		},
	}, !ok
}

// Dispatch routes one frame. It reports false for unknown topics so the
// caller can decide what to do with unsolicited server messages
// (heartbeats, acks) - those are common and not errors.
//
// The send happens under the route lock so it can never race a concurrent
// unsubscribe closing the channel. A full subscriber buffer drops the frame
// rather than stalling the connection read loop; the sequencer downstream
// detects the hole where the protocol allows it.
func (r *Router) Dispatch(topic string, msg []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.routes[topic]
	if !ok {
		return false
	}

	select {
	case entry.ch <- msg:
	default:
		logger.Printf("dropping frame for %s: subscriber buffer is full", topic)
	}
	return true
}

// Unsubscribe drops one reference to the topic and reports whether that
// was the last one, i.e. whether the caller still has to send the
// unsubscribe frame upstream. While other subscribers remain the route
// stays and the upstream subscription must stay with it. Removing an
// unknown topic is a no-op, which makes Subscription.Unsubscribe
// idempotent.
func (r *Router) Unsubscribe(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.routes[topic]
	if !ok {
		return false
	}

	entry.subscribers--
	if entry.subscribers > 0 {
		return false
	}
	close(entry.ch)
	delete(r.routes, topic)
	return true
}

func (r *Router) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	topics := make([]string, 0, len(r.routes))
	for topic := range r.routes {
		topics = append(topics, topic)
	}
	return topics
}

// CloseAll tears down every route, e.g. when the connection is lost for
// good. Subscribers observe their stream channel closing.
func (r *Router) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic, entry := range r.routes {
		close(entry.ch)
		delete(r.routes, topic)
	}
}
