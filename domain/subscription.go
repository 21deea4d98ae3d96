package domain

// Subscription is one active stream topic. Unsubscribe is safe to call at
// any time and is idempotent.
type Subscription[T any] struct {
	Stream      chan T
	Topic       string
	Unsubscribe func()
}
