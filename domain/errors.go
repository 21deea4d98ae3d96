package domain

import "errors"

var (
	// ErrOrderBookOutOfSync: one or more stream messages were lost (or the
	// pending buffer overflowed). The book can not be trusted anymore and
	// must be rebuilt from a fresh snapshot by resubscribing.
	ErrOrderBookOutOfSync = errors.New("order book is out of sync")

	// ErrMalformedUpdate: a depth update misses required fields. The book
	// is left untouched.
	ErrMalformedUpdate = errors.New("malformed depth update")

	ErrOrderBookNotFound = errors.New("order book not found")
	ErrProviderNotFound  = errors.New("provider not found")
)
