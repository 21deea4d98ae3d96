package helpers

import (
	"encoding/json"
	"time"
)

// ToJsonString converts any value to JSON string.
func ToJsonString(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// WithLatestFrom resolves once both inputs have resolved at least once.
func WithLatestFrom(ch, ch2 <-chan struct{}) <-chan struct{} {
	resCh := make(chan struct{}, 1)

	go func() {
		first, second := false, false
		for !(first && second) {
			select {
			case <-ch:
				first = true
				ch = nil
			case <-ch2:
				second = true
				ch2 = nil
			}
		}
		resCh <- struct{}{}
	}()

	return resCh
}

// AfterSignal resolves once after the duration elapses.
func AfterSignal(d time.Duration) <-chan struct{} {
	out := make(chan struct{}, 1)

	go func() {
		<-time.After(d)
		out <- struct{}{}
	}()

	return out
}
