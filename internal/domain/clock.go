package domain

import "github.com/jonboulle/clockwork"

// clock is the time source for verification events so tests can freeze
// CheckedAt via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
