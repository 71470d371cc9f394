package domain

import (
	"strconv"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for run timing. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock returns the current time source.
func Clock() clockwork.Clock {
	return clock
}

// NewJobID returns a run identifier derived from the current Unix time in
// seconds. Two runs started within the same second share an ID; callers that
// need stronger uniqueness supply their own.
func NewJobID() string {
	return strconv.FormatInt(clock.Now().Unix(), 10)
}
