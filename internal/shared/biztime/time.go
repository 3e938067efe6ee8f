// Package biztime centralises time handling. Storage uses UTC; the configured
// business timezone only decides where a calendar day starts, which is what
// daily usage statistics are bucketed by.
package biztime

import (
	"sync"
	"time"
)

const DefaultTimezone = "UTC"

var (
	mu          sync.RWMutex
	bizLocation = time.UTC
	nowFunc     = time.Now
)

// Init sets the business timezone. An empty tz keeps UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return err
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return bizLocation
}

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	mu.RLock()
	f := nowFunc
	mu.RUnlock()
	return f().UTC()
}

// StartOfDayUTC returns the UTC instant at which t's business day begins.
func StartOfDayUTC(t time.Time) time.Time {
	local := t.In(Location())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Location()).UTC()
}

// SetNowFuncForTest overrides the clock and returns a restore function.
func SetNowFuncForTest(f func() time.Time) func() {
	mu.Lock()
	prev := nowFunc
	nowFunc = f
	mu.Unlock()
	return func() {
		mu.Lock()
		nowFunc = prev
		mu.Unlock()
	}
}
