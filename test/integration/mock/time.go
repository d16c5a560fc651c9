package mock

import (
	"sync"
	"time"
)

// Time is a settable clock. It satisfies the application clock interface
// so scenarios can pin "today" for date validation and checkins.
type Time struct {
	mu  sync.Mutex
	now time.Time
}

func NewTime() *Time {
	return &Time{now: time.Now().UTC()}
}

func (t *Time) Set(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

func (t *Time) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}
