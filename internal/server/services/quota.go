package services

import (
	"sync"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
)

// Quota caps the bytes accepted per UTC day. A limit of 0 disables it.
type Quota struct {
	mu    sync.Mutex
	limit int64
	day   time.Time
	used  int64
	now   func() time.Time
}

func NewQuota(limit int64, now func() time.Time) *Quota {
	if now == nil {
		now = time.Now
	}
	return &Quota{limit: limit, now: now}
}

// Reserve books n bytes for today. The returned func gives them back, for
// uploads that end up not being stored; it is a no-op once the day rolled
// over.
func (q *Quota) Reserve(n int64) (func(), error) {
	if q == nil || q.limit <= 0 {
		return func() {}, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.rollover()
	if q.used+n > q.limit {
		return nil, common.ErrQuotaExceeded
	}
	q.used += n

	var once sync.Once
	return func() {
		once.Do(func() {
			q.mu.Lock()
			defer q.mu.Unlock()
			if q.rollover().Equal(today) {
				q.used -= n
			}
		})
	}, nil
}

// Used returns the bytes booked today.
func (q *Quota) Used() int64 {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rollover()
	return q.used
}

// rollover resets the counter on a new UTC day. Callers hold mu.
func (q *Quota) rollover() time.Time {
	today := q.now().UTC().Truncate(24 * time.Hour)
	if !today.Equal(q.day) {
		q.day = today
		q.used = 0
	}
	return today
}
