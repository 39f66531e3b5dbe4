package orders

import (
	"fmt"
	"sync"
	"time"
)

// NumberGenerator hands out human-readable order numbers of the form
// ORD-YYYYMMDD-NNNNNN. The sequence is monotonic within a process and
// resets each day; uniqueness is ultimately enforced by the order_number
// unique index, with a bounded retry on collision.
type NumberGenerator struct {
	mu  sync.Mutex
	day string
	seq int64
}

// NewNumberGenerator starts the per-day sequence at an offset so parallel
// deployments seldom collide on the first orders of a day.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{seq: time.Now().UnixNano() % 100000}
}

// Next returns the next order number for the given time.
func (g *NumberGenerator) Next(now time.Time) string {
	day := now.UTC().Format("20060102")

	g.mu.Lock()
	defer g.mu.Unlock()
	if day != g.day {
		g.day = day
		g.seq = g.seq % 100000
	}
	g.seq++
	return fmt.Sprintf("ORD-%s-%06d", day, g.seq)
}
