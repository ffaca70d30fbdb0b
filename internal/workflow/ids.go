package workflow

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go-glass-dispatch/internal/store"
)

// IDGenerator issues document numbers. Uniqueness is probabilistic; callers
// retry on a duplicate.
type IDGenerator struct {
	mu  sync.Mutex
	now store.Clock
	rnd *rand.Rand
}

// NewIDGenerator returns a generator drawing from a PCG source seeded with seed.
func NewIDGenerator(now store.Clock, seed uint64) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now, rnd: rand.New(rand.NewPCG(seed, seed^0x5bd1e995))}
}

// OrderID returns ORD-<YYYY>-<MMDD>-<3 digits>.
func (g *IDGenerator) OrderID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.now()
	return fmt.Sprintf("ORD-%d-%02d%02d-%03d", t.Year(), int(t.Month()), t.Day(), g.rnd.IntN(1000))
}

// SlipID returns LS-<YYYY>-<4 digits>.
func (g *IDGenerator) SlipID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("LS-%d-%04d", g.now().Year(), g.rnd.IntN(10000))
}

// SlipNo returns a slip number in the same shape as SlipID.
func (g *IDGenerator) SlipNo() string {
	return g.SlipID()
}

// RemainderID derives the id of a remainder order from its source.
func RemainderID(sourceID string, at time.Time) string {
	return fmt.Sprintf("%s-R%d", sourceID, at.UnixMilli())
}
