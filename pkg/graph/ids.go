package graph

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator issues node and edge ids for one editing session.
//
// Node ids keep the "<type>_<millis>" shape, but the millisecond component is
// strictly increasing, so two nodes created within the same millisecond still
// get distinct ids.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// NewIDGeneratorWithClock is NewIDGenerator with an injectable clock.
func NewIDGeneratorWithClock(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

// NodeID returns the next node id for the given type.
func (g *IDGenerator) NodeID(nodeType string) string {
	return nodeType + "_" + strconv.FormatInt(g.next(0), 10)
}

// nodeIDAfter returns a node id whose timestamp component is above floor.
func (g *IDGenerator) nodeIDAfter(nodeType string, floor int64) string {
	return nodeType + "_" + strconv.FormatInt(g.next(floor), 10)
}

// EdgeID returns a fresh edge id.
func (g *IDGenerator) EdgeID(source, target string) string {
	return "e_" + source + "-" + target + "_" + uuid.NewString()[:8]
}

func (g *IDGenerator) next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}

	if ts <= floor {
		ts = floor + 1
	}

	g.last = ts

	return ts
}
