package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates process instance ids from a monotonic counter.
//
// Ids are zero-padded so binary ordering matches generation order:
// "pi-0001", "pi-0002", ... This keeps ORDER BY id results predictable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIDs creates a generator with the given prefix.
//
// If prefix is empty, "pi" is used. The first call to Generate() returns
// "<prefix>-0001".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "pi"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id. Implements store.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Current returns the number of ids generated so far.
func (g *SequentialIDs) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate() returns "<prefix>-0001".
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedID returns the same id every time.
//
// Useful for asserting that a duplicate write is ignored.
//
// Thread-safety: FixedID is stateless and safe for concurrent use.
type FixedID string

// Generate returns the fixed id. Implements store.IDGenerator.
func (f FixedID) Generate() string {
	return string(f)
}
