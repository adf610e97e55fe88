package catalog

import (
	"sync"

	"github.com/banshee-data/ledgewalk/internal/ledge"
)

// ProximitySet holds the ledges whose trigger volume currently contains the
// character. Enter and Exit are reference counted per ledge ID since one
// ledge may own several trigger volumes. Iteration order is insertion order.
//
// Enter and Exit may be called from a different goroutine than Update.
type ProximitySet struct {
	mu     sync.Mutex
	order  []*ledge.Ledge
	counts map[string]int
}

// NewProximitySet returns an empty set.
func NewProximitySet() *ProximitySet {
	return &ProximitySet{counts: make(map[string]int)}
}

// Enter records that the character entered a trigger of l.
func (p *ProximitySet) Enter(l *ledge.Ledge) {
	if l == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts[l.ID] == 0 {
		p.order = append(p.order, l)
	}
	p.counts[l.ID]++
}

// Exit records that the character left a trigger of l. Unmatched exits are
// ignored.
func (p *ProximitySet) Exit(l *ledge.Ledge) {
	if l == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.counts[l.ID]
	if !ok {
		return
	}
	if n > 1 {
		p.counts[l.ID] = n - 1
		return
	}
	delete(p.counts, l.ID)
	for i, x := range p.order {
		if x.ID == l.ID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct ledges in the set.
func (p *ProximitySet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// Contains reports whether l is in the set.
func (p *ProximitySet) Contains(l *ledge.Ledge) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[l.ID] > 0
}

// Snapshot appends the current ledges to buf[:0] and returns it.
func (p *ProximitySet) Snapshot(buf []*ledge.Ledge) []*ledge.Ledge {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append(buf[:0], p.order...)
}
