package useragent

import (
	"sync/atomic"
)

// Default identifies the tool to registry operators, several of whom ask RDAP
// clients to send a descriptive User-Agent.
const Default = "namevet/0.1 (+https://github.com/FranksOps/namevet)"

// Pool hands out User-Agent strings round-robin. It is safe for concurrent use.
type Pool struct {
	uas     []string
	counter atomic.Uint64
}

// NewPool creates a pool from uas, skipping blanks. An empty list yields a
// pool that always returns Default.
func NewPool(uas []string) *Pool {
	copied := make([]string, 0, len(uas))
	for _, ua := range uas {
		if ua != "" {
			copied = append(copied, ua)
		}
	}
	if len(copied) == 0 {
		copied = append(copied, Default)
	}
	return &Pool{uas: copied}
}

// Next returns the next User-Agent.
func (p *Pool) Next() string {
	idx := p.counter.Add(1) - 1
	return p.uas[idx%uint64(len(p.uas))]
}

// All returns a copy of the pool's User-Agents.
func (p *Pool) All() []string {
	out := make([]string, len(p.uas))
	copy(out, p.uas)
	return out
}
