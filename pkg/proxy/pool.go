package proxy

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

type contextKey struct{}

// Config defines settings for the Proxy Pool.
type Config struct {
	// MaxFailures is how many consecutive failures bench a proxy.
	MaxFailures int
	// Cooldown is how long a benched proxy sits out.
	Cooldown time.Duration
}

type entry struct {
	url       *url.URL
	failures  int
	benchedTo time.Time
}

// Pool rotates egress proxies round-robin, skipping ones that keep failing.
// It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	entries []*entry
	next    int
	cfg     Config
	now     func() time.Time
}

// NewPool creates an empty pool. Zero config values get defaults of three
// failures and a five minute cooldown.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{cfg: cfg, now: time.Now}
}

// LoadFile adds one proxy URL per line. Blank lines and '#' comments are skipped.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	defer f.Close()

	var raws []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raws = append(raws, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	return p.Add(raws...)
}

// Add parses and appends proxy URLs. A missing scheme means http.
func (p *Pool) Add(raws ...string) error {
	parsed := make([]*entry, 0, len(raws))
	for _, raw := range raws {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		parsed = append(parsed, &entry{url: u})
	}

	p.mu.Lock()
	p.entries = append(p.entries, parsed...)
	p.mu.Unlock()
	return nil
}

// Len returns the number of proxies, benched or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Next returns the next proxy that is not benched, or nil when none is usable.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.entries {
		e := p.entries[p.next]
		p.next = (p.next + 1) % len(p.entries)
		if !e.benchedTo.IsZero() && now.Before(e.benchedTo) {
			continue
		}
		if !e.benchedTo.IsZero() {
			e.benchedTo = time.Time{}
			e.failures = 0
		}
		return e.url
	}
	return nil
}

// MarkSuccess forgives one previous failure of u.
func (p *Pool) MarkSuccess(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e := p.find(u); e != nil && e.failures > 0 {
		e.failures--
	}
}

// MarkFailure records a failure of u and benches it once MaxFailures is reached.
func (p *Pool) MarkFailure(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.find(u)
	if e == nil {
		return
	}
	e.failures++
	if e.failures >= p.cfg.MaxFailures {
		e.benchedTo = p.now().Add(p.cfg.Cooldown)
	}
}

// must hold p.mu
func (p *Pool) find(u *url.URL) *entry {
	if u == nil {
		return nil
	}
	target := u.String()
	for _, e := range p.entries {
		if e.url.String() == target {
			return e
		}
	}
	return nil
}

// WithURL attaches the proxy chosen for one request to its context.
func WithURL(ctx context.Context, u *url.URL) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromRequest is an http.Transport Proxy func: it uses the proxy stored by
// WithURL and otherwise falls back to the environment (HTTPS_PROXY etc.).
func FromRequest(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(contextKey{}).(*url.URL); ok && u != nil {
		return u, nil
	}
	return http.ProxyFromEnvironment(req)
}
