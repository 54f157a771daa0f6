// Package rdap checks domain availability against registry RDAP servers.
//
// Only the HTTP status is interpreted: 404 means the domain is free, any 2xx
// means it is registered, and everything else (timeouts, transport errors,
// other statuses, suffixes without a configured server) is Unknown. Each
// lookup has its own deadline and never affects its siblings.
package rdap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/FranksOps/namevet/internal/fanout"
	"github.com/FranksOps/namevet/internal/metrics"
	"github.com/FranksOps/namevet/internal/slug"
	"github.com/FranksOps/namevet/pkg/httpclient"
)

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 8 * time.Second

// Config configures a Checker. Zero values get defaults.
type Config struct {
	// Servers maps suffix to RDAP base URL. Defaults to DefaultServers.
	Servers map[string]string
	// Primary is the suffix checked first. Defaults to DefaultPrimary.
	Primary string
	// Timeout bounds each lookup. Defaults to DefaultTimeout.
	Timeout time.Duration
	Client  *httpclient.Client
	Logger  *slog.Logger
}

// Checker queries RDAP servers. It holds no mutable state and is safe for
// concurrent use.
type Checker struct {
	servers  map[string]string
	suffixes []string // primary first, then the rest sorted
	primary  string
	timeout  time.Duration
	client   *httpclient.Client
	logger   *slog.Logger
}

// New creates a Checker. It fails only on an unparseable server URL.
func New(cfg Config) (*Checker, error) {
	if cfg.Servers == nil {
		cfg.Servers = DefaultServers
	}
	if cfg.Primary == "" {
		cfg.Primary = DefaultPrimary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		client, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
		if err != nil {
			return nil, fmt.Errorf("rdap: %w", err)
		}
		cfg.Client = client
	}

	servers := make(map[string]string, len(cfg.Servers))
	for suffix, base := range cfg.Servers {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("rdap: server for %q: %w", suffix, err)
		}
		servers[normalizeSuffix(suffix)] = strings.TrimSuffix(base, "/") + "/"
	}

	primary := normalizeSuffix(cfg.Primary)
	suffixes := make([]string, 0, len(servers))
	for suffix := range servers {
		if suffix != primary {
			suffixes = append(suffixes, suffix)
		}
	}
	sort.Strings(suffixes)
	if _, ok := servers[primary]; ok {
		suffixes = append([]string{primary}, suffixes...)
	}

	return &Checker{
		servers:  servers,
		suffixes: suffixes,
		primary:  primary,
		timeout:  cfg.Timeout,
		client:   cfg.Client,
		logger:   cfg.Logger,
	}, nil
}

// Primary returns the primary suffix.
func (c *Checker) Primary() string { return c.primary }

// Suffixes returns every configured suffix, primary first.
func (c *Checker) Suffixes() []string {
	out := make([]string, len(c.suffixes))
	copy(out, c.suffixes)
	return out
}

// CheckSuffix looks up label.suffix. It never fails; problems surface as an
// Unknown result with a Reason.
func (c *Checker) CheckSuffix(ctx context.Context, label, suffix string) DomainResult {
	suffix = normalizeSuffix(suffix)
	res := DomainResult{
		Domain: label + "." + suffix,
		Suffix: suffix,
	}

	base, ok := c.servers[suffix]
	if !ok {
		res.Reason = ReasonUnsupported
		metrics.RecordLookup(suffix, res.Available.String(), 0)
		return res
	}

	start := time.Now()
	c.lookup(ctx, base, &res)
	res.Duration = time.Since(start)

	metrics.RecordLookup(suffix, res.Available.String(), res.Duration)
	c.logger.Debug("rdap lookup",
		"domain", res.Domain,
		"available", res.Available.String(),
		"status", res.StatusCode,
		"reason", res.Reason,
		"duration", res.Duration,
	)
	return res
}

func (c *Checker) lookup(ctx context.Context, base string, res *DomainResult) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+res.Domain, nil)
	if err != nil {
		res.Reason = ReasonBadRequest
		return
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		res.Reason = ReasonTransport
		if isTimeout(ctx, err) {
			res.Reason = ReasonTimeout
		}
		return
	}
	// Drained before close so the connection can be reused.
	defer httpclient.Drain(resp)

	res.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode == http.StatusNotFound:
		res.Available = Available
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res.Available = Taken
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		res.Reason = ReasonRateLimited
	default:
		res.Reason = fmt.Sprintf("status_%d", resp.StatusCode)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// CheckPrimarySuffix checks only the primary suffix. It returns nil without
// any network call when the name's label is too short to check.
func (c *Checker) CheckPrimarySuffix(ctx context.Context, name string) *DomainResult {
	label := slug.Normalize(name)
	if !slug.Valid(label) {
		return nil
	}
	res := c.CheckSuffix(ctx, label, c.primary)
	return &res
}

// CheckAllSuffixes normalizes name once and checks every configured suffix
// concurrently. Results follow Suffixes order. A too-short label yields an
// empty slice and no network calls.
func (c *Checker) CheckAllSuffixes(ctx context.Context, name string) []DomainResult {
	return c.sweep(ctx, name, c.suffixes)
}

// CheckOtherSuffixes is CheckAllSuffixes without the primary suffix.
func (c *Checker) CheckOtherSuffixes(ctx context.Context, name string) []DomainResult {
	others := c.suffixes
	if len(others) > 0 && others[0] == c.primary {
		others = others[1:]
	}
	return c.sweep(ctx, name, others)
}

func (c *Checker) sweep(ctx context.Context, name string, suffixes []string) []DomainResult {
	label := slug.Normalize(name)
	if !slug.Valid(label) {
		return []DomainResult{}
	}

	results := make([]DomainResult, len(suffixes))
	panics := fanout.Each(ctx, len(suffixes), 0, func(ctx context.Context, i int) {
		results[i] = c.CheckSuffix(ctx, label, suffixes[i])
	})
	for i, err := range panics {
		if err != nil {
			c.logger.Error("rdap lookup panicked", "domain", label+"."+suffixes[i], "err", err)
			results[i] = DomainResult{
				Domain: label + "." + suffixes[i],
				Suffix: suffixes[i],
				Reason: ReasonPanic,
			}
		}
	}
	return results
}

func normalizeSuffix(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
}
