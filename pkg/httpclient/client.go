package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/namevet/pkg/proxy"
	"github.com/FranksOps/namevet/pkg/ratelimit"
	"github.com/FranksOps/namevet/pkg/useragent"
)

// Config defines the setup for the HTTP Client.
type Config struct {
	// Timeout caps a whole exchange. Lookups usually carry a tighter deadline
	// on their context.
	Timeout time.Duration
	// MaxRedirects limits redirect chains. Zero uses 5; negative disables
	// following, returning the 3xx response itself.
	MaxRedirects int
	// Transport, e.g. from fingerprint.Transport. Defaults to a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper
	// UserAgents supplies the User-Agent header when the request has none.
	UserAgents *useragent.Pool
	// Limiter throttles requests per destination host. Nil means unthrottled.
	Limiter *ratelimit.Limiter
	// Proxies rotates egress proxies. The transport must resolve proxies with
	// proxy.FromRequest for this to take effect.
	Proxies *proxy.Pool
}

// Client wraps a standard http.Client with per-host throttling, User-Agent
// defaults and proxy health tracking.
type Client struct {
	*http.Client
	ua      *useragent.Pool
	limiter *ratelimit.Limiter
	proxies *proxy.Pool
}

// New creates a new HTTP client based on the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UserAgents == nil {
		cfg.UserAgents = useragent.NewPool(nil)
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	c := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: cfg.Transport,
	}

	if cfg.MaxRedirects > 0 {
		max := cfg.MaxRedirects
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return fmt.Errorf("httpclient: stopped after %d redirects", max)
			}
			return nil
		}
	} else {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Client{
		Client:  c,
		ua:      cfg.UserAgents,
		limiter: cfg.Limiter,
		proxies: cfg.Proxies,
	}, nil
}

// Do executes req under ctx. It waits for the host's rate limit slot first,
// so the wait counts against the caller's deadline.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
			return nil, fmt.Errorf("httpclient: rate limit: %w", err)
		}
	}

	var via *url.URL
	if c.proxies != nil {
		if via = c.proxies.Next(); via != nil {
			ctx = proxy.WithURL(ctx, via)
		}
	}

	out := req.Clone(ctx)
	if out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", c.ua.Next())
	}

	resp, err := c.Client.Do(out)
	if via != nil {
		if err != nil {
			c.proxies.MarkFailure(via)
		} else {
			c.proxies.MarkSuccess(via)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}

// Drain reads whatever is left of the body and closes it so the underlying
// connection can go back to the pool.
func Drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
