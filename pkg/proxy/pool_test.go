package proxy

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPool_RoundRobin(t *testing.T) {
	p := NewPool(Config{})
	if err := p.Add("10.0.0.1:8080", "http://10.0.0.2:8080"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := p.Next()
	second := p.Next()
	third := p.Next()

	if first.String() != "http://10.0.0.1:8080" {
		t.Errorf("expected scheme to default to http, got %s", first)
	}
	if second.String() != "http://10.0.0.2:8080" {
		t.Errorf("unexpected second proxy %s", second)
	}
	if third.String() != first.String() {
		t.Errorf("expected rotation to wrap, got %s", third)
	}
}

func TestPool_Empty(t *testing.T) {
	p := NewPool(Config{})
	if u := p.Next(); u != nil {
		t.Errorf("expected nil from empty pool, got %s", u)
	}
}

func TestPool_BenchAndRevive(t *testing.T) {
	now := time.Now()
	p := NewPool(Config{MaxFailures: 2, Cooldown: time.Minute})
	p.now = func() time.Time { return now }
	_ = p.Add("http://a:1", "http://b:1")

	a := p.Next()
	p.MarkFailure(a)
	p.MarkFailure(a)

	for i := 0; i < 4; i++ {
		if u := p.Next(); u.String() == a.String() {
			t.Fatalf("benched proxy returned on iteration %d", i)
		}
	}

	now = now.Add(2 * time.Minute)
	seen := false
	for i := 0; i < 2; i++ {
		if p.Next().String() == a.String() {
			seen = true
		}
	}
	if !seen {
		t.Error("expected proxy to come back after cooldown")
	}
}

func TestPool_AllBenched(t *testing.T) {
	p := NewPool(Config{MaxFailures: 1})
	_ = p.Add("http://a:1")
	p.MarkFailure(p.Next())
	if u := p.Next(); u != nil {
		t.Errorf("expected nil when all proxies benched, got %s", u)
	}
}

func TestPool_MarkSuccessForgives(t *testing.T) {
	p := NewPool(Config{MaxFailures: 2})
	_ = p.Add("http://a:1")
	u := p.Next()
	p.MarkFailure(u)
	p.MarkSuccess(u)
	p.MarkFailure(u)
	if p.Next() == nil {
		t.Error("success should have offset the earlier failure")
	}
}

func TestPool_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	content := "# egress\nhttp://a:1\n\nb:2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPool(Config{})
	if err := p.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("expected 2 proxies, got %d", p.Len())
	}
}

func TestFromRequest(t *testing.T) {
	p := NewPool(Config{})
	_ = p.Add("http://proxy.internal:3128")
	u := p.Next()

	req, _ := http.NewRequestWithContext(WithURL(context.Background(), u), http.MethodGet, "https://rdap.example/domain/x.com", nil)
	got, err := FromRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != u.String() {
		t.Errorf("expected %s, got %v", u, got)
	}
}
