package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(RDAPLookupsTotal.WithLabelValues("com", "available"))
	RecordLookup("com", "available", 120*time.Millisecond)
	after := testutil.ToFloat64(RDAPLookupsTotal.WithLabelValues("com", "available"))
	if after-before != 1 {
		t.Errorf("expected lookup counter to advance by 1, got %v", after-before)
	}

	before = testutil.ToFloat64(DirectorySearchesTotal.WithLabelValues("skipped"))
	RecordSearch("skipped")
	if got := testutil.ToFloat64(DirectorySearchesTotal.WithLabelValues("skipped")); got-before != 1 {
		t.Errorf("expected search counter to advance by 1, got %v", got-before)
	}

	before = testutil.ToFloat64(EscalationsTotal)
	EscalationsTotal.Inc()
	if got := testutil.ToFloat64(EscalationsTotal); got-before != 1 {
		t.Errorf("expected escalation counter to advance by 1, got %v", got-before)
	}
}

func TestMetricsServer(t *testing.T) {
	srv := Start(8899, nil)
	// Give it a tiny bit of time to start up
	time.Sleep(100 * time.Millisecond)
	defer srv.Stop(context.Background())

	RecordLookup("org", "taken", time.Second)
	RecordCandidate("free")

	resp, err := http.Get("http://localhost:8899/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	output := string(body)

	if !strings.Contains(output, `namevet_rdap_lookups_total{outcome="taken",suffix="org"}`) {
		t.Errorf("expected namevet_rdap_lookups_total metric for org")
	}
	if !strings.Contains(output, "namevet_rdap_lookup_duration_seconds_bucket") {
		t.Errorf("expected namevet_rdap_lookup_duration_seconds metric")
	}
	if !strings.Contains(output, `namevet_candidates_validated_total{bucket="free"}`) {
		t.Errorf("expected namevet_candidates_validated_total metric")
	}
}
