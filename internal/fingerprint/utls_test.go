package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestTransport_Profiles(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	for _, p := range []Profile{ProfileGo, ProfileChrome, ProfileFirefox, ProfileSafari, ProfileRandom} {
		t.Run(string(p), func(t *testing.T) {
			// httptest uses a self-signed certificate.
			tr, err := newTransport(p, nil, true)
			if err != nil {
				t.Fatalf("unexpected error creating transport for %s: %v", p, err)
			}

			client := &http.Client{Transport: tr}
			resp, err := client.Get(ts.URL + "/domain/zurvok.com")
			if err != nil {
				t.Fatalf("request failed for profile %s: %v", p, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d for profile %s", resp.StatusCode, p)
			}
		})
	}
}

func TestTransport_ProxyFunc(t *testing.T) {
	called := false
	proxyFunc := func(*http.Request) (*url.URL, error) {
		called = true
		return nil, nil
	}

	rt, err := Transport(ProfileGo, proxyFunc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := rt.(*http.Transport)
	req, _ := http.NewRequest(http.MethodGet, "https://rdap.verisign.com/com/v1/domain/x.com", nil)
	_, _ = tr.Proxy(req)
	if !called {
		t.Error("expected proxy func to be installed")
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	_, err := Transport(Profile("unknown_browser"), nil)
	if err == nil {
		t.Fatal("expected error for unknown profile, got nil")
	}
	if err.Error() != `fingerprint: unknown profile "unknown_browser"` {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestParseProfile(t *testing.T) {
	tests := map[string]Profile{
		"":         ProfileGo,
		"go":       ProfileGo,
		" Chrome ": ProfileChrome,
		"FIREFOX":  ProfileFirefox,
		"random":   ProfileRandom,
	}
	for in, want := range tests {
		got, err := ParseProfile(in)
		if err != nil {
			t.Fatalf("ParseProfile(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseProfile(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseProfile("netscape"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
