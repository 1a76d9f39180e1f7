package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
)

const releaseManifest = `last_release_id: 2
last_asset_id: 2
releases:
  - id: 1
    name: v1.1.0
    tag_name: v1.1.0
    url: v1.1.0
    published_at: 2026-01-02T00:00:00Z
    assets:
      - id: 1
        name: postag_1.1.0_linux_amd64.tar.gz
        size: 10
        url: v1.1.0/postag_1.1.0_linux_amd64.tar.gz
  - id: 2
    name: v1.2.0
    tag_name: v1.2.0
    url: v1.2.0
    published_at: 2026-03-04T00:00:00Z
    assets:
      - id: 2
        name: postag_1.2.0_linux_amd64.tar.gz
        size: 10
        url: v1.2.0/postag_1.2.0_linux_amd64.tar.gz
`

func releaseServer(t *testing.T, manifest string) selfupdate.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/happyhackingspace/postag/manifest.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(manifest))
	}))
	t.Cleanup(srv.Close)

	src, err := selfupdate.NewHttpSource(selfupdate.HttpConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	return selfupdate.Config{Source: src, OS: "linux", Arch: "amd64"}
}

func runUp(t *testing.T, version string, cfg selfupdate.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(version)
	c.updateConfig = cfg
	c.SetOutput(&out)
	c.SetArgs(append([]string{"up", "--silent"}, args...))
	err := c.Run()
	return out.String(), err
}

func TestUpAlreadyLatest(t *testing.T) {
	cfg := releaseServer(t, releaseManifest)
	for _, version := range []string{"1.2.0", "v1.3.0"} {
		out, err := runUp(t, version, cfg)
		if err != nil {
			t.Fatalf("%s: %v", version, err)
		}
		if want := "Already up to date (" + version + ")"; !strings.Contains(out, want) {
			t.Errorf("%s: output = %q, want %q", version, out, want)
		}
	}
}

func TestUpCheck(t *testing.T) {
	cfg := releaseServer(t, releaseManifest)
	tests := []struct {
		version string
		want    string
	}{
		{"1.0.0", "Update available: 1.0.0 -> 1.2.0"},
		{"1.1.0", "Update available: 1.1.0 -> 1.2.0"},
		{"dev", "Update available: dev -> 1.2.0"},
	}
	for _, tt := range tests {
		out, err := runUp(t, tt.version, cfg, "--check")
		if err != nil {
			t.Fatalf("%s: %v", tt.version, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: output = %q, want %q", tt.version, out, tt.want)
		}
	}
}

func TestUpNoRelease(t *testing.T) {
	if _, err := runUp(t, "1.0.0", releaseServer(t, "releases: []\n"), "--check"); err == nil {
		t.Error("expected error for an empty release list")
	}

	// Releases without an asset for this platform do not count.
	cfg := releaseServer(t, releaseManifest)
	cfg.OS = "plan9"
	if _, err := runUp(t, "1.0.0", cfg, "--check"); err == nil {
		t.Error("expected error for a platform without assets")
	}
}
