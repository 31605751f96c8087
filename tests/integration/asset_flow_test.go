package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/black-hole/black-hole/internal/cache"
	"github.com/black-hole/black-hole/internal/config"
	"github.com/black-hole/black-hole/internal/origin"
	"github.com/black-hole/black-hole/internal/proxy"
	"github.com/black-hole/black-hole/internal/server"
	"github.com/black-hole/black-hole/internal/server/routes"
)

const remoteAssetPath = "/static/vue@3.2.0/dist/vue.global.min.js"

func TestAssetFlowMissThenHit(t *testing.T) {
	upstream := newOriginStub(t)

	env := newTestEnv(t, upstream.URL, true)

	// Miss -> upstream fetch
	resp := env.get(t, remoteAssetPath)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if hit := resp.Header.Get("X-Black-Hole-Cache-Hit"); hit != "false" {
		t.Fatalf("expected cache miss header, got %s", hit)
	}
	firstBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	cachedPath := filepath.Join(env.cacheDir, "vue", "3.2.0", "dist", "vue.global.min.js")
	if _, err := os.Stat(cachedPath); err != nil {
		t.Fatalf("stat cached file: %v", err)
	}

	// Hit，不再产生回源。
	resp2 := env.get(t, remoteAssetPath)
	if resp2.Header.Get("X-Black-Hole-Cache-Hit") != "true" {
		t.Fatalf("expected cache hit on second request")
	}
	secondBody, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if string(firstBody) != string(secondBody) {
		t.Fatalf("cache hit bytes differ: %q vs %q", firstBody, secondBody)
	}
	if upstream.count() != 1 {
		t.Fatalf("expected single upstream GET, got %d", upstream.count())
	}
}

func TestAssetFlowLocalFile(t *testing.T) {
	upstream := newOriginStub(t)
	env := newTestEnv(t, upstream.URL, true)

	content := "body { margin: 0; }"
	if err := os.WriteFile(filepath.Join(env.staticDir, "github.css"), []byte(content), 0o644); err != nil {
		t.Fatalf("write static fixture: %v", err)
	}

	resp := env.get(t, "/static/github.css")
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != content {
		t.Fatalf("body mismatch: %s", string(body))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/css" {
		t.Fatalf("expected text/css, got %s", ct)
	}
	if upstream.count() != 0 {
		t.Fatalf("local file must not touch upstream, got %d", upstream.count())
	}
}

func TestAssetFlowProxyDisabled(t *testing.T) {
	upstream := newOriginStub(t)
	env := newTestEnv(t, upstream.URL, false)

	resp := env.get(t, remoteAssetPath)
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 when proxy disabled, got %d", resp.StatusCode)
	}
	if upstream.count() != 0 {
		t.Fatalf("expected zero upstream fetches, got %d", upstream.count())
	}
}

func TestStatusRouteReportsConfig(t *testing.T) {
	upstream := newOriginStub(t)
	env := newTestEnv(t, upstream.URL, true)

	resp := env.get(t, "/-/status")
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, needle := range []string{`"proxy_enabled":true`, `"version"`, `"origin"`} {
		if !strings.Contains(string(body), needle) {
			t.Fatalf("status payload missing %s: %s", needle, string(body))
		}
	}
}

type testEnv struct {
	app       *fiber.App
	staticDir string
	cacheDir  string
}

func newTestEnv(t *testing.T, originURL string, proxyEnabled bool) *testEnv {
	t.Helper()

	staticDir := t.TempDir()
	cacheDir := t.TempDir()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080},
		Proxy: config.ProxyConfig{
			Enabled:         proxyEnabled,
			StaticDir:       staticDir,
			CacheDir:        cacheDir,
			Origin:          originURL,
			UpstreamTimeout: config.Duration(5 * time.Second),
		},
		Log: config.LogConfig{Level: "info"},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := cache.NewStore(cacheDir)
	if err != nil {
		t.Fatalf("store error: %v", err)
	}

	client := server.NewUpstreamClient(cfg)
	fetcher := origin.NewFetcher(client, cfg.Proxy.Origin)
	handler := proxy.NewHandler(cfg, logger, store, fetcher)

	app, err := server.NewApp(server.AppOptions{
		Logger: logger,
		Assets: handler,
		UIDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("app error: %v", err)
	}
	routes.RegisterStatusRoutes(app, cfg)

	return &testEnv{app: app, staticDir: staticDir, cacheDir: cacheDir}
}

func (env *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := env.app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	return resp
}

type originStub struct {
	*httptest.Server
	mu   sync.Mutex
	hits int
}

func newOriginStub(t *testing.T) *originStub {
	t.Helper()
	stub := &originStub{}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.hits++
		stub.mu.Unlock()
		_, _ = w.Write([]byte("console.log('vue')"))
	}))
	t.Cleanup(stub.Server.Close)
	return stub
}

func (s *originStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}
