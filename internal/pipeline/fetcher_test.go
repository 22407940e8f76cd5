package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/veridex/internal/cache"
	"github.com/ppiankov/veridex/internal/model"
)

func fetcherConfig() model.HTTPConfig {
	cfg := model.DefaultConfig().HTTP
	cfg.RespectRobots = false
	cfg.RequestsPerSec = 1000
	return cfg
}

func TestFetchExtractsVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><style>p{color:red}</style></head>
			<body><nav>menu</nav><p>Visible article text.</p>
			<script>alert("x")</script><footer>copyright</footer></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, 0)
	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(text, "Visible article text.") {
		t.Errorf("text = %q", text)
	}
	for _, forbidden := range []string{"alert", "color:red", "menu", "copyright"} {
		if strings.Contains(text, forbidden) {
			t.Errorf("non-content %q leaked into %q", forbidden, text)
		}
	}
}

func TestFetchCapsContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("word ", 10000) + "</p>"))
	}))
	defer srv.Close()

	cfg := fetcherConfig()
	cfg.MaxContentChars = 100
	f := NewFetcher(cfg, nil, 0)

	text, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(text) > 100 {
		t.Errorf("content length %d exceeds cap", len(text))
	}
}

func TestFetchUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("<p>cached content</p>"))
	}))
	defer srv.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewFetcher(fetcherConfig(), store, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestFetchRespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /secret\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>hello</p>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := fetcherConfig()
	cfg.RespectRobots = true
	f := NewFetcher(cfg, nil, 0)

	if _, err := f.Fetch(context.Background(), srv.URL+"/secret/page"); err == nil {
		t.Error("expected robots.txt denial")
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/open/page"); err != nil {
		t.Errorf("allowed path failed: %v", err)
	}
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(fetcherConfig(), nil, 0)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404")
	}
}

func TestHTMLToTextPlainInput(t *testing.T) {
	got := htmlToText("just plain text, no markup")
	if got != "just plain text, no markup" {
		t.Errorf("got %q", got)
	}
}
