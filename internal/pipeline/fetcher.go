package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/veridex/internal/cache"
	"github.com/ppiankov/veridex/internal/jsonx"
	"github.com/ppiankov/veridex/internal/model"
	"github.com/ppiankov/veridex/internal/util"
	"github.com/ppiankov/veridex/internal/worker"
)

// Fetcher retrieves page content and reduces it to plain text for the
// analysis pipeline. It respects robots.txt, rate-limits per domain,
// and caches extracted text by URL.
type Fetcher struct {
	httpClient      *http.Client
	userAgent       string
	maxBytes        int64
	maxContentChars int
	robots          *util.RobotsChecker
	limiter         *worker.Limiter
	cache           cache.Cache
	cacheTTL        time.Duration
}

// NewFetcher creates a fetcher from configuration. store may be nil to
// disable caching.
func NewFetcher(cfg model.HTTPConfig, store cache.Cache, cacheTTL time.Duration) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:       cfg.UserAgent,
		maxBytes:        cfg.MaxBodyBytes,
		maxContentChars: cfg.MaxContentChars,
		limiter:         worker.NewLimiter(cfg.RequestsPerSec, 2),
		cache:           store,
		cacheTTL:        cacheTTL,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}
	return f
}

// Fetch retrieves the URL and returns its visible text, capped at the
// configured content length.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.cache != nil {
		if cached, ok := f.cache.Get(cache.KeyForURL(rawURL)); ok {
			return string(cached), nil
		}
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("fetch %s: disallowed by robots.txt", rawURL)
		}
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return "", err
		}
	} else if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text := htmlToText(string(body))
	if f.maxContentChars > 0 && len(text) > f.maxContentChars {
		text = jsonx.TruncateRunes(text, f.maxContentChars)
	}

	if f.cache != nil {
		_ = f.cache.Set(cache.KeyForURL(rawURL), []byte(text), f.cacheTTL)
	}
	return text, nil
}

// htmlToText extracts visible text nodes, skipping non-content
// elements. Non-HTML input comes back essentially unchanged since it
// parses as one text node.
func htmlToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return strings.TrimSpace(htmlContent)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "header":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}
