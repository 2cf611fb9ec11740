package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/leakspider/leakspider/internal/model"
)

// Spider crawls a single onion service breadth-first.
//
// Design decision: Fetching is sequential by default. Hidden services are
// slow and fragile; hammering one with parallel requests mostly produces
// circuit failures, and sequential order keeps the visited set and frontier
// free of locking.
type Spider struct {
	// httpClient performs the requests, routed through the Tor proxy.
	httpClient *http.Client

	// maxPages caps the total number of fetch attempts per crawl.
	maxPages int

	// maxDepth caps link distance from the seed. The seed is depth 0.
	maxDepth int

	// delay is the politeness pause between consecutive requests.
	delay time.Duration

	// maxBodySize caps how many bytes of a response body are read.
	maxBodySize int64

	// userAgent is sent with every request.
	userAgent string

	// ignorePatterns are URL path globs that are never fetched.
	ignorePatterns []string

	// followPatterns, when non-empty, restrict fetching to matching paths.
	// The seed itself is always fetched.
	followPatterns []string

	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the page limit per crawl.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) { s.maxPages = n }
}

// WithMaxDepth sets the maximum link depth from the seed.
func WithMaxDepth(n int) SpiderOption {
	return func(s *Spider) { s.maxDepth = n }
}

// WithDelay sets the pause between consecutive requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) { s.delay = d }
}

// WithMaxBodySize caps the number of response bytes read per page.
func WithMaxBodySize(n int64) SpiderOption {
	return func(s *Spider) { s.maxBodySize = n }
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) { s.userAgent = ua }
}

// WithIgnorePatterns sets URL path globs to skip.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) { s.ignorePatterns = patterns }
}

// WithFollowPatterns restricts crawling to URL paths matching the globs.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) { s.followPatterns = patterns }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) { s.logger = logger }
}

// NewSpider creates a spider that fetches through the given HTTP client.
func NewSpider(httpClient *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		httpClient:  httpClient,
		maxPages:    100,
		maxDepth:    5,
		delay:       time.Second,
		maxBodySize: 5 * 1024 * 1024,
		userAgent:   "leakspider/1.0",
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result holds the outcome of one crawl.
type Result struct {
	// Pages are the successfully fetched pages, in fetch order.
	Pages []*model.Page

	// Failed counts fetch attempts that produced no page.
	Failed int

	// Visited counts distinct URLs taken off the frontier.
	Visited int
}

// frontierItem is one pending URL in the breadth-first queue.
type frontierItem struct {
	url   string
	depth int
}

// Crawl performs a breadth-first crawl starting from seedURL.
//
// Per-page failures are logged and skipped. Crawl itself fails only when
// the seed URL is unusable or the context is cancelled.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	seed, err := normalizeURL(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}

	result := &Result{Pages: make([]*model.Page, 0, s.maxPages)}
	frontier := []frontierItem{{url: seed, depth: 0}}
	visited := map[string]struct{}{seed: {}}

	for len(frontier) > 0 && result.Visited < s.maxPages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := frontier[0]
		frontier = frontier[1:]
		result.Visited++

		if result.Visited > 1 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		page, links, err := s.fetch(ctx, item.url)
		if err != nil {
			result.Failed++
			s.logger.Warn("failed to fetch page, skipping",
				slog.String("url", item.url),
				slog.String("error", err.Error()))
			continue
		}
		result.Pages = append(result.Pages, page)
		s.logger.Debug("fetched page",
			slog.String("url", item.url),
			slog.Int("status", page.StatusCode),
			slog.Int("links", len(links)))

		if item.depth >= s.maxDepth {
			continue
		}
		for _, link := range links {
			normalized, err := normalizeURL(link)
			if err != nil {
				continue
			}
			if _, seen := visited[normalized]; seen {
				continue
			}
			if !s.shouldFollow(normalized) {
				continue
			}
			visited[normalized] = struct{}{}
			frontier = append(frontier, frontierItem{url: normalized, depth: item.depth + 1})
		}
	}

	return result, nil
}

// fetch retrieves one page and returns it along with the internal links
// discovered on it.
func (s *Spider) fetch(ctx context.Context, pageURL string) (*model.Page, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read side only

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBodySize))
		return nil, nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read body: %w", err)
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
	}
	page.ComputeHash(body)

	var links []string
	switch {
	case isHTML(page.ContentType):
		parsed, err := s.parse(pageURL, body)
		if err != nil {
			// Keep the page; we just cannot extract links or text.
			s.logger.Warn("failed to parse HTML",
				slog.String("url", pageURL),
				slog.String("error", err.Error()))
		} else {
			page.Title = parsed.Title
			page.Snapshot = parsed.Text
			links = parsed.InternalLinks
		}
	case page.IsText():
		page.Snapshot = string(body)
	default:
		// Binary content is recorded but never scanned.
	}
	page.TruncateSnapshot()

	return page, links, nil
}

// parse runs the HTML parser over a fetched body.
func (s *Spider) parse(pageURL string, body []byte) (*ParseResult, error) {
	parser, err := NewParser(pageURL)
	if err != nil {
		return nil, err
	}
	return parser.Parse(strings.NewReader(string(body)))
}

// shouldFollow applies the ignore and follow globs to a candidate URL.
func (s *Spider) shouldFollow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, u.Path) {
			return false
		}
	}
	if len(s.followPatterns) == 0 {
		return true
	}
	for _, pattern := range s.followPatterns {
		if matchPattern(pattern, u.Path) {
			return true
		}
	}
	return false
}

// matchPattern matches a URL path against a glob, falling back to substring
// matching when the glob is malformed.
func matchPattern(pattern, urlPath string) bool {
	ok, err := path.Match(pattern, urlPath)
	if err != nil {
		return strings.Contains(urlPath, pattern)
	}
	return ok
}

// normalizeURL canonicalizes a URL for the visited set: lowercase host,
// no fragment, no trailing slash on the path.
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// isHTML reports whether a Content-Type header denotes an HTML document.
func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml")
}
