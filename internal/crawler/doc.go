// Package crawler provides the breadth-first web crawler for onion services.
//
// The Spider owns the two pieces of crawl state the tool has: the frontier
// (a FIFO queue of addresses awaiting fetch) and the visited set. Fetching
// is strictly sequential: one request completes or fails before the next
// begins, with a politeness delay in between. Per-page failures are skipped,
// never fatal; the crawl ends only when the frontier drains or the page
// limit is reached.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. Onion services have unique requirements (Tor proxy, slow connections)
//  2. We need tight control over request timing and body size limits
//  3. The parser doubles as the text source for credential matching
//
// Usage:
//
//	spider := crawler.NewSpider(httpClient, crawler.WithMaxPages(50))
//	pages, err := spider.Crawl(ctx, "http://example.onion")
package crawler
