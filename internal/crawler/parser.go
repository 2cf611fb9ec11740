package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts links and text content from HTML pages.
//
// Design decision: golang.org/x/net/html instead of regex scraping. Hidden
// services serve plenty of malformed HTML, which the tokenizer repairs the
// same way browsers do, and one DOM walk yields both the link set for the
// frontier and the text the credential matchers scan.
type Parser struct {
	// baseURL is the page URL; relative hrefs resolve against it.
	baseURL *url.URL
}

// ParseResult contains everything extracted from one HTML page.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links contains all discovered absolute URLs.
	Links []string

	// InternalLinks are links within the same service. Only these are
	// enqueued for crawling.
	InternalLinks []string

	// ExternalLinks are links to other services (onion or clearnet).
	ExternalLinks []string

	// Text is the concatenated text content of the page, including HTML
	// comments. Credential matchers scan this.
	Text string
}

// skippedSchemes are href prefixes that never resolve to a fetchable page.
var skippedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// NewParser creates a parser for a page at the given URL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse walks the HTML document once, collecting links and text together.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
	}
	var text strings.Builder

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			p.processElement(n, result)
		case html.TextNode, html.CommentNode:
			// Comment nodes are scanned too; dump pages sometimes hide
			// credential lists in commented-out markup.
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)

	result.Text = text.String()
	return result, nil
}

// processElement handles a single HTML element node.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	case "a":
		href := getAttr(n, "href")
		if href == "" {
			return
		}
		if resolved := p.resolveURL(href); resolved != "" {
			result.Links = append(result.Links, resolved)
			p.classifyLink(resolved, result)
		}
	}
}

// resolveURL turns an href into an absolute URL, dropping fragments-only
// links and non-navigable schemes.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		// Fragment-only links navigate within the page already fetched.
		return ""
	}
	for _, scheme := range skippedSchemes {
		if strings.HasPrefix(href, scheme) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(u).String()
}

// classifyLink sorts a resolved link into internal or external. Only
// internal links feed the frontier; following a discovered link to another
// service would walk off the authorized target.
func (p *Parser) classifyLink(link string, result *ParseResult) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}
	if strings.EqualFold(u.Host, p.baseURL.Host) {
		result.InternalLinks = append(result.InternalLinks, link)
		return
	}
	result.ExternalLinks = append(result.ExternalLinks, link)
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
