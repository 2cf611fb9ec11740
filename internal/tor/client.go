package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the pre-crawl proxy probe. The probe is a local
// TCP handshake with the proxy itself, never a request through Tor, so two
// seconds is plenty.
const checkProxyTimeout = 2 * time.Second

// Client provides HTTP connectivity through a Tor SOCKS5 proxy.
//
// Design decision: The client knows nothing about daemon lifecycle; that is
// EmbeddedTor's job. Crawl code gets the same Client whether the proxy is
// the embedded daemon or a system Tor on 9050.
type Client struct {
	proxyAddress string
	dialer       proxy.Dialer
	timeout      time.Duration
}

// NewClient creates a Tor client for the given proxy address, which must be
// in "host:port" form (e.g. "127.0.0.1:9050"). Only the format is checked
// here; call CheckConnection before crawling to verify the proxy actually
// answers.
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// Tor's SOCKS port is unauthenticated in the default configuration.
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress reports whether the address parses as host:port with
// a port in range.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 protocol constants.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
	socks5CmdConnect   = 0x01
	socks5AddrDomain   = 0x03

	// socks5TestOnion is a synthetic non-existent address. The probe only
	// needs the proxy to process a CONNECT request, not to succeed.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection probes the configured proxy with a real SOCKS5 handshake.
// A string match or banner check would accept an HTTP proxy or some random
// listener; speaking the protocol rejects those reliably.
//
// An unusable proxy is a fatal setup condition: the crawl must never fall
// back to direct connections and leak the operator's address.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	if status := negotiateSocks5Auth(conn); status != ProxyStatusOK {
		return status
	}
	return probeSocks5Connect(conn)
}

// negotiateSocks5Auth performs the version/method negotiation, offering
// only "no authentication".
func negotiateSocks5Auth(conn net.Conn) ProxyStatus {
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// probeSocks5Connect sends a CONNECT for the synthetic onion address. Tor
// replies with a failure code for the non-existent host, which is fine:
// any well-formed SOCKS5 reply proves the proxy processes requests.
func probeSocks5Connect(conn net.Conn) ProxyStatus {
	req := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrDomain,
		byte(len(socks5TestOnion)),
	}
	req = append(req, []byte(socks5TestOnion)...)
	req = append(req, 0x00, 0x50) // port 80

	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	reply := make([]byte, 4)
	if _, err := io.ReadFull(conn, reply); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if reply[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client that routes everything through the
// Tor proxy.
//
// Design decisions:
//   - TLS verification is off: hidden services use self-signed certs, and
//     the onion address itself authenticates the endpoint
//   - Compression is off to avoid compression side channels over Tor
//   - The connection pool is small because each connection ties up a circuit
//   - Redirects are capped so redirect loops cannot stall the crawl
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.Dial(network, addr)
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // Required for .onion services
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// HTTPClientWithConfig creates an HTTP client that additionally injects a
// cookie and custom headers into every request, for sites whose config
// carries a session cookie or auth headers.
func (c *Client) HTTPClientWithConfig(cookie string, headers map[string]string) *http.Client {
	client := c.NewHTTPClient()
	client.Transport = &headerInjectingTransport{
		base:    client.Transport,
		cookie:  cookie,
		headers: headers,
	}
	return client
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// headerInjectingTransport adds the configured cookie and headers to every
// outgoing request, redirect hops included.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
