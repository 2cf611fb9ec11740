// Package tor provides Tor network connectivity for leakspider.
//
// It wraps a SOCKS5 dialer around the standard http.Client, verifies that
// the configured proxy actually speaks SOCKS5 before any crawling starts,
// validates onion addresses, and can manage an embedded Tor daemon so the
// tool works without an external Tor installation.
//
// All crawler traffic goes through this package; leakspider never makes a
// direct clearnet connection to a target.
package tor
