package tor

import "errors"

// Sentinel errors for Tor connectivity and address handling. Callers match
// them with errors.Is to decide what the operator must fix: start Tor, point
// at the right port, or correct the onion address.
var (
	// ErrProxyNotTor means something accepted the connection but did not
	// answer the SOCKS5 handshake. Usually the address points at an HTTP
	// proxy or an unrelated service.
	ErrProxyNotTor = errors.New("proxy is not a Tor SOCKS5 proxy")

	// ErrProxyCannotConnect means the TCP dial itself failed, which almost
	// always means no Tor daemon is listening there.
	ErrProxyCannotConnect = errors.New("cannot connect to Tor proxy")

	// ErrProxyTimeout means the handshake did not finish in time.
	ErrProxyTimeout = errors.New("timeout connecting to Tor proxy")

	// ErrInvalidProxyAddress means the proxy address could not be parsed
	// as host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidOnionAddress covers anything that is not a well-formed v3
	// onion address, including a bad embedded checksum.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated flags v2 addresses, unreachable on the Tor
	// network since October 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")
)

// ProxyStatus is the outcome of probing the configured SOCKS5 proxy.
type ProxyStatus int

const (
	// ProxyStatusOK means the proxy completed a SOCKS5 handshake.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType means a service answered, but not with SOCKS5.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect means the TCP dial failed.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout means the probe ran out of time.
	ProxyStatusTimeout
)

var proxyStatusText = map[ProxyStatus]string{
	ProxyStatusOK:            "OK",
	ProxyStatusWrongType:     "wrong type (not Tor)",
	ProxyStatusCannotConnect: "cannot connect",
	ProxyStatusTimeout:       "timeout",
}

// String returns a short operator-facing description of the status.
func (s ProxyStatus) String() string {
	if text, ok := proxyStatusText[s]; ok {
		return text
	}
	return "unknown"
}

// Error maps the status to its sentinel error. ProxyStatusOK maps to nil.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotTor
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
