package tor

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 onion address without ".onion".
	OnionV3Length = 56

	// OnionV3Version is the version byte embedded in v3 addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

var (
	// onionV3Pattern matches 56 base32 characters plus the suffix.
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

	// onionV2Pattern matches the dead v2 format, 16 base32 characters.
	onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
)

// checksumPrefix comes from the Tor rendezvous specification: the embedded
// checksum is SHA3-256(".onion checksum" || pubkey || version)[:2].
var checksumPrefix = []byte(".onion checksum")

// IsValidV3Address checks both the format and the embedded checksum of a
// v3 onion address. Checking the checksum and not just the pattern catches
// typos and corrupted addresses before any crawl time is spent on them,
// the same way Tor itself rejects them at connect time.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	raw := strings.ToUpper(strings.TrimSuffix(address, OnionSuffix))
	decoded, err := base32.StdEncoding.DecodeString(raw)
	if err != nil {
		return false
	}

	// Layout: 32-byte ed25519 pubkey, 2-byte checksum, 1-byte version.
	if len(decoded) != 35 {
		return false
	}
	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]

	if version != OnionV3Version {
		return false
	}
	want := onionChecksum(pubkey, version)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

// onionChecksum computes the two checksum bytes for a v3 address.
func onionChecksum(pubkey []byte, version byte) [2]byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	sum := sha3.Sum256(data)
	return [2]byte{sum[0], sum[1]}
}

// IsV2Address reports whether the address matches the retired v2 format.
// V2 services went dark in October 2021; detecting them here turns a silent
// connection failure into a useful operator error.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// NormalizeAddress canonicalizes a seed address and validates it. Common
// input variations are tolerated: uppercase letters, a URL scheme, a
// trailing path, or a missing .onion suffix.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")

	if idx := strings.IndexAny(address, "/?#"); idx != -1 {
		address = address[:idx]
	}
	if !strings.HasSuffix(address, OnionSuffix) {
		address += OnionSuffix
	}

	if IsValidV3Address(address) {
		return address, nil
	}
	if IsV2Address(address) {
		return "", ErrV2AddressDeprecated
	}
	return "", ErrInvalidOnionAddress
}
