package tor

import (
	"errors"
	"strings"
	"testing"
)

// testOnionV3Addr is a checksum-valid v3 address derived from an all-zero
// ed25519 public key. It is syntactically valid but intentionally does not
// correspond to a real service.
const testOnionV3Addr = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

// TestIsValidV3Address tests v3 address validation.
func TestIsValidV3Address(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"valid address", testOnionV3Addr, true},
		{"valid address uppercase", strings.ToUpper(strings.TrimSuffix(testOnionV3Addr, ".onion")) + ".onion", true},
		{"v2 address", "facebookcorewwwi.onion", false},
		{"too short", "abc.onion", false},
		{"too long", strings.Repeat("a", 57) + ".onion", false},
		{"invalid base32 characters", strings.Repeat("0", 56) + ".onion", false},
		{"bad checksum", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqe.onion", false},
		{"missing suffix", strings.TrimSuffix(testOnionV3Addr, ".onion"), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsValidV3Address(tt.address); got != tt.want {
				t.Errorf("IsValidV3Address(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestIsV2Address tests deprecated v2 address detection.
func TestIsV2Address(t *testing.T) {
	t.Parallel()

	if !IsV2Address("facebookcorewwwi.onion") {
		t.Error("expected v2 address to be detected")
	}
	if IsV2Address(testOnionV3Addr) {
		t.Error("v3 address should not match v2 pattern")
	}
	if IsV2Address("abc.onion") {
		t.Error("short address should not match v2 pattern")
	}
}

// TestNormalizeAddress tests seed address normalization.
func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	t.Run("passes through valid address", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeAddress(testOnionV3Addr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != testOnionV3Addr {
			t.Errorf("expected %q, got %q", testOnionV3Addr, got)
		}
	})

	t.Run("strips scheme and path", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeAddress("http://" + testOnionV3Addr + "/login?next=/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != testOnionV3Addr {
			t.Errorf("expected %q, got %q", testOnionV3Addr, got)
		}
	})

	t.Run("adds missing suffix", func(t *testing.T) {
		t.Parallel()

		got, err := NormalizeAddress(strings.TrimSuffix(testOnionV3Addr, ".onion"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != testOnionV3Addr {
			t.Errorf("expected %q, got %q", testOnionV3Addr, got)
		}
	})

	t.Run("rejects v2 address with specific error", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeAddress("facebookcorewwwi.onion")
		if !errors.Is(err, ErrV2AddressDeprecated) {
			t.Errorf("expected ErrV2AddressDeprecated, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeAddress("not an address")
		if !errors.Is(err, ErrInvalidOnionAddress) {
			t.Errorf("expected ErrInvalidOnionAddress, got %v", err)
		}
	})
}
