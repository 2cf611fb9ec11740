package detect

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashSecret converts a plaintext secret into its stored form.
//
// Design decision: SHA3-256, unsalted. The hash exists so a stored record
// proves a specific secret was seen without retaining it; determinism is
// required so the same leak observed twice dedupes to one record. This is
// deliberately not a password-storage KDF.
func HashSecret(secret string) string {
	sum := sha3.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
