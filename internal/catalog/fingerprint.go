package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Fingerprint computes the identity hash of a program+version pair:
// the lowercase hex SHA-256 digest of "id:version".
func Fingerprint(programID, version string) string {
	sum := sha256.Sum256([]byte(programID + ":" + version))
	return hex.EncodeToString(sum[:])
}

// ValidFingerprint reports whether s is a 64-character lowercase hex string.
func ValidFingerprint(s string) bool {
	return fingerprintPattern.MatchString(s)
}
