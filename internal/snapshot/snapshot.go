// internal/snapshot/snapshot.go
package snapshot

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
)

// DigestSize is the number of raw bytes in a Digest (SHA-256).
const DigestSize = 32

// Digest is a fixed-size content fingerprint. Digests compare by
// byte-exact equality only.
type Digest [DigestSize]byte

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest decodes a hex-encoded digest. Anything that is not exactly
// DigestSize bytes of valid hex is rejected.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) != DigestSize*2 {
		return d, fmt.Errorf("digest must be %d hex characters, got %d", DigestSize*2, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("decoding digest: %w", err)
	}
	copy(d[:], raw)
	return d, nil
}

// Snapshot maps slash-separated relative paths to content digests. It
// represents the state of a directory tree at one point in time. Callers
// treat a Snapshot as read-only once it has been produced.
type Snapshot map[string]Digest

// NormalizePath converts an OS-specific relative path into the canonical
// key form used by Snapshot (forward slashes on every platform).
func NormalizePath(rel string) string {
	return filepath.ToSlash(rel)
}

// Paths returns the snapshot's keys in lexicographic order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Equal reports whether two snapshots contain the same paths with the
// same digests.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for p, d := range s {
		od, ok := other[p]
		if !ok || od != d {
			return false
		}
	}
	return true
}
