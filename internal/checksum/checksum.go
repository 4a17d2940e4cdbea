// Package checksum computes and compares source content digests using the
// algorithm recorded for each file.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"errors"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// ErrUnsupportedAlgorithm is returned for algorithms the verifier cannot compute.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// Verifier compares recorded digests against content.
type Verifier interface {
	// Verify reports whether content hashes to declaredHash under declaredAlgorithm.
	Verify(declaredHash []byte, declaredAlgorithm m.HashAlgorithm, content []byte) bool
	// Sum computes the digest of content under algorithm.
	Sum(algorithm m.HashAlgorithm, content []byte) ([]byte, error)
}

type verifier struct{}

// NewVerifier returns the default stateless Verifier.
func NewVerifier() Verifier {
	return verifier{}
}

// New returns a fresh hash.Hash for the algorithm.
func New(algorithm m.HashAlgorithm) (hash.Hash, error) {
	switch algorithm {
	case m.HashMD5:
		// #nosec G401 - legacy PDBs record MD5 document checksums
		return md5.New(), nil
	case m.HashSHA1:
		// #nosec G401 - SHA1 is the portable PDB default
		return sha1.New(), nil
	case m.HashSHA256:
		return sha256.New(), nil
	case m.HashSHA384:
		return sha512.New384(), nil
	case m.HashSHA512:
		return sha512.New(), nil
	case m.HashBLAKE3:
		return blake3.New(), nil
	case m.HashUnknown:
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
}

// Sum computes the digest of content under algorithm.
func (verifier) Sum(algorithm m.HashAlgorithm, content []byte) ([]byte, error) {
	h, err := New(algorithm)
	if err != nil {
		return nil, err
	}

	_, _ = h.Write(content)

	return h.Sum(nil), nil
}

// Verify reports whether content hashes to declaredHash. Unsupported
// algorithms and length mismatches never verify.
func (v verifier) Verify(declaredHash []byte, declaredAlgorithm m.HashAlgorithm, content []byte) bool {
	if len(declaredHash) != declaredAlgorithm.Size() {
		return false
	}

	actual, err := v.Sum(declaredAlgorithm, content)
	if err != nil {
		return false
	}

	return Equal(declaredHash, actual)
}

// Equal performs a fixed-length byte comparison of two digests.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare(a, b) == 1
}
