// Package model defines the data structures for source verification.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Path represents a file system path.
type Path string

// ErrInvalidRecord is returned when a source record or link rule violates
// its construction invariants.
var ErrInvalidRecord = errors.New("invalid source record")

// HashAlgorithm identifies the digest scheme a source checksum was computed with.
type HashAlgorithm string

// Supported hash algorithms.
const (
	HashUnknown HashAlgorithm = ""
	HashMD5     HashAlgorithm = "md5"
	HashSHA1    HashAlgorithm = "sha1"
	HashSHA256  HashAlgorithm = "sha256"
	HashSHA384  HashAlgorithm = "sha384"
	HashSHA512  HashAlgorithm = "sha512"
	HashBLAKE3  HashAlgorithm = "blake3"
)

var digestSizes = map[HashAlgorithm]int{
	HashMD5:    16,
	HashSHA1:   20,
	HashSHA256: 32,
	HashSHA384: 48,
	HashSHA512: 64,
	HashBLAKE3: 32,
}

// Checksum algorithm GUIDs as they appear in portable PDB Document rows.
var algorithmGUIDs = map[uuid.UUID]HashAlgorithm{
	uuid.MustParse("406ea660-64cf-4c82-b6f0-42d48172a799"): HashMD5,
	uuid.MustParse("ff1816ec-aa5e-4d10-87f7-6f4963833460"): HashSHA1,
	uuid.MustParse("8829d00f-11b8-4213-878b-770e8597ac16"): HashSHA256,
}

// Size returns the digest length in bytes, or 0 for unknown algorithms.
func (a HashAlgorithm) Size() int {
	return digestSizes[a]
}

// Known reports whether the algorithm is one the verifier can compute.
func (a HashAlgorithm) Known() bool {
	_, ok := digestSizes[a]
	return ok
}

func (a HashAlgorithm) String() string {
	if a == HashUnknown {
		return "unknown"
	}

	return string(a)
}

// ParseHashAlgorithm accepts algorithm names ("sha256", "SHA-256") as well as
// the checksum GUIDs recorded in portable PDBs.
func ParseHashAlgorithm(value string) (HashAlgorithm, error) {
	trimmed := strings.TrimSpace(value)

	if id, err := uuid.Parse(trimmed); err == nil {
		if alg, ok := algorithmGUIDs[id]; ok {
			return alg, nil
		}

		return HashUnknown, fmt.Errorf("%w: unknown checksum algorithm guid %s", ErrInvalidRecord, id)
	}

	name := strings.ToLower(strings.ReplaceAll(trimmed, "-", ""))
	alg := HashAlgorithm(name)

	if !alg.Known() {
		return HashUnknown, fmt.Errorf("%w: unknown hash algorithm %q", ErrInvalidRecord, value)
	}

	return alg, nil
}

// SourceContent is the tagged variant describing where a record's text lives.
// The only implementations are EmbeddedContent and OnDiskContent.
type SourceContent interface {
	sourceContent()
}

// EmbeddedContent carries the full source text packaged inside the artifact.
type EmbeddedContent struct {
	Text string
}

// OnDiskContent marks a record whose text has not been located yet.
type OnDiskContent struct{}

func (EmbeddedContent) sourceContent() {}
func (OnDiskContent) sourceContent()   {}

// SourceRecord describes one file the artifact's debug info claims to have
// compiled. Records are immutable; use NewSourceRecord or
// NewEmbeddedSourceRecord to build one.
type SourceRecord struct {
	path      Path
	hash      []byte
	algorithm HashAlgorithm
	content   SourceContent
}

// NewSourceRecord builds a record whose text must be located on disk.
func NewSourceRecord(path Path, algorithm HashAlgorithm, hash []byte) (SourceRecord, error) {
	return newSourceRecord(path, algorithm, hash, OnDiskContent{})
}

// NewEmbeddedSourceRecord builds a record whose text is embedded in the artifact.
func NewEmbeddedSourceRecord(path Path, algorithm HashAlgorithm, hash []byte, text string) (SourceRecord, error) {
	return newSourceRecord(path, algorithm, hash, EmbeddedContent{Text: text})
}

func newSourceRecord(path Path, algorithm HashAlgorithm, hash []byte, content SourceContent) (SourceRecord, error) {
	if path == "" {
		return SourceRecord{}, fmt.Errorf("%w: empty path", ErrInvalidRecord)
	}

	if !algorithm.Known() {
		return SourceRecord{}, fmt.Errorf("%w: %s: unknown hash algorithm %q", ErrInvalidRecord, path, algorithm)
	}

	if len(hash) != algorithm.Size() {
		return SourceRecord{}, fmt.Errorf("%w: %s: %s digest is %d bytes, want %d",
			ErrInvalidRecord, path, algorithm, len(hash), algorithm.Size())
	}

	owned := make([]byte, len(hash))
	copy(owned, hash)

	return SourceRecord{
		path:      path,
		hash:      owned,
		algorithm: algorithm,
		content:   content,
	}, nil
}

// Path returns the file path as recorded in the debug metadata.
func (r SourceRecord) Path() Path { return r.path }

// Algorithm returns the declared hash algorithm.
func (r SourceRecord) Algorithm() HashAlgorithm { return r.algorithm }

// Hash returns a copy of the recorded checksum.
func (r SourceRecord) Hash() []byte {
	out := make([]byte, len(r.hash))
	copy(out, r.hash)

	return out
}

// Content returns the record's source variant.
func (r SourceRecord) Content() SourceContent {
	if r.content == nil {
		return OnDiskContent{}
	}

	return r.content
}

// Embedded reports whether the record carries its own text.
func (r SourceRecord) Embedded() bool {
	_, ok := r.Content().(EmbeddedContent)
	return ok
}

// LinkRule maps a recorded path prefix onto the local source root.
type LinkRule struct {
	Prefix string
	// Target is the source-link URL template the prefix maps to. It is kept
	// for reporting only.
	Target string
}

// NewLinkRule validates and returns a link rule.
func NewLinkRule(prefix, target string) (LinkRule, error) {
	if prefix == "" {
		return LinkRule{}, fmt.Errorf("%w: empty link prefix", ErrInvalidRecord)
	}

	return LinkRule{Prefix: prefix, Target: target}, nil
}

// Matches reports whether the rule's prefix is a literal prefix of path.
func (l LinkRule) Matches(path Path) bool {
	return l.Prefix != "" && strings.HasPrefix(string(path), l.Prefix)
}

// Artifact groups everything the debug-info reader extracted from one
// compiled artifact.
type Artifact struct {
	Name     string
	Encoding string
	Links    []LinkRule
	Sources  []SourceRecord
}
