package model

// EmbeddedMarker prefixes the display path of sources recovered from the
// artifact itself.
const EmbeddedMarker = "[embedded]"

// SourceText is recovered source content together with its checksum.
type SourceText struct {
	Content   string
	Checksum  []byte
	Algorithm HashAlgorithm
	Encoding  string
}

// ResolvedSource is the result of resolving one SourceRecord.
type ResolvedSource struct {
	// OnDiskPath is empty when the text came from the embedded copy.
	OnDiskPath Path
	Text       SourceText
	Record     SourceRecord
}

// HasDiskPath reports whether the text was read from disk.
func (r ResolvedSource) HasDiskPath() bool {
	return r.OnDiskPath != ""
}

// DisplayPath returns the on-disk path if known, else the embedded marker
// followed by the recorded path.
func (r ResolvedSource) DisplayPath() string {
	if r.HasDiskPath() {
		return string(r.OnDiskPath)
	}

	return EmbeddedMarker + string(r.Record.Path())
}
