package adapter

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/kaptinlin/jsonschema"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// ManifestFormat identifies the serialisation of a source manifest.
type ManifestFormat string

// Supported manifest formats.
const (
	FormatYAML ManifestFormat = "yaml"
	FormatJSON ManifestFormat = "json"
	FormatCBOR ManifestFormat = "cbor"
)

var (
	// ErrUnsupportedManifest is returned for files whose format cannot be detected.
	ErrUnsupportedManifest = errors.New("unsupported manifest format")
	// ErrManifestSchema is returned for manifests that do not match the
	// embedded schema, whatever their format.
	ErrManifestSchema = errors.New("schema validation failed")
)

var cborDecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}.DecMode()
	if err != nil {
		panic("manifest reader: cbor decode mode: " + err.Error())
	}

	return mode
}()

//go:embed manifest.schema.json
var manifestSchema []byte

// ManifestReader loads the source records and link rules extracted from a
// compiled artifact's debug information.
type ManifestReader interface {
	ReadManifest(ctx context.Context, path m.Path) (m.Artifact, error)
}

// manifestDocument is the on-disk shape shared by every format. CBOR decoding
// falls back to the json tags.
type manifestDocument struct {
	Artifact string           `yaml:"artifact" json:"artifact"`
	Encoding string           `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Links    []manifestLink   `yaml:"links,omitempty" json:"links,omitempty"`
	Sources  []manifestSource `yaml:"sources" json:"sources"`
}

type manifestLink struct {
	Prefix string `yaml:"prefix" json:"prefix"`
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
}

type manifestSource struct {
	Path      string  `yaml:"path" json:"path"`
	Algorithm string  `yaml:"algorithm" json:"algorithm"`
	Hash      string  `yaml:"hash" json:"hash"`
	Embedded  *string `yaml:"embedded,omitempty" json:"embedded,omitempty"`
}

// LocalManifestReader reads manifests from the local filesystem.
type LocalManifestReader struct {
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewLocalManifestReader compiles the embedded JSON schema and returns a reader.
// A nil logger falls back to slog.Default.
func NewLocalManifestReader(logger *slog.Logger) (*LocalManifestReader, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(manifestSchema)
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	return &LocalManifestReader{schema: schema, logger: loggerOrDefault(logger)}, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}

	return logger
}

// DetectManifestFormat picks a format from the file extension.
func DetectManifestFormat(path m.Path) (ManifestFormat, error) {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedManifest, path)
}

// ReadManifest loads and validates the manifest at path.
func (r *LocalManifestReader) ReadManifest(ctx context.Context, path m.Path) (m.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return m.Artifact{}, err
	}

	format, err := DetectManifestFormat(path)
	if err != nil {
		return m.Artifact{}, err
	}

	// #nosec G304 - manifest path is supplied by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		r.logger.Error("Failed to read manifest", "path", path, "error", err)
		return m.Artifact{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	artifact, err := r.DecodeManifest(data, format)
	if err != nil {
		r.logger.Error("Failed to decode manifest", "path", path, "format", format, "error", err)
		return m.Artifact{}, fmt.Errorf("manifest %s: %w", path, err)
	}

	r.logger.Debug("Loaded manifest", "path", path, "artifact", artifact.Name,
		"sources", len(artifact.Sources), "links", len(artifact.Links))

	return artifact, nil
}

// DecodeManifest parses manifest bytes in the given format. Every format is
// checked against the embedded schema before records are built.
func (r *LocalManifestReader) DecodeManifest(data []byte, format ManifestFormat) (m.Artifact, error) {
	var doc manifestDocument

	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)

		if err := decoder.Decode(&doc); err != nil {
			return m.Artifact{}, fmt.Errorf("decode yaml: %w", err)
		}

		if err := r.validateDocument(doc); err != nil {
			return m.Artifact{}, err
		}
	case FormatJSON:
		plain := jsonc.ToJSON(data)

		if err := r.validate(plain); err != nil {
			return m.Artifact{}, err
		}

		if err := json.Unmarshal(plain, &doc); err != nil {
			return m.Artifact{}, fmt.Errorf("decode json: %w", err)
		}
	case FormatCBOR:
		if err := cborDecMode.Unmarshal(data, &doc); err != nil {
			return m.Artifact{}, fmt.Errorf("decode cbor: %w", err)
		}

		if err := r.validateDocument(doc); err != nil {
			return m.Artifact{}, err
		}
	default:
		return m.Artifact{}, fmt.Errorf("%w: %s", ErrUnsupportedManifest, format)
	}

	return doc.toArtifact()
}

// validateDocument checks a decoded YAML or CBOR manifest through its JSON
// form. Unknown fields were already rejected by the decoder.
func (r *LocalManifestReader) validateDocument(doc manifestDocument) error {
	if doc.Sources == nil {
		doc.Sources = []manifestSource{}
	}

	plain, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode manifest for validation: %w", err)
	}

	return r.validate(plain)
}

func (r *LocalManifestReader) validate(plain []byte) error {
	result := r.schema.ValidateJSON(plain)
	if !result.IsValid() {
		return fmt.Errorf("%w: %v", ErrManifestSchema, result.Errors)
	}

	return nil
}

// EncodeManifest serialises an artifact, mainly so tests and tooling can
// produce manifests in any supported format.
func EncodeManifest(artifact m.Artifact, format ManifestFormat) ([]byte, error) {
	doc := newManifestDocument(artifact)

	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatCBOR:
		return cbor.Marshal(doc)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedManifest, format)
}

func newManifestDocument(artifact m.Artifact) manifestDocument {
	doc := manifestDocument{
		Artifact: artifact.Name,
		Encoding: artifact.Encoding,
	}

	for _, link := range artifact.Links {
		doc.Links = append(doc.Links, manifestLink{Prefix: link.Prefix, Target: link.Target})
	}

	for _, record := range artifact.Sources {
		src := manifestSource{
			Path:      string(record.Path()),
			Algorithm: string(record.Algorithm()),
			Hash:      hex.EncodeToString(record.Hash()),
		}

		if embedded, ok := record.Content().(m.EmbeddedContent); ok {
			text := embedded.Text
			src.Embedded = &text
		}

		doc.Sources = append(doc.Sources, src)
	}

	return doc
}

func (d manifestDocument) toArtifact() (m.Artifact, error) {
	if strings.TrimSpace(d.Artifact) == "" {
		return m.Artifact{}, fmt.Errorf("%w: missing artifact name", m.ErrInvalidRecord)
	}

	artifact := m.Artifact{
		Name:     d.Artifact,
		Encoding: d.Encoding,
		Links:    make([]m.LinkRule, 0, len(d.Links)),
		Sources:  make([]m.SourceRecord, 0, len(d.Sources)),
	}

	for i, link := range d.Links {
		rule, err := m.NewLinkRule(link.Prefix, link.Target)
		if err != nil {
			return m.Artifact{}, fmt.Errorf("links[%d]: %w", i, err)
		}

		artifact.Links = append(artifact.Links, rule)
	}

	for i, src := range d.Sources {
		record, err := src.toRecord()
		if err != nil {
			return m.Artifact{}, fmt.Errorf("sources[%d]: %w", i, err)
		}

		artifact.Sources = append(artifact.Sources, record)
	}

	return artifact, nil
}

func (s manifestSource) toRecord() (m.SourceRecord, error) {
	algorithm, err := m.ParseHashAlgorithm(s.Algorithm)
	if err != nil {
		return m.SourceRecord{}, err
	}

	hash, err := hex.DecodeString(strings.TrimSpace(s.Hash))
	if err != nil {
		return m.SourceRecord{}, fmt.Errorf("%w: %s: bad hash: %w", m.ErrInvalidRecord, s.Path, err)
	}

	if s.Embedded != nil {
		return m.NewEmbeddedSourceRecord(m.Path(s.Path), algorithm, hash, *s.Embedded)
	}

	return m.NewSourceRecord(m.Path(s.Path), algorithm, hash)
}
