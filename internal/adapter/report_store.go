package adapter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gowebpki/jcs"
	"github.com/klauspost/compress/zstd"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// ReportFileSuffix is appended to the artifact slug when saving reports.
const ReportFileSuffix = ".report.json"

// CompressedReportFileSuffix replaces ReportFileSuffix when the store
// compresses reports.
const CompressedReportFileSuffix = ReportFileSuffix + ".zst"

// ErrReportDigest is returned when a loaded report does not match its digest.
var ErrReportDigest = errors.New("report digest mismatch")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// zstd encoders and decoders are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("report store: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("report store: zstd decoder initialization failed: " + err.Error())
	}
}

// ReportStore persists verification reports.
type ReportStore interface {
	SaveReport(ctx context.Context, dir m.Path, report m.Report) (m.Path, error)
	LoadReport(ctx context.Context, path m.Path) (m.Report, error)
}

// LocalReportStore writes reports as RFC 8785 canonical JSON so identical
// verification runs produce byte-identical files.
type LocalReportStore struct {
	compress bool
	logger   *slog.Logger
}

// ReportStoreOption configures a LocalReportStore.
type ReportStoreOption func(*LocalReportStore)

// WithCompression makes the store write zstd-compressed reports.
func WithCompression() ReportStoreOption {
	return func(s *LocalReportStore) {
		s.compress = true
	}
}

// NewReportStore returns a filesystem-backed ReportStore. A nil logger falls
// back to slog.Default.
func NewReportStore(logger *slog.Logger, options ...ReportStoreOption) *LocalReportStore {
	store := &LocalReportStore{logger: loggerOrDefault(logger)}
	for _, opt := range options {
		opt(store)
	}

	return store
}

// ReportFileName returns the file name a report for artifact is saved under.
func ReportFileName(artifact string) string {
	slug := unsafeNameChars.ReplaceAllString(artifact, "_")
	if slug == "" {
		slug = "artifact"
	}

	return slug + ReportFileSuffix
}

// DigestReport returns the hex SHA-256 of the report's canonical form with
// the digest field cleared.
func DigestReport(report m.Report) (string, error) {
	report.Digest = ""

	canonical, err := canonicalReport(report)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)

	return hex.EncodeToString(sum[:]), nil
}

// SaveReport stamps the report digest and writes it into dir.
func (s *LocalReportStore) SaveReport(ctx context.Context, dir m.Path, report m.Report) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	digest, err := DigestReport(report)
	if err != nil {
		return "", fmt.Errorf("failed to digest report: %w", err)
	}

	report.Digest = digest

	data, err := canonicalReport(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		s.logger.Error("Failed to create reports dir", "dir", dir, "error", err)
		return "", fmt.Errorf("failed to create reports dir: %w", err)
	}

	data = append(data, '\n')
	name := ReportFileName(report.Artifact)

	if s.compress {
		data = zstdEncoder.EncodeAll(data, nil)
		name = strings.TrimSuffix(name, ReportFileSuffix) + CompressedReportFileSuffix
	}

	path := filepath.Join(string(dir), name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logger.Error("Failed to write report", "path", path, "error", err)
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	s.logger.Debug("Saved report", "path", path, "digest", digest)

	return m.Path(path), nil
}

// LoadReport reads a report and checks its digest.
func (s *LocalReportStore) LoadReport(ctx context.Context, path m.Path) (m.Report, error) {
	if err := ctx.Err(); err != nil {
		return m.Report{}, err
	}

	// #nosec G304 - report path is supplied by the operator
	data, err := os.ReadFile(string(path))
	if err != nil {
		s.logger.Error("Failed to read report", "path", path, "error", err)
		return m.Report{}, fmt.Errorf("failed to read report: %w", err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		data, err = zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return m.Report{}, fmt.Errorf("failed to decompress report %s: %w", path, err)
		}
	}

	var report m.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return m.Report{}, fmt.Errorf("failed to decode report %s: %w", path, err)
	}

	if report.Digest != "" {
		digest, err := DigestReport(report)
		if err != nil {
			return m.Report{}, fmt.Errorf("failed to digest report: %w", err)
		}

		if digest != report.Digest {
			return m.Report{}, fmt.Errorf("%w: %s", ErrReportDigest, path)
		}
	}

	return report, nil
}

func canonicalReport(report m.Report) ([]byte, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}

	return jcs.Transform(raw)
}
