package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"srcverify.dev/pkg/srcverify/internal/adapter"
	"srcverify.dev/pkg/srcverify/internal/checksum"
	m "srcverify.dev/pkg/srcverify/internal/model"
	"srcverify.dev/pkg/srcverify/internal/textenc"
)

// MismatchPolicy decides whether a checksum mismatch fails the resolution.
type MismatchPolicy string

const (
	// PolicyCollect logs mismatches and still resolves successfully.
	PolicyCollect MismatchPolicy = "collect"
	// PolicyFailFast logs mismatches and returns a ChecksumMismatchError
	// alongside the resolved source.
	PolicyFailFast MismatchPolicy = "fail-fast"
)

// ParseMismatchPolicy parses a policy name; empty selects PolicyCollect.
func ParseMismatchPolicy(value string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyCollect:
		return PolicyCollect, nil
	case PolicyFailFast, "failfast":
		return PolicyFailFast, nil
	}

	return "", fmt.Errorf("unknown mismatch policy %q (want %q or %q)", value, PolicyCollect, PolicyFailFast)
}

// ResolverOptions is the immutable configuration shared by every resolution.
type ResolverOptions struct {
	// SourceRoot is the local directory link-rule remainders are joined onto.
	SourceRoot m.Path
	Policy     MismatchPolicy
}

// SourceResolver recovers and verifies the text of one recorded source file.
type SourceResolver interface {
	// ResolveSource returns the resolved source or a NotFoundError / ReadError.
	// Under PolicyFailFast a mismatch also returns a ChecksumMismatchError
	// together with the resolved source.
	ResolveSource(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) (m.ResolvedSource, error)
	// Resolve is ResolveSource reported as a classified Resolution.
	Resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) m.Resolution
}

type sourceResolver struct {
	fsAdapter    adapter.SourceFSAdapter
	pathResolver PathResolver
	verifier     checksum.Verifier
	logger       *slog.Logger
	options      ResolverOptions
}

// NewSourceResolver wires a SourceResolver from its collaborators.
func NewSourceResolver(
	fsAdapter adapter.SourceFSAdapter,
	verifier checksum.Verifier,
	logger *slog.Logger,
	options ResolverOptions,
) SourceResolver {
	logger = loggerOrDefault(logger)

	if options.Policy == "" {
		options.Policy = PolicyCollect
	}

	return &sourceResolver{
		fsAdapter:    fsAdapter,
		pathResolver: NewPathResolver(fsAdapter, logger),
		verifier:     verifier,
		logger:       logger,
		options:      options,
	}
}

func (sr *sourceResolver) ResolveSource(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) (m.ResolvedSource, error) {
	resolved, _, err := sr.resolve(ctx, record, links, encoding)
	return resolved, err
}

func (sr *sourceResolver) Resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) m.Resolution {
	resolved, status, err := sr.resolve(ctx, record, links, encoding)

	resolution := m.Resolution{
		Record: record,
		Status: status,
		Err:    err,
	}

	if status == m.Verified || status == m.Embedded || status == m.Mismatched {
		resolution.Source = &resolved
	}

	return resolution
}

func (sr *sourceResolver) resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) (m.ResolvedSource, m.Status, error) {
	switch content := record.Content().(type) {
	case m.EmbeddedContent:
		return sr.resolveEmbedded(record, content), m.Embedded, nil
	case m.OnDiskContent:
		return sr.resolveOnDisk(ctx, record, links, encoding)
	}

	// Unreachable: SourceContent is sealed to the two variants above.
	return m.ResolvedSource{}, m.ReadError, &ReadError{Path: record.Path(), Err: errors.New("unknown source content")}
}

func (sr *sourceResolver) resolveEmbedded(record m.SourceRecord, content m.EmbeddedContent) m.ResolvedSource {
	sr.logger.Debug("Resolved embedded source", "record", record.Path())

	return m.ResolvedSource{
		Text: m.SourceText{
			Content:   content.Text,
			Checksum:  record.Hash(),
			Algorithm: record.Algorithm(),
			Encoding:  textenc.DefaultEncoding,
		},
		Record: record,
	}
}

func (sr *sourceResolver) resolveOnDisk(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) (m.ResolvedSource, m.Status, error) {
	candidate := sr.pathResolver.Resolve(ctx, record, links, sr.options.SourceRoot)

	if err := sr.checkExists(ctx, candidate); err != nil {
		return m.ResolvedSource{}, StatusForError(err), err
	}

	decoder, err := textenc.Lookup(encoding)
	if err != nil {
		return m.ResolvedSource{}, m.ReadError, &ReadError{Path: candidate, Err: err}
	}

	raw, err := sr.fsAdapter.ReadFile(ctx, candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.ResolvedSource{}, m.NotFound, &NotFoundError{Path: candidate}
		}

		sr.logger.Error("Failed to read source", "path", candidate, "error", err)

		return m.ResolvedSource{}, m.ReadError, &ReadError{Path: candidate, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return m.ResolvedSource{}, m.ReadError, &ReadError{Path: candidate, Err: err}
	}

	text, used, err := decoder.Decode(raw)
	if err != nil {
		sr.logger.Error("Failed to decode source", "path", candidate, "encoding", decoder.Name(), "error", err)
		return m.ResolvedSource{}, m.ReadError, &ReadError{Path: candidate, Err: err}
	}

	resolved := m.ResolvedSource{
		OnDiskPath: candidate,
		Text: m.SourceText{
			Content:   text,
			Algorithm: record.Algorithm(),
			Encoding:  used,
		},
		Record: record,
	}

	actual, err := sr.verifier.Sum(record.Algorithm(), raw)
	if err != nil {
		return m.ResolvedSource{}, m.ReadError, &ReadError{Path: candidate, Err: err}
	}

	resolved.Text.Checksum = actual

	if checksum.Equal(record.Hash(), actual) {
		sr.logger.Debug("Verified source", "record", record.Path(), "path", candidate)

		return resolved, m.Verified, nil
	}

	sr.logger.Error(fmt.Sprintf(`File "%s" has incorrect hash`, candidate),
		"record", record.Path(),
		"algorithm", record.Algorithm(),
		"expected", fmt.Sprintf("%x", record.Hash()),
		"actual", fmt.Sprintf("%x", actual),
	)

	if sr.options.Policy == PolicyFailFast {
		return resolved, m.Mismatched, &ChecksumMismatchError{
			Path:     candidate,
			Expected: record.Hash(),
			Actual:   actual,
		}
	}

	return resolved, m.Mismatched, nil
}

// checkExists is the explicit precondition that classifies NotFound before
// any read is attempted.
func (sr *sourceResolver) checkExists(ctx context.Context, candidate m.Path) error {
	info, err := sr.fsAdapter.FileInfo(ctx, candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: candidate}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return &ReadError{Path: candidate, Err: ctxErr}
		}

		return &ReadError{Path: candidate, Err: err}
	}

	if info.IsDir() {
		return &NotFoundError{Path: candidate}
	}

	return nil
}
