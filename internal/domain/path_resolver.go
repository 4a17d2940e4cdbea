package domain

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"srcverify.dev/pkg/srcverify/internal/adapter"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// PathResolver picks the on-disk candidate for a record that has no
// embedded text.
type PathResolver interface {
	Resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, sourceRoot m.Path) m.Path
}

type pathResolver struct {
	fsAdapter adapter.SourceFSAdapter
	logger    *slog.Logger
}

// NewPathResolver constructs a PathResolver that checks candidates through fsAdapter.
func NewPathResolver(fsAdapter adapter.SourceFSAdapter, logger *slog.Logger) PathResolver {
	return &pathResolver{
		fsAdapter: fsAdapter,
		logger:    loggerOrDefault(logger),
	}
}

// Resolve tries link rules in order and returns the first rewritten
// candidate that exists. When none exists the recorded path itself is
// returned.
func (pr *pathResolver) Resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, sourceRoot m.Path) m.Path {
	recorded := string(record.Path())

	for _, link := range links {
		if !link.Matches(record.Path()) {
			continue
		}

		candidate, ok := pr.candidate(ctx, sourceRoot, strings.TrimPrefix(recorded, link.Prefix))
		if !ok {
			continue
		}

		if pr.exists(ctx, candidate) {
			pr.logger.Debug("Selected link candidate", "record", recorded, "prefix", link.Prefix, "candidate", candidate)
			return candidate
		}

		pr.logger.Debug("Skipped missing link candidate", "record", recorded, "prefix", link.Prefix, "candidate", candidate)
	}

	return record.Path()
}

func (pr *pathResolver) candidate(ctx context.Context, sourceRoot m.Path, remainder string) (m.Path, bool) {
	// Debug info produced on Windows records backslash separators.
	remainder = filepath.FromSlash(strings.ReplaceAll(remainder, `\`, "/"))

	joined := pr.fsAdapter.JoinPath(ctx, string(sourceRoot), remainder)

	abs, err := pr.fsAdapter.AbsPath(ctx, joined)
	if err != nil {
		pr.logger.Warn("Failed to normalise link candidate", "candidate", joined, "error", err)
		return "", false
	}

	return abs, true
}

func (pr *pathResolver) exists(ctx context.Context, path m.Path) bool {
	info, err := pr.fsAdapter.FileInfo(ctx, path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}

	return logger
}
