package domain

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// ProgressFunc is called once per completed resolution. It may be called
// concurrently from several workers.
type ProgressFunc func(resolution m.Resolution)

// ArtifactVerifier resolves every source record of an artifact.
type ArtifactVerifier interface {
	Verify(ctx context.Context, artifact m.Artifact, threads int, progress ProgressFunc) ([]m.Resolution, error)
}

type artifactVerifier struct {
	resolver SourceResolver
	policy   MismatchPolicy
	logger   *slog.Logger
}

// NewArtifactVerifier constructs an ArtifactVerifier. Under PolicyFailFast the
// first failing record cancels the remaining resolutions.
func NewArtifactVerifier(resolver SourceResolver, policy MismatchPolicy, logger *slog.Logger) ArtifactVerifier {
	return &artifactVerifier{
		resolver: resolver,
		policy:   policy,
		logger:   loggerOrDefault(logger),
	}
}

// Verify fans the records out to at most threads workers. Resolutions are
// returned in record order regardless of completion order. Slots of records
// that were skipped or abandoned on cancellation stay zero.
func (av *artifactVerifier) Verify(ctx context.Context, artifact m.Artifact, threads int, progress ProgressFunc) ([]m.Resolution, error) {
	if threads <= 0 {
		threads = 1
	}

	resolutions := make([]m.Resolution, len(artifact.Sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	av.logger.Info("Verifying artifact sources",
		"artifact", artifact.Name,
		"sources", len(artifact.Sources),
		"links", len(artifact.Links),
		"threads", threads,
		"policy", av.policy,
	)

	for i, record := range artifact.Sources {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			resolution := av.resolver.Resolve(groupCtx, record, artifact.Links, artifact.Encoding)
			if abandoned(resolution.Err) {
				av.logger.Debug("Abandoned source resolution", "record", record.Path(), "error", resolution.Err)
				return nil
			}

			resolutions[i] = resolution

			if progress != nil {
				progress(resolution)
			}

			if resolution.Err != nil && av.policy == PolicyFailFast {
				return resolution.Err
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		av.logger.Error("Artifact verification aborted", "artifact", artifact.Name, "error", err)
		return resolutions, err
	}

	if err := ctx.Err(); err != nil {
		return resolutions, err
	}

	return resolutions, nil
}

// abandoned reports whether a resolution was cut short by cancellation
// rather than reaching a terminal status of its own.
func abandoned(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
