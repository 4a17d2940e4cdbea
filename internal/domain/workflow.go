package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"srcverify.dev/pkg/srcverify/internal/adapter"
	"srcverify.dev/pkg/srcverify/internal/checksum"
	"srcverify.dev/pkg/srcverify/internal/controller"
	m "srcverify.dev/pkg/srcverify/internal/model"
	"srcverify.dev/pkg/srcverify/internal/textenc"
)

// VerifyArgs contains the arguments for verifying an artifact's sources.
type VerifyArgs struct {
	Manifest   m.Path
	SourceRoot m.Path
	// Encoding overrides the encoding declared by the manifest.
	Encoding string
	Threads  int
	Policy   MismatchPolicy
	// Strict turns a non-reproducible report into ErrNotReproducible.
	Strict bool
	// Reports is the directory the report is saved to. Empty skips saving.
	Reports m.Path
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Report m.Path
}

// DiffArgs contains the arguments for comparing two saved reports.
type DiffArgs struct {
	Base m.Path
	Head m.Path
}

// Workflow defines the source verification use-cases.
type Workflow interface {
	Verify(ctx context.Context, args VerifyArgs) error
	View(ctx context.Context, args ViewArgs) error
	Diff(ctx context.Context, args DiffArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ManifestReader
	adapter.ReportStore
	controller.UI
	verifier checksum.Verifier
	logger   *slog.Logger
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	manifestReader adapter.ManifestReader,
	reportStore adapter.ReportStore,
	ui controller.UI,
	verifier checksum.Verifier,
	logger *slog.Logger,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ManifestReader:  manifestReader,
		ReportStore:     reportStore,
		UI:              ui,
		verifier:        verifier,
		logger:          loggerOrDefault(logger),
	}
}

func (w *workflow) Verify(ctx context.Context, args VerifyArgs) error {
	if err := w.Start(ctx, controller.WithVerifyMode()); err != nil {
		w.logger.Error("Failed to start verify UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	artifact, err := w.ReadManifest(ctx, args.Manifest)
	if err != nil {
		w.logger.Error("Failed to read manifest", "path", args.Manifest, "error", err)
		return fmt.Errorf("read manifest: %w", err)
	}

	sourceRoot, err := w.sourceRoot(ctx, args.SourceRoot)
	if err != nil {
		return err
	}

	artifact.Encoding = pickEncoding(args.Encoding, artifact.Encoding)

	policy := args.Policy
	if policy == "" {
		policy = PolicyCollect
	}

	threads := max(args.Threads, 1)

	resolver := NewSourceResolver(w.SourceFSAdapter, w.verifier, w.logger, ResolverOptions{
		SourceRoot: sourceRoot,
		Policy:     policy,
	})

	w.DisplayVerifyStart(ctx, artifact.Name, len(artifact.Sources), threads)

	resolutions, verifyErr := NewArtifactVerifier(resolver, policy, w.logger).
		Verify(ctx, artifact, threads, func(resolution m.Resolution) {
			w.DisplayProgress(ctx, resolution)
		})

	report := m.NewReport(artifact.Name, sourceRoot, string(policy), completed(resolutions))
	report.MarkSkipped(len(artifact.Sources))

	// A cancelled or timed-out run still saves and shows what it resolved.
	finishCtx := context.WithoutCancel(ctx)

	var savedTo m.Path

	if args.Reports != "" {
		savedTo, err = w.SaveReport(finishCtx, args.Reports, report)
		if err != nil {
			w.logger.Error("Failed to save report", "dir", args.Reports, "error", err)
			return fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.DisplayReport(finishCtx, report, savedTo); err != nil {
		w.logger.Error("Failed to display report", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(finishCtx)

	if verifyErr != nil {
		return fmt.Errorf("verify %s: %w", artifact.Name, verifyErr)
	}

	w.logger.Info("Verified artifact",
		"artifact", artifact.Name,
		"verified", report.Summary.Verified,
		"embedded", report.Summary.Embedded,
		"mismatched", report.Summary.Mismatched,
		"not_found", report.Summary.NotFound,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
	)

	if args.Strict && !report.Reproducible() {
		return fmt.Errorf("%w: %s", ErrNotReproducible, summaryText(report.Summary))
	}

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		w.logger.Error("Failed to start view UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	report, err := w.LoadReport(ctx, args.Report)
	if err != nil {
		w.logger.Error("Failed to load report", "path", args.Report, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.DisplayReport(ctx, report, ""); err != nil {
		w.logger.Error("Failed to display report", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		w.logger.Error("Failed to start diff UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	base, err := w.LoadReport(ctx, args.Base)
	if err != nil {
		w.logger.Error("Failed to load report", "path", args.Base, "error", err)
		return fmt.Errorf("load base report: %w", err)
	}

	head, err := w.LoadReport(ctx, args.Head)
	if err != nil {
		w.logger.Error("Failed to load report", "path", args.Head, "error", err)
		return fmt.Errorf("load head report: %w", err)
	}

	diff, err := DiffReports(base, head, string(args.Base), string(args.Head))
	if err != nil {
		return fmt.Errorf("diff reports: %w", err)
	}

	if err := w.DisplayDiff(ctx, args.Base, args.Head, diff); err != nil {
		w.logger.Error("Failed to display diff", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) sourceRoot(ctx context.Context, root m.Path) (m.Path, error) {
	if root == "" {
		root = "."
	}

	abs, err := w.AbsPath(ctx, root)
	if err != nil {
		w.logger.Error("Failed to resolve source root", "root", root, "error", err)
		return "", fmt.Errorf("resolve source root: %w", err)
	}

	return abs, nil
}

// DiffReports returns a unified diff of the per-file outcome lines of two
// reports, or "" when the outcomes are identical.
func DiffReports(base, head m.Report, baseName, headName string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(outcomeText(base)),
		B:        difflib.SplitLines(outcomeText(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  1,
	})
}

func outcomeText(report m.Report) string {
	lines := make([]string, 0, len(report.Outcomes)+1)
	lines = append(lines, "summary "+summaryText(report.Summary))

	for _, outcome := range report.Outcomes {
		lines = append(lines, fmt.Sprintf("%s %s -> %s", outcome.Status, outcome.Path, outcome.DisplayPath))
	}

	return strings.Join(lines, "\n")
}

func summaryText(s m.Summary) string {
	return fmt.Sprintf("total=%d verified=%d embedded=%d mismatched=%d not_found=%d failed=%d skipped=%d",
		s.Total, s.Verified, s.Embedded, s.Mismatched, s.NotFound, s.Failed, s.Skipped)
}

// completed drops the slots of records that were never resolved or were
// abandoned when the run was cancelled.
func completed(resolutions []m.Resolution) []m.Resolution {
	done := make([]m.Resolution, 0, len(resolutions))

	for _, resolution := range resolutions {
		if resolution.Record.Path() == "" {
			continue
		}

		done = append(done, resolution)
	}

	return done
}

func pickEncoding(override, declared string) string {
	switch {
	case override != "":
		return override
	case declared != "":
		return declared
	}

	return textenc.DefaultEncoding
}
