package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayVerifyStart announces the verification run.
func (s *SimpleUI) DisplayVerifyStart(ctx context.Context, artifact string, sources int, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Verifying %d source(s) of %s with %d worker(s)\n", sources, artifact, threads)
}

// DisplayProgress prints one line per finished resolution.
func (s *SimpleUI) DisplayProgress(ctx context.Context, resolution m.Resolution) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", progressLine(resolution))
}

// DisplayReport prints the report table and verdict.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.Report, savedTo m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderReportTable(report))
	s.printf("%s\n", verdictLine(report))

	if savedTo != "" {
		s.printf("Report written to %s\n", savedTo)
	}

	return nil
}

// DisplayDiff prints a unified diff between two reports.
func (s *SimpleUI) DisplayDiff(ctx context.Context, base, head m.Path, diff string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if diff == "" {
		s.printf("Reports %s and %s have identical outcomes\n", base, head)
		return nil
	}

	s.printf("%s", diff)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
