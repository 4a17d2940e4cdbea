package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

func TestVerifyCmd_Defaults(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Verify", mock.Anything, mock.MatchedBy(func(args domain.VerifyArgs) bool {
		return args.Manifest == m.Path("app.yaml") &&
			args.SourceRoot == m.Path(".") &&
			args.Encoding == "" &&
			args.Threads == defaultParallel &&
			args.Policy == domain.PolicyCollect &&
			!args.Strict &&
			args.Reports == m.Path(".srcverify-reports")
	})).Return(nil).Once()

	_, err := executeSubcommand(t, newVerifyCmd(), "verify", "app.yaml")
	require.NoError(t, err)
}

func TestVerifyCmd_Flags(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Verify", mock.Anything, mock.MatchedBy(func(args domain.VerifyArgs) bool {
		return args.SourceRoot == m.Path("/repo") &&
			args.Encoding == "windows-1252" &&
			args.Threads == 3 &&
			args.Policy == domain.PolicyFailFast &&
			args.Strict &&
			args.Reports == m.Path("out")
	})).Return(nil).Once()

	_, err := executeSubcommand(t, newVerifyCmd(),
		"verify", "app.cbor",
		"--source-root", "/repo",
		"--encoding", "windows-1252",
		"--parallel", "3",
		"--policy", "fail-fast",
		"--strict",
		"-o", "out",
	)
	require.NoError(t, err)
}

func TestVerifyCmd_Timeout(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Verify", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), mock.Anything).Return(nil).Once()

	_, err := executeSubcommand(t, newVerifyCmd(), "verify", "app.yaml", "--timeout", "5s")
	require.NoError(t, err)
}

func TestVerifyCmd_InvalidPolicy(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeSubcommand(t, newVerifyCmd(), "verify", "app.yaml", "--policy", "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mismatch policy")
}

func TestVerifyCmd_PropagatesWorkflowError(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("Verify", mock.Anything, mock.Anything).Return(domain.ErrNotReproducible).Once()

	_, err := executeSubcommand(t, newVerifyCmd(), "verify", "app.yaml")
	require.True(t, errors.Is(err, domain.ErrNotReproducible))
}

func TestVerifyCmd_RequiresManifest(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeSubcommand(t, newVerifyCmd(), "verify")
	require.Error(t, err)
}
