package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

func TestViewCmd_PassesReportPath(t *testing.T) {
	mockWorkflow := useMockWorkflow(t)

	mockWorkflow.On("View", mock.Anything, domain.ViewArgs{Report: m.Path("out/App.dll.report.json")}).Return(nil).Once()

	_, err := executeSubcommand(t, newViewCmd(), "view", "out/App.dll.report.json")
	require.NoError(t, err)
}

func TestViewCmd_RequiresExactlyOneReport(t *testing.T) {
	useMockWorkflow(t)

	_, err := executeSubcommand(t, newViewCmd(), "view")
	require.Error(t, err)

	_, err = executeSubcommand(t, newViewCmd(), "view", "a.json", "b.json")
	require.Error(t, err)
}
