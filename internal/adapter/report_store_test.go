package adapter

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

func sampleReport(t *testing.T) m.Report {
	t.Helper()

	record, err := m.NewSourceRecord("/src/a.cs", m.HashSHA256, bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	return m.NewReport("My App.dll", "/repo", "collect", []m.Resolution{
		{Record: record, Status: m.Verified, Source: &m.ResolvedSource{
			OnDiskPath: "/src/a.cs",
			Record:     record,
			Text:       m.SourceText{Checksum: bytes.Repeat([]byte{1}, 32)},
		}},
	})
}

func TestReportStore_SaveAndLoad(t *testing.T) {
	store := NewReportStore(nil)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "reports")

	report := sampleReport(t)

	path, err := store.SaveReport(ctx, m.Path(dir), report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My_App.dll.report.json"), string(path))

	loaded, err := store.LoadReport(ctx, path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.Digest)

	report.Digest = loaded.Digest
	assert.Equal(t, report, loaded)
}

func TestReportStore_CompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path, err := NewReportStore(nil, WithCompression()).SaveReport(ctx, m.Path(dir), sampleReport(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "My_App.dll"+CompressedReportFileSuffix), string(path))

	raw, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, zstdMagic))

	// A plain store still reads compressed reports.
	loaded, err := NewReportStore(nil).LoadReport(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "My App.dll", loaded.Artifact)
	assert.NotEmpty(t, loaded.Digest)
}

func TestReportStore_SaveIsDeterministic(t *testing.T) {
	store := NewReportStore(nil)
	ctx := context.Background()

	first, err := store.SaveReport(ctx, m.Path(t.TempDir()), sampleReport(t))
	require.NoError(t, err)

	second, err := store.SaveReport(ctx, m.Path(t.TempDir()), sampleReport(t))
	require.NoError(t, err)

	a, err := os.ReadFile(string(first))
	require.NoError(t, err)

	b, err := os.ReadFile(string(second))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(string(a), `{"artifact":"My App.dll"`), "keys must be sorted: %s", a)
}

func TestReportStore_LoadDetectsTampering(t *testing.T) {
	store := NewReportStore(nil)
	ctx := context.Background()

	path, err := store.SaveReport(ctx, m.Path(t.TempDir()), sampleReport(t))
	require.NoError(t, err)

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)

	tampered := strings.Replace(string(data), `"status":"verified"`, `"status":"mismatched"`, 1)
	require.NotEqual(t, string(data), tampered)
	require.NoError(t, os.WriteFile(string(path), []byte(tampered), 0o600))

	_, err = store.LoadReport(ctx, path)
	require.ErrorIs(t, err, ErrReportDigest)
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "App.dll.report.json", ReportFileName("App.dll"))
	assert.Equal(t, "bin_App.dll.report.json", ReportFileName("bin/App.dll"))
	assert.Equal(t, "artifact.report.json", ReportFileName(""))
}

func TestReportStore_LogsThroughInjectedLogger(t *testing.T) {
	var logs bytes.Buffer

	store := NewReportStore(slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := store.LoadReport(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing.report.json")))
	require.Error(t, err)
	assert.Contains(t, logs.String(), "Failed to read report")
}
