package domain_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"srcverify.dev/pkg/srcverify/internal/domain"
	domainmocks "srcverify.dev/pkg/srcverify/internal/domain/mocks"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

func TestArtifactVerifier_PreservesRecordOrder(t *testing.T) {
	repo := t.TempDir()

	var sources []m.SourceRecord

	for i := range 20 {
		name := fmt.Sprintf("f%02d.cs", i)
		content := fmt.Sprintf("file %d", i)
		writeTestFile(t, repo, name, content)

		// Every third file is edited after the build.
		if i%3 == 0 {
			content = "original"
		}

		sources = append(sources, sha256Record(t, "/build/"+name, content))
	}

	sources = append(sources, newRecord(t, "/elsewhere/missing.cs"))

	artifact := m.Artifact{
		Name:    "App.dll",
		Links:   []m.LinkRule{newLink(t, "/build/")},
		Sources: sources,
	}

	resolver, _ := newResolver(repo, domain.PolicyCollect)

	var progressed atomic.Int32

	resolutions, err := domain.NewArtifactVerifier(resolver, domain.PolicyCollect, nil).
		Verify(context.Background(), artifact, 4, func(m.Resolution) { progressed.Add(1) })
	require.NoError(t, err)
	require.Len(t, resolutions, len(sources))
	assert.Equal(t, int32(len(sources)), progressed.Load())

	for i, resolution := range resolutions {
		assert.Equal(t, sources[i].Path(), resolution.Record.Path())

		switch {
		case i == len(sources)-1:
			assert.Equal(t, m.NotFound, resolution.Status)
		case i%3 == 0:
			assert.Equal(t, m.Mismatched, resolution.Status, "record %d", i)
		default:
			assert.Equal(t, m.Verified, resolution.Status, "record %d", i)
		}
	}
}

func TestArtifactVerifier_OutcomeIndependentOfParallelism(t *testing.T) {
	repo := t.TempDir()

	var sources []m.SourceRecord

	for i := range 12 {
		name := fmt.Sprintf("f%02d.cs", i)
		writeTestFile(t, repo, name, name)

		expected := name
		if i%2 == 1 {
			expected = "stale"
		}

		sources = append(sources, sha256Record(t, "/b/"+name, expected))
	}

	artifact := m.Artifact{Name: "x", Links: []m.LinkRule{newLink(t, "/b/")}, Sources: sources}
	resolver, _ := newResolver(repo, domain.PolicyCollect)

	statuses := func(threads int) []m.Status {
		resolutions, err := domain.NewArtifactVerifier(resolver, domain.PolicyCollect, nil).
			Verify(context.Background(), artifact, threads, nil)
		require.NoError(t, err)

		out := make([]m.Status, len(resolutions))
		for i, r := range resolutions {
			out[i] = r.Status
		}

		return out
	}

	sequential := statuses(1)
	assert.Equal(t, sequential, statuses(8))
	assert.Equal(t, sequential, statuses(0))
}

func TestArtifactVerifier_FailFastStopsOnFirstError(t *testing.T) {
	resolver := domainmocks.NewMockSourceResolver(t)

	first := newRecord(t, "/a.cs")
	second := newRecord(t, "/b.cs")

	resolver.On("Resolve", mock.Anything, first, mock.Anything, mock.Anything).
		Return(m.Resolution{Record: first, Status: m.NotFound, Err: &domain.NotFoundError{Path: "/a.cs"}}).Once()
	resolver.On("Resolve", mock.Anything, second, mock.Anything, mock.Anything).
		Return(m.Resolution{Record: second, Status: m.Verified}).Maybe()

	artifact := m.Artifact{Name: "App.dll", Sources: []m.SourceRecord{first, second}}

	resolutions, err := domain.NewArtifactVerifier(resolver, domain.PolicyFailFast, nil).
		Verify(context.Background(), artifact, 1, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, resolutions, 2)
	assert.Equal(t, m.NotFound, resolutions[0].Status)
}

func TestArtifactVerifier_CollectKeepsGoing(t *testing.T) {
	resolver := domainmocks.NewMockSourceResolver(t)

	records := []m.SourceRecord{newRecord(t, "/a.cs"), newRecord(t, "/b.cs"), newRecord(t, "/c.cs")}

	resolver.On("Resolve", mock.Anything, records[0], mock.Anything, "utf-16").
		Return(m.Resolution{Record: records[0], Status: m.ReadError, Err: &domain.ReadError{Path: "/a.cs"}}).Once()
	resolver.On("Resolve", mock.Anything, records[1], mock.Anything, "utf-16").
		Return(m.Resolution{Record: records[1], Status: m.NotFound, Err: &domain.NotFoundError{Path: "/b.cs"}}).Once()
	resolver.On("Resolve", mock.Anything, records[2], mock.Anything, "utf-16").
		Return(m.Resolution{Record: records[2], Status: m.Verified}).Once()

	var (
		mu   sync.Mutex
		seen []m.Status
	)

	artifact := m.Artifact{Name: "App.dll", Encoding: "utf-16", Sources: records}

	resolutions, err := domain.NewArtifactVerifier(resolver, domain.PolicyCollect, nil).
		Verify(context.Background(), artifact, 3, func(r m.Resolution) {
			mu.Lock()
			defer mu.Unlock()

			seen = append(seen, r.Status)
		})
	require.NoError(t, err)

	assert.Equal(t, []m.Status{m.ReadError, m.NotFound, m.Verified}, []m.Status{
		resolutions[0].Status, resolutions[1].Status, resolutions[2].Status,
	})
	assert.ElementsMatch(t, []m.Status{m.ReadError, m.NotFound, m.Verified}, seen)
}

func TestArtifactVerifier_CancelledContext(t *testing.T) {
	resolver := domainmocks.NewMockSourceResolver(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	artifact := m.Artifact{Name: "App.dll", Sources: []m.SourceRecord{newRecord(t, "/a.cs")}}

	_, err := domain.NewArtifactVerifier(resolver, domain.PolicyCollect, nil).Verify(ctx, artifact, 2, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestArtifactVerifier_FailFastDropsAbandonedResolutions(t *testing.T) {
	resolver := domainmocks.NewMockSourceResolver(t)

	mismatched := newRecord(t, "/first.cs")
	healthy := newRecord(t, "/good.cs")
	started := make(chan struct{})

	resolver.On("Resolve", mock.Anything, mismatched, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-started }).
		Return(m.Resolution{
			Record: mismatched,
			Status: m.Mismatched,
			Err:    &domain.ChecksumMismatchError{Path: "/first.cs"},
		}).Once()
	resolver.On("Resolve", mock.Anything, healthy, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(started)
			<-ctx.Done()
		}).
		Return(m.Resolution{
			Record: healthy,
			Status: m.ReadError,
			Err:    &domain.ReadError{Path: "/good.cs", Err: context.Canceled},
		}).Once()

	var (
		mu   sync.Mutex
		seen []m.Status
	)

	artifact := m.Artifact{Name: "App.dll", Sources: []m.SourceRecord{mismatched, healthy}}

	resolutions, err := domain.NewArtifactVerifier(resolver, domain.PolicyFailFast, nil).
		Verify(context.Background(), artifact, 2, func(r m.Resolution) {
			mu.Lock()
			defer mu.Unlock()

			seen = append(seen, r.Status)
		})
	require.ErrorIs(t, err, domain.ErrChecksumMismatch)
	require.Len(t, resolutions, 2)

	assert.Equal(t, m.Mismatched, resolutions[0].Status)
	assert.Empty(t, resolutions[1].Record.Path())
	assert.Equal(t, []m.Status{m.Mismatched}, seen)

	report := m.NewReport(artifact.Name, "/repo", "fail-fast", []m.Resolution{resolutions[0]})
	report.MarkSkipped(len(artifact.Sources))
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Skipped)
}
