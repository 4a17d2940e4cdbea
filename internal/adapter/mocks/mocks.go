// Package mocks provides testify mocks for the adapter interfaces.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// NewMockSourceFSAdapter creates a MockSourceFSAdapter whose expectations are
// asserted when the test ends.
func NewMockSourceFSAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceFSAdapter {
	mockAdapter := &MockSourceFSAdapter{}
	mockAdapter.Mock.Test(t)

	t.Cleanup(func() { mockAdapter.AssertExpectations(t) })

	return mockAdapter
}

// FileInfo provides a mock function.
func (_m *MockSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	ret := _m.Called(ctx, path)

	var info os.FileInfo
	if v, ok := ret.Get(0).(os.FileInfo); ok {
		info = v
	}

	return info, ret.Error(1)
}

// ReadFile provides a mock function.
func (_m *MockSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	ret := _m.Called(ctx, path)

	var data []byte
	if v, ok := ret.Get(0).([]byte); ok {
		data = v
	}

	return data, ret.Error(1)
}

// AbsPath provides a mock function.
func (_m *MockSourceFSAdapter) AbsPath(ctx context.Context, path m.Path) (m.Path, error) {
	ret := _m.Called(ctx, path)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// JoinPath provides a mock function.
func (_m *MockSourceFSAdapter) JoinPath(ctx context.Context, elem ...string) m.Path {
	ret := _m.Called(ctx, elem)
	return ret.Get(0).(m.Path)
}

// MockManifestReader is a mock of adapter.ManifestReader.
type MockManifestReader struct {
	mock.Mock
}

// NewMockManifestReader creates a MockManifestReader whose expectations are
// asserted when the test ends.
func NewMockManifestReader(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockManifestReader {
	mockReader := &MockManifestReader{}
	mockReader.Mock.Test(t)

	t.Cleanup(func() { mockReader.AssertExpectations(t) })

	return mockReader
}

// ReadManifest provides a mock function.
func (_m *MockManifestReader) ReadManifest(ctx context.Context, path m.Path) (m.Artifact, error) {
	ret := _m.Called(ctx, path)
	return ret.Get(0).(m.Artifact), ret.Error(1)
}

// MockReportStore is a mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a MockReportStore whose expectations are
// asserted when the test ends.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	mockStore := &MockReportStore{}
	mockStore.Mock.Test(t)

	t.Cleanup(func() { mockStore.AssertExpectations(t) })

	return mockStore
}

// SaveReport provides a mock function.
func (_m *MockReportStore) SaveReport(ctx context.Context, dir m.Path, report m.Report) (m.Path, error) {
	ret := _m.Called(ctx, dir, report)
	return ret.Get(0).(m.Path), ret.Error(1)
}

// LoadReport provides a mock function.
func (_m *MockReportStore) LoadReport(ctx context.Context, path m.Path) (m.Report, error) {
	ret := _m.Called(ctx, path)
	return ret.Get(0).(m.Report), ret.Error(1)
}
