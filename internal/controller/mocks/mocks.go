// Package mocks provides testify mocks for the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"srcverify.dev/pkg/srcverify/internal/controller"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// MockUI is a mock of controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a MockUI whose expectations are asserted when the test ends.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	mockUI := &MockUI{}
	mockUI.Mock.Test(t)

	t.Cleanup(func() { mockUI.AssertExpectations(t) })

	return mockUI
}

// Start provides a mock function.
func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	ret := _m.Called(ctx, options)
	return ret.Error(0)
}

// Close provides a mock function.
func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

// Wait provides a mock function.
func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

// DisplayVerifyStart provides a mock function.
func (_m *MockUI) DisplayVerifyStart(ctx context.Context, artifact string, sources int, threads int) {
	_m.Called(ctx, artifact, sources, threads)
}

// DisplayProgress provides a mock function.
func (_m *MockUI) DisplayProgress(ctx context.Context, resolution m.Resolution) {
	_m.Called(ctx, resolution)
}

// DisplayReport provides a mock function.
func (_m *MockUI) DisplayReport(ctx context.Context, report m.Report, savedTo m.Path) error {
	ret := _m.Called(ctx, report, savedTo)
	return ret.Error(0)
}

// DisplayDiff provides a mock function.
func (_m *MockUI) DisplayDiff(ctx context.Context, base, head m.Path, diff string) error {
	ret := _m.Called(ctx, base, head, diff)
	return ret.Error(0)
}
