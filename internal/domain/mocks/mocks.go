// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a MockWorkflow whose expectations are asserted when
// the test ends.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	mockWorkflow := &MockWorkflow{}
	mockWorkflow.Mock.Test(t)

	t.Cleanup(func() { mockWorkflow.AssertExpectations(t) })

	return mockWorkflow
}

// Verify provides a mock function.
func (_m *MockWorkflow) Verify(ctx context.Context, args domain.VerifyArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// View provides a mock function.
func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// Diff provides a mock function.
func (_m *MockWorkflow) Diff(ctx context.Context, args domain.DiffArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

// MockSourceResolver is a mock of domain.SourceResolver.
type MockSourceResolver struct {
	mock.Mock
}

// NewMockSourceResolver creates a MockSourceResolver whose expectations are
// asserted when the test ends.
func NewMockSourceResolver(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceResolver {
	mockResolver := &MockSourceResolver{}
	mockResolver.Mock.Test(t)

	t.Cleanup(func() { mockResolver.AssertExpectations(t) })

	return mockResolver
}

// ResolveSource provides a mock function.
func (_m *MockSourceResolver) ResolveSource(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) (m.ResolvedSource, error) {
	ret := _m.Called(ctx, record, links, encoding)
	return ret.Get(0).(m.ResolvedSource), ret.Error(1)
}

// Resolve provides a mock function.
func (_m *MockSourceResolver) Resolve(ctx context.Context, record m.SourceRecord, links []m.LinkRule, encoding string) m.Resolution {
	ret := _m.Called(ctx, record, links, encoding)
	return ret.Get(0).(m.Resolution)
}
