package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adelrodriguez/sakuga/internal/encoder"
)

// MockSink is a mock of encoder.Sink.
type MockSink struct {
	mock.Mock
}

var _ encoder.Sink = (*MockSink)(nil)

// NewMockSink creates a mock that asserts its expectations on cleanup.
func NewMockSink(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSink {
	m := &MockSink{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSink) WriteFrame(ctx context.Context, s encoder.Sample) error {
	ret := m.Called(ctx, s)
	if fn, ok := ret.Get(0).(func(context.Context, encoder.Sample) error); ok {
		return fn(ctx, s)
	}
	return ret.Error(0)
}

func (m *MockSink) Finalize(ctx context.Context) (string, error) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (m *MockSink) Abort() {
	m.Called()
}
