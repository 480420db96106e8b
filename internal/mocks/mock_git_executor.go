package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adelrodriguez/sakuga/internal/git"
)

// MockGitExecutor is a mock of git.Executor.
type MockGitExecutor struct {
	mock.Mock
}

var _ git.Executor = (*MockGitExecutor)(nil)

// NewMockGitExecutor creates a mock that asserts its expectations on cleanup.
func NewMockGitExecutor(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGitExecutor {
	m := &MockGitExecutor{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockGitExecutor) RepoRoot(ctx context.Context) (string, error) {
	ret := m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func (m *MockGitExecutor) FileHistory(ctx context.Context, file string, limit int) ([]git.Revision, error) {
	ret := m.Called(ctx, file, limit)
	var revs []git.Revision
	if ret.Get(0) != nil {
		revs = ret.Get(0).([]git.Revision)
	}
	return revs, ret.Error(1)
}

func (m *MockGitExecutor) Show(ctx context.Context, rev, path string) (string, error) {
	ret := m.Called(ctx, rev, path)
	if fn, ok := ret.Get(0).(func(context.Context, string, string) string); ok {
		return fn(ctx, rev, path), ret.Error(1)
	}
	return ret.String(0), ret.Error(1)
}
