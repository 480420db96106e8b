// Package mocks holds testify mocks for the interfaces sakuga depends on.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock of cachemanager.CacheManager.
type MockCacheManager[K ~string, V any] struct {
	mock.Mock
}

// NewMockCacheManager creates a mock that asserts its expectations on cleanup.
func NewMockCacheManager[K ~string, V any](t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCacheManager[K, V] {
	m := &MockCacheManager[K, V]{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	ret := m.Called(ctx, key)
	var v V
	if fn, ok := ret.Get(0).(func(context.Context, K) V); ok {
		v = fn(ctx, key)
	} else if ret.Get(0) != nil {
		v = ret.Get(0).(V)
	}
	return v, ret.Bool(1)
}

func (m *MockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *MockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	args := []any{ctx}
	for _, k := range keys {
		args = append(args, k)
	}
	return m.Called(args...).Error(0)
}

func (m *MockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCacheManager[K, V]) Len() int {
	return m.Called().Int(0)
}
