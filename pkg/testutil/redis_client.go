package testutil

import (
	"context"
	"time"
)

type MockRedisClient struct {
	ExistFunc      func(ctx context.Context, key string) (bool, error)
	DelFunc        func(ctx context.Context, key ...string) error
	SetFunc        func(ctx context.Context, key, value string, ttl time.Duration) error
	GetFunc        func(ctx context.Context, key string) (string, error)
	SetNXFunc      func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DelIfEqualFunc func(ctx context.Context, key, value string) (bool, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, key ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, key...)
	}

	return nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", nil
}

func (m *MockRedisClient) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if m.SetNXFunc != nil {
		return m.SetNXFunc(ctx, key, value, ttl)
	}

	return true, nil
}

func (m *MockRedisClient) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	if m.DelIfEqualFunc != nil {
		return m.DelIfEqualFunc(ctx, key, value)
	}

	return true, nil
}
