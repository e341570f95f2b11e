package testutil

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockKeyValueStore is a mock for repository.KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

func (m *MockKeyValueStore) Update(ctx context.Context, key string, fn func(current string, found bool) (string, error)) error {
	args := m.Called(ctx, key, fn)
	return args.Error(0)
}

// MockChannel is a mock for relay.Channel
type MockChannel struct {
	mock.Mock

	onDisconnect []func()
}

func (m *MockChannel) Send(ctx context.Context, event string, payload any, expectReply bool) (json.RawMessage, error) {
	args := m.Called(ctx, event, payload, expectReply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	switch reply := args.Get(0).(type) {
	case json.RawMessage:
		return reply, args.Error(1)
	case string:
		return json.RawMessage(reply), args.Error(1)
	default:
		data, err := json.Marshal(reply)
		if err != nil {
			return nil, err
		}
		return data, args.Error(1)
	}
}

func (m *MockChannel) Disconnected() bool {
	args := m.Called()
	return args.Bool(0)
}

// OnDisconnect records fn; FireDisconnect runs the recorded hooks
func (m *MockChannel) OnDisconnect(fn func()) {
	m.onDisconnect = append(m.onDisconnect, fn)
}

// FireDisconnect simulates the background process going away
func (m *MockChannel) FireDisconnect() {
	hooks := m.onDisconnect
	m.onDisconnect = nil
	for _, fn := range hooks {
		fn()
	}
}
