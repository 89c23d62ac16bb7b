package services

import "context"

// MockPinger is a mock implementation of Pinger for testing
type MockPinger struct {
	PingFunc  func(ctx context.Context) error
	PingCalls int
}

// NewMockPinger creates a new mock pinger
func NewMockPinger() *MockPinger {
	return &MockPinger{}
}

// SetPingError makes every Ping fail with err
func (m *MockPinger) SetPingError(err error) {
	m.PingFunc = func(ctx context.Context) error {
		return err
	}
}

// Ping mocks a health probe
func (m *MockPinger) Ping(ctx context.Context) error {
	m.PingCalls++

	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}

	// Default behavior - success
	return nil
}
