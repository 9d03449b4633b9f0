package testutils

import (
	"notes-app/notes/broker"

	"github.com/stretchr/testify/mock"
)

// MockBroker is a testify mock of broker.Broker.
type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockBroker) Subscribe(subject string, handler broker.Handler) (broker.Subscription, error) {
	args := m.Called(subject, handler)
	sub, _ := args.Get(0).(broker.Subscription)
	return sub, args.Error(1)
}

func (m *MockBroker) Close() {
	m.Called()
}
