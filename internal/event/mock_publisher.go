package event

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of the Publisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithRetry(ctx context.Context, evt Event) {
	m.Called(ctx, evt)
}

// PublishedTypes lists the event types of every recorded call in order
func (m *MockPublisher) PublishedTypes() []Type {
	var types []Type
	for _, call := range m.Calls {
		if call.Method != "PublishWithRetry" {
			continue
		}
		if evt, ok := call.Arguments.Get(1).(Event); ok {
			types = append(types, evt.Type)
		}
	}
	return types
}

// NewAcceptingPublisher returns a MockPublisher that accepts any event
func NewAcceptingPublisher() *MockPublisher {
	m := &MockPublisher{}
	m.On("PublishWithRetry", mock.Anything, mock.Anything).Return()
	return m
}
