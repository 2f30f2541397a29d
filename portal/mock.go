package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/eclipse/paho.golang/paho"
	"github.com/lefinal/bedwars-server/event"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stub mocks Portal.
type Stub struct {
	mock.Mock
	// logger is returned by Logger. If not set, a nop logger is used.
	logger *zap.Logger
}

// NewStub creates a Stub that returns the given logger in Logger.
func NewStub(logger *zap.Logger) *Stub {
	return &Stub{logger: logger}
}

// Subscribe calls mock.Mock and returns the configured Newsletter.
func (s *Stub) Subscribe(ctx context.Context, topic Topic) *Newsletter[any] {
	return s.Called(ctx, topic).Get(0).(*Newsletter[any])
}

// Publish calls mock.Mock.
func (s *Stub) Publish(ctx context.Context, topic Topic, payload interface{}) {
	s.Called(ctx, topic, payload)
}

func (s *Stub) Logger() *zap.Logger {
	if s.logger == nil {
		return zap.New(zapcore.NewNopCore())
	}
	return s.logger
}

// NewIdleNewsletter returns a Newsletter that never receives anything and
// closes Newsletter.Receive when the given context.Context is done or it is
// unsubscribed.
func NewIdleNewsletter(ctx context.Context) *Newsletter[any] {
	return NewServingNewsletter(ctx)
}

// NewServingNewsletter returns a Newsletter that delivers the given payloads in
// order as if they were received from the broker. Each payload is marshalled
// to JSON and set as publish payload. Newsletter.Receive is closed when the
// given context.Context is done or the newsletter is unsubscribed.
func NewServingNewsletter(ctx context.Context, payloads ...interface{}) *Newsletter[any] {
	lifetime, cancel := context.WithCancel(ctx)
	receive := make(chan event.Event[any])
	go func() {
		defer close(receive)
		for _, payload := range payloads {
			raw, err := json.Marshal(payload)
			if err != nil {
				panic(fmt.Sprintf("marshal payload: %v", err))
			}
			select {
			case <-lifetime.Done():
				return
			case receive <- event.Event[any]{Publish: &paho.Publish{Payload: raw}}:
			}
		}
		<-lifetime.Done()
	}()
	return &Newsletter[any]{
		unregisterFn: cancel,
		Receive:      receive,
	}
}
