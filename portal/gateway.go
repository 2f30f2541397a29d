package portal

import (
	"context"
	"github.com/eclipse/paho.golang/paho"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/event"
	"go.uber.org/zap"
	"sync"
	"time"
)

// brokerRequestTimeout is the timeout for subscribe and unsubscribe requests to
// the MQTT broker.
const brokerRequestTimeout = 5 * time.Second

// mqttKiosk subscribes and unsubscribes topics at the MQTT broker. It is
// implemented by autopaho.ConnectionManager.
type mqttKiosk interface {
	Subscribe(ctx context.Context, s *paho.Subscribe) (*paho.Suback, error)
	Unsubscribe(ctx context.Context, u *paho.Unsubscribe) (*paho.Unsuback, error)
}

// mqttInboundRouter abstracts paho.Router with only the parts needed by
// gateway.
type mqttInboundRouter interface {
	RegisterHandler(topic string, handler paho.MessageHandler)
	UnregisterHandler(topic string)
}

// gatewayBridge connects gateway with the MQTT client. The kiosk is only
// available while connected.
type gatewayBridge struct {
	logger        *zap.Logger
	kiosk         mqttKiosk
	kioskMutex    sync.RWMutex
	inboundRouter mqttInboundRouter
}

func (bridge *gatewayBridge) setKiosk(kiosk mqttKiosk) {
	bridge.kioskMutex.Lock()
	defer bridge.kioskMutex.Unlock()
	bridge.kiosk = kiosk
}

// subscribeAtBroker subscribes the given topics at the broker. If not
// connected, nothing happens, as all topics are subscribed when the connection
// is established.
func (bridge *gatewayBridge) subscribeAtBroker(ctx context.Context, topics ...Topic) {
	bridge.kioskMutex.RLock()
	kiosk := bridge.kiosk
	bridge.kioskMutex.RUnlock()
	if kiosk == nil || len(topics) == 0 {
		return
	}
	subscriptions := make(map[string]paho.SubscribeOptions, len(topics))
	for _, topic := range topics {
		subscriptions[string(topic)] = paho.SubscribeOptions{QoS: mqttQOS}
	}
	timeout, cancel := context.WithTimeout(ctx, brokerRequestTimeout)
	defer cancel()
	_, err := kiosk.Subscribe(timeout, &paho.Subscribe{Subscriptions: subscriptions})
	if err != nil {
		errors.Log(bridge.logger, errors.Error{
			Code:    errors.ErrCommunication,
			Err:     err,
			Message: "subscribe at mqtt broker",
			Details: errors.Details{"topics": topics},
		})
	}
}

func (bridge *gatewayBridge) unsubscribeAtBroker(topic Topic) {
	bridge.kioskMutex.RLock()
	kiosk := bridge.kiosk
	bridge.kioskMutex.RUnlock()
	if kiosk == nil {
		return
	}
	timeout, cancel := context.WithTimeout(context.Background(), brokerRequestTimeout)
	defer cancel()
	_, err := kiosk.Unsubscribe(timeout, &paho.Unsubscribe{Topics: []string{string(topic)}})
	if err != nil {
		errors.Log(bridge.logger, errors.Error{
			Code:    errors.ErrCommunication,
			Err:     err,
			Message: "unsubscribe at mqtt broker",
			Details: errors.Details{"topic": topic},
		})
	}
}

// subscription forwards messages to a subscriber until its lifetime is done.
type subscription struct {
	lifetime context.Context
	forward  chan<- event.Event[any]
}

// topicHandler multiplexes messages for one topic to all subscriptions.
type topicHandler struct {
	subscriptions map[*subscription]struct{}
	// subscriptionsMutex locks subscriptions. It is read-locked while forwarding so
	// that forward-channels are not closed while in use.
	subscriptionsMutex sync.RWMutex
}

func newTopicHandler() *topicHandler {
	return &topicHandler{subscriptions: make(map[*subscription]struct{})}
}

// handle forwards the given message to all subscriptions and waits until each
// one either received it or is done.
func (handler *topicHandler) handle(publish *paho.Publish) {
	handler.subscriptionsMutex.RLock()
	defer handler.subscriptionsMutex.RUnlock()
	var forwarded sync.WaitGroup
	for sub := range handler.subscriptions {
		forwarded.Add(1)
		go func(sub *subscription) {
			defer forwarded.Done()
			select {
			case <-sub.lifetime.Done():
			case sub.forward <- event.Event[any]{Publish: publish}:
			}
		}(sub)
	}
	forwarded.Wait()
}

// gateway registers subscriptions at the MQTT client and forwards received
// messages to subscribers.
type gateway struct {
	logger *zap.Logger
	bridge *gatewayBridge
	// handlers holds all handlers by subscribed topics.
	handlers map[Topic]*topicHandler
	// handlersMutex locks handlers.
	handlersMutex sync.Mutex
}

func newGateway(logger *zap.Logger, bridge *gatewayBridge) *gateway {
	return &gateway{
		logger:   logger,
		bridge:   bridge,
		handlers: make(map[Topic]*topicHandler),
	}
}

// subscribe the given Topic. Received messages are forwarded to the returned
// channel until the lifetime is done. Then, the channel is closed.
func (g *gateway) subscribe(lifetime context.Context, topic Topic) <-chan event.Event[any] {
	forward := make(chan event.Event[any])
	sub := &subscription{
		lifetime: lifetime,
		forward:  forward,
	}
	g.handlersMutex.Lock()
	handler, ok := g.handlers[topic]
	if !ok {
		handler = newTopicHandler()
		g.handlers[topic] = handler
	}
	handler.subscriptionsMutex.Lock()
	handler.subscriptions[sub] = struct{}{}
	handler.subscriptionsMutex.Unlock()
	g.handlersMutex.Unlock()
	if !ok {
		g.bridge.inboundRouter.RegisterHandler(string(topic), handler.handle)
		g.bridge.subscribeAtBroker(lifetime, topic)
		g.logger.Debug("subscribed to topic", zap.Any("topic", topic))
	}
	go func() {
		<-lifetime.Done()
		g.unsubscribe(topic, sub)
		close(forward)
	}()
	return forward
}

// unsubscribe removes the given subscription for the Topic. If it was the last
// one, the topic is unsubscribed at the broker.
func (g *gateway) unsubscribe(topic Topic, sub *subscription) {
	g.handlersMutex.Lock()
	handler, ok := g.handlers[topic]
	if !ok {
		g.handlersMutex.Unlock()
		errors.Log(g.logger, errors.NewInternalError("unsubscribe called for unknown topic handler",
			errors.Details{"topic": topic}))
		return
	}
	handler.subscriptionsMutex.Lock()
	if _, ok := handler.subscriptions[sub]; !ok {
		handler.subscriptionsMutex.Unlock()
		g.handlersMutex.Unlock()
		errors.Log(g.logger, errors.NewInternalError("unsubscribe with unknown subscription for topic",
			errors.Details{"topic": topic}))
		return
	}
	delete(handler.subscriptions, sub)
	remaining := len(handler.subscriptions)
	handler.subscriptionsMutex.Unlock()
	if remaining > 0 {
		g.handlersMutex.Unlock()
		return
	}
	delete(g.handlers, topic)
	g.handlersMutex.Unlock()
	g.bridge.inboundRouter.UnregisterHandler(string(topic))
	g.bridge.unsubscribeAtBroker(topic)
	g.logger.Debug("unsubscribed from topic", zap.Any("topic", topic))
}

// subscribedTopics returns all topics with active subscriptions.
func (g *gateway) subscribedTopics() []Topic {
	g.handlersMutex.Lock()
	defer g.handlersMutex.Unlock()
	topics := make([]Topic, 0, len(g.handlers))
	for topic := range g.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// resubscribeAll subscribes all topics with active subscriptions at the broker.
// It is called when the connection is (re-)established.
func (g *gateway) resubscribeAll(ctx context.Context) {
	g.bridge.subscribeAtBroker(ctx, g.subscribedTopics()...)
}
