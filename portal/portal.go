package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/event"
	"go.uber.org/zap"
	"net/url"
	"sync"
	"time"
)

const mqttClientIDPrefix = "bedwars-server-"
const baseTopicPrefix = "bedwars"
const mqttKeepAlive = 8

const mqttQOS = 0

// Topic is an MQTT topic.
type Topic string

// Config is the config for the Base.
type Config struct {
	// MQTTAddr is the address where the MQTT-server is found.
	MQTTAddr string
	// ServerID identifies the game server. All topics used via a Portal are
	// relative to bedwars/<server-id>.
	ServerID string
}

// Newsletter is used with Portal.Subscribe in order to subscribe to topics.
type Newsletter[payloadT any] struct {
	unregisterFn func()
	// Receive receives when a new message for the subscribed topic was received.
	// When the Newsletter is unsubscribed, the Receive-channel will be closed.
	Receive <-chan event.Event[payloadT]
}

func (sub *Newsletter[payload]) Unsubscribe() {
	sub.unregisterFn()
}

// publisher is used for publishing MQTT events.
type publisher interface {
	Publish(ctx context.Context, publish *paho.Publish) (*paho.PublishResponse, error)
}

// connectionPublisher is a publisher that forwards to the current connection.
// Publishing while not connected fails.
type connectionPublisher struct {
	conn      publisher
	connMutex sync.RWMutex
}

func (p *connectionPublisher) setConn(conn publisher) {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()
	p.conn = conn
}

func (p *connectionPublisher) Publish(ctx context.Context, publish *paho.Publish) (*paho.PublishResponse, error) {
	p.connMutex.RLock()
	conn := p.conn
	p.connMutex.RUnlock()
	if conn == nil {
		return nil, errors.Error{
			Code:    errors.ErrCommunication,
			Message: "not connected to mqtt server",
			Details: errors.Details{"topic": publish.Topic},
		}
	}
	return conn.Publish(ctx, publish)
}

// Base is a wrapper for all connection related stuff for a Portal. Using the
// Base, you only need to Open the Base and then use portals via NewPortal.
type Base interface {
	// Open the connection. Stays opened until the given context.Context is done.
	Open(ctx context.Context) error
	// NewPortal creates a new Portal that uses the connection from the Base.
	NewPortal(name string) Portal
}

type basePortal struct {
	logger *zap.Logger
	config Config
	// brokerURL is the URL of the MQTT broker.
	brokerURL *url.URL
	// baseTopic is the prefix for all topics used in portals.
	baseTopic Topic
	// mqttRouter dispatches inbound messages to the handlers registered by
	// gateway.
	mqttRouter *paho.StandardRouter
	// bridge holds the kiosk of the current connection.
	bridge *gatewayBridge
	// gateway is responsible for registering subscription requests as well as
	// multiplexing and forwarding messages.
	gateway *gateway
	// publisher is used for publishing MQTT messages.
	publisher *connectionPublisher
}

type Portal interface {
	// Subscribe returns a Newsletter for the given Topic.
	Subscribe(ctx context.Context, topic Topic) *Newsletter[any]
	// Publish the given payload to the Topic. It will catch any errors during
	// publishing and log them using the Logger.
	Publish(ctx context.Context, topic Topic, payload interface{})
	// Logger is needed in order to provide error logging for Subscribe as generics
	// are not supported for methods.
	Logger() *zap.Logger
}

// NewBase creates a Base with the given Config. Open it with Base.Open.
func NewBase(logger *zap.Logger, config Config) (Base, error) {
	if config.ServerID == "" {
		return nil, errors.NewInternalError("missing server id", nil)
	}
	brokerURL, err := url.Parse(config.MQTTAddr)
	if err != nil {
		return nil, errors.NewInternalErrorFromErr(err, "invalid mqtt addr", errors.Details{"was": config.MQTTAddr})
	}
	mqttRouter := paho.NewStandardRouter()
	bridge := &gatewayBridge{
		logger:        logger.Named("gateway"),
		inboundRouter: mqttRouter,
	}
	return &basePortal{
		logger:     logger,
		config:     config,
		brokerURL:  brokerURL,
		baseTopic:  Topic(fmt.Sprintf("%s/%s", baseTopicPrefix, config.ServerID)),
		mqttRouter: mqttRouter,
		bridge:     bridge,
		gateway:    newGateway(logger.Named("gateway"), bridge),
		publisher:  &connectionPublisher{},
	}, nil
}

// Open the base portal and keep the connection to the MQTT server until the
// given context.Context is done.
func (p *basePortal) Open(ctx context.Context) error {
	conn, err := autopaho.NewConnection(ctx, p.genClientConfig(ctx))
	if err != nil {
		return errors.NewInternalErrorFromErr(err, "create mqtt server connection failed", nil)
	}
	p.publisher.setConn(conn)
	<-ctx.Done()
	p.publisher.setConn(nil)
	p.bridge.setKiosk(nil)
	// Shutdown MQTT connection.
	disconnectTimeout, cancelDisconnectTimeout := context.WithTimeout(context.Background(), 3*time.Second)
	err = conn.Disconnect(disconnectTimeout)
	cancelDisconnectTimeout()
	if err != nil {
		return errors.NewInternalErrorFromErr(err, "disconnect from mqtt server failed", nil)
	}
	return nil
}

// genClientConfig generates the autopaho.ClientConfig that is ready to launch.
// Each time the connection is established, all active subscriptions are
// subscribed at the broker.
func (p *basePortal) genClientConfig(ctx context.Context) autopaho.ClientConfig {
	return autopaho.ClientConfig{
		BrokerUrls: []*url.URL{p.brokerURL},
		KeepAlive:  mqttKeepAlive,
		OnConnectionUp: func(cm *autopaho.ConnectionManager, _ *paho.Connack) {
			p.logger.Info("mqtt server connection established",
				zap.String("broker", p.brokerURL.String()),
				zap.Any("base_topic", p.baseTopic))
			p.bridge.setKiosk(cm)
			go p.gateway.resubscribeAll(ctx)
		},
		OnConnectError: func(err error) {
			errors.Log(p.logger, errors.Error{
				Code:    errors.ErrCommunication,
				Err:     err,
				Message: "mqtt server connection failed",
			})
		},
		ClientConfig: paho.ClientConfig{
			ClientID: mqttClientIDPrefix + p.config.ServerID,
			Router:   p.mqttRouter,
			OnServerDisconnect: func(disconnect *paho.Disconnect) {
				p.bridge.setKiosk(nil)
				reason := fmt.Sprintf("reason code %d", disconnect.ReasonCode)
				if disconnect.Properties != nil && disconnect.Properties.ReasonString != "" {
					reason = disconnect.Properties.ReasonString
				}
				errors.Log(p.logger, errors.Error{
					Code:    errors.ErrCommunication,
					Message: fmt.Sprintf("mqtt server requested disconnect: %s", reason),
				})
			},
			OnClientError: func(err error) {
				p.bridge.setKiosk(nil)
				errors.Log(p.logger, errors.Error{
					Code:    errors.ErrCommunication,
					Err:     err,
					Message: "mqtt server connection client error",
				})
			},
		},
	}
}

// NewPortal creates a new Portal that can be used to subscribe to topics and
// events.
func (p *basePortal) NewPortal(name string) Portal {
	return &portal{
		logger:    p.logger.Named(name),
		baseTopic: p.baseTopic,
		gateway:   p.gateway,
		publisher: p.publisher,
	}
}

// Subscribe to the given Portal for the Topic. The returned Newsletter contains
// an already unmarshalled payload. Messages that fail to unmarshal, are
// dropped. However, the error is logged to Portal.Logger.
func Subscribe[payloadT any](ctx context.Context, portal Portal, topic Topic) *Newsletter[payloadT] {
	rawSub := portal.Subscribe(ctx, topic)
	receiveParsed := make(chan event.Event[payloadT])
	go func() {
		defer close(receiveParsed)
		for e := range rawSub.Receive {
			var payload payloadT
			err := json.Unmarshal(e.Publish.Payload, &payload)
			if err != nil {
				errors.Log(portal.Logger(), errors.Error{
					Code:    errors.ErrProtocolViolation,
					Err:     err,
					Message: "parse payload failed",
					Details: errors.Details{
						"topic":   e.Publish.Topic,
						"payload": string(e.Publish.Payload),
					},
				})
				continue
			}
			select {
			case <-ctx.Done():
				return
			case receiveParsed <- event.Event[payloadT]{
				Publish: e.Publish,
				Payload: payload,
			}:
			}
		}
	}()
	return &Newsletter[payloadT]{
		unregisterFn: rawSub.unregisterFn,
		Receive:      receiveParsed,
	}
}

// portal provides a higher-level API for Base that makes it easier to conduct
// tests, etc.
type portal struct {
	logger *zap.Logger
	// baseTopic is prepended to all topics. If empty, topics are used as they
	// are.
	baseTopic Topic
	// gateway is used for subscribing to MQTT topics via Subscribe.
	gateway *gateway
	// publisher is used for publishing MQTT messages via Publish.
	publisher publisher
}

func (p *portal) fullTopic(topic Topic) Topic {
	if p.baseTopic == "" {
		return topic
	}
	return p.baseTopic + "/" + topic
}

// Subscribe for the given Topic using the portal's gateway.
func (p *portal) Subscribe(ctx context.Context, topic Topic) *Newsletter[any] {
	subLifetime, cancelSub := context.WithCancel(ctx)
	return &Newsletter[any]{
		unregisterFn: cancelSub,
		Receive:      p.gateway.subscribe(subLifetime, p.fullTopic(topic)),
	}
}

// Publish the given payload to the Topic using the portal's publisher.
func (p *portal) Publish(ctx context.Context, topic Topic, payload interface{}) {
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		errors.Log(p.logger, errors.NewInternalErrorFromErr(err, "marshal payload for publishing", errors.Details{
			"topic": topic,
		}))
		return
	}
	fullTopic := p.fullTopic(topic)
	_, err = p.publisher.Publish(ctx, &paho.Publish{
		QoS:     mqttQOS,
		Topic:   string(fullTopic),
		Payload: payloadRaw,
	})
	if err != nil {
		errors.Log(p.logger, errors.Wrap(err, "publish message", errors.Details{
			"topic":   fullTopic,
			"payload": payload,
		}))
		return
	}
}

// Logger returns the portal's logger.
func (p *portal) Logger() *zap.Logger {
	return p.logger
}
