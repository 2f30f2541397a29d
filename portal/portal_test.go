package portal

import (
	"context"
	"github.com/eclipse/paho.golang/paho"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sync"
	"testing"
)

func TestNewsletter_Unsubscribe(t *testing.T) {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n := &Newsletter[any]{
		unregisterFn: cancel,
	}
	go n.Unsubscribe()
	<-timeout.Done()
	assert.Equal(t, context.Canceled, timeout.Err(), "should not time out")
}

// teamSelection is a payload for testing parsing.
type teamSelection struct {
	Player string `json:"player"`
	Team   string `json:"team"`
}

// subscribeSuite tests Subscribe.
type subscribeSuite struct {
	suite.Suite
	portal *Stub
}

func (suite *subscribeSuite) SetupTest() {
	suite.portal = &Stub{}
}

func (suite *subscribeSuite) TestParse() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	suite.portal.On("Subscribe", mock.Anything, Topic("in/team/select")).
		Return(NewServingNewsletter(timeout, teamSelection{Player: "steve", Team: "red"}))
	defer suite.portal.AssertExpectations(suite.T())
	newsletter := Subscribe[teamSelection](timeout, suite.portal, "in/team/select")
	select {
	case <-timeout.Done():
		suite.Fail("timeout", "should receive parsed payload")
	case got := <-newsletter.Receive:
		suite.Equal(teamSelection{Player: "steve", Team: "red"}, got.Payload, "should parse payload")
	}
}

func (suite *subscribeSuite) TestSkipMalformed() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	fromPortal := make(chan event.Event[any])
	suite.portal.On("Subscribe", mock.Anything, Topic("in/team/select")).Return(&Newsletter[any]{
		unregisterFn: cancel,
		Receive:      fromPortal,
	})
	defer suite.portal.AssertExpectations(suite.T())
	newsletter := Subscribe[teamSelection](timeout, suite.portal, "in/team/select")
	go func() {
		defer close(fromPortal)
		for _, raw := range []string{`{"team": 5}`, `{"player": "alex", "team": "blue"}`} {
			select {
			case <-timeout.Done():
				return
			case fromPortal <- event.Event[any]{Publish: &paho.Publish{Payload: []byte(raw)}}:
			}
		}
	}()
	var got []teamSelection
	for e := range newsletter.Receive {
		got = append(got, e.Payload)
	}
	suite.NoError(timeout.Err(), "should not time out")
	suite.Equal([]teamSelection{{Player: "alex", Team: "blue"}}, got, "should skip malformed payload")
}

func (suite *subscribeSuite) TestAutoClose() {
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	fromPortal := make(chan event.Event[any])
	suite.portal.On("Subscribe", mock.Anything, Topic("in/player/join")).Return(&Newsletter[any]{
		unregisterFn: func() {
			suite.Fail("unregistered", "should not unregister")
		},
		Receive: fromPortal,
	})
	defer suite.portal.AssertExpectations(suite.T())
	newsletter := Subscribe[any](timeout, suite.portal, "in/player/join")
	close(fromPortal)
	select {
	case <-timeout.Done():
		suite.Fail("timeout", "should close receive channel")
	case _, more := <-newsletter.Receive:
		suite.False(more, "should read no values from channel")
	}
}

func TestSubscribe(t *testing.T) {
	suite.Run(t, new(subscribeSuite))
}

func TestPortal_Subscribe(t *testing.T) {
	var wg sync.WaitGroup
	inboundRouter := &mqttInboundRouterStub{}
	kiosk := &mqttKioskStub{}
	portal := &portal{
		logger:    zap.New(zapcore.NewNopCore()),
		baseTopic: "bedwars/test",
		gateway: newGateway(zap.New(zapcore.NewNopCore()), &gatewayBridge{
			logger:        zap.New(zapcore.NewNopCore()),
			kiosk:         kiosk,
			inboundRouter: inboundRouter,
		}),
	}
	handlerToRun := make(chan paho.MessageHandler)
	timeout, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	inboundRouter.On("RegisterHandler", "bedwars/test/in/vote/map", mock.Anything).Run(func(args mock.Arguments) {
		select {
		case <-timeout.Done():
		case handlerToRun <- args.Get(1).(paho.MessageHandler):
		}
	})
	kiosk.On("Subscribe", mock.Anything, mock.Anything).Return(&paho.Suback{}, nil)
	kiosk.On("Unsubscribe", mock.Anything, mock.Anything).Return(&paho.Unsuback{}, nil)
	unregistered := make(chan struct{})
	inboundRouter.On("UnregisterHandler", "bedwars/test/in/vote/map").Run(func(_ mock.Arguments) {
		close(unregistered)
	})
	defer inboundRouter.AssertExpectations(t)
	toPublish := &paho.Publish{Topic: "bedwars/test/in/vote/map"}
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-timeout.Done():
		case handler := <-handlerToRun:
			handler(toPublish)
		}
	}()
	newsletter := portal.Subscribe(timeout, "in/vote/map")
	select {
	case <-timeout.Done():
		require.Fail(t, "timeout", "should receive publish")
	case got := <-newsletter.Receive:
		assert.Equal(t, toPublish, got.Publish, "should forward publish")
	}
	newsletter.Unsubscribe()
	select {
	case <-timeout.Done():
		assert.Fail(t, "timeout", "should unregister handler")
	case <-unregistered:
	}
	wg.Wait()
}

// publisherStub mocks publisher.
type publisherStub struct {
	mock.Mock
}

func (s *publisherStub) Publish(ctx context.Context, publish *paho.Publish) (*paho.PublishResponse, error) {
	args := s.Called(ctx, publish)
	var res *paho.PublishResponse
	res, _ = args.Get(0).(*paho.PublishResponse)
	return res, args.Error(1)
}

// portalPublishSuite tests portal.Publish.
type portalPublishSuite struct {
	suite.Suite
	publisher *publisherStub
	portal    *portal
	ctx       context.Context
	cancel    context.CancelFunc
}

func (suite *portalPublishSuite) SetupTest() {
	suite.publisher = &publisherStub{}
	suite.portal = &portal{
		logger:    zap.New(zapcore.NewNopCore()),
		publisher: suite.publisher,
	}
	suite.ctx, suite.cancel = context.WithTimeout(context.Background(), timeout)
}

func (suite *portalPublishSuite) TearDownTest() {
	suite.cancel()
	suite.publisher.AssertExpectations(suite.T())
}

func (suite *portalPublishSuite) TestMarshalFail() {
	// Channels cannot be marshalled.
	suite.NotPanics(func() {
		suite.portal.Publish(suite.ctx, "out/phase", make(chan int))
	})
}

func (suite *portalPublishSuite) TestBaseTopic() {
	suite.portal.baseTopic = "bedwars/lobby-1"
	suite.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(publish *paho.Publish) bool {
		return publish.Topic == "bedwars/lobby-1/out/countdown" && string(publish.Payload) == `{"remaining":10}`
	})).Return(&paho.PublishResponse{}, nil).Once()
	suite.portal.Publish(suite.ctx, "out/countdown", map[string]int{"remaining": 10})
}

func (suite *portalPublishSuite) TestNotConnected() {
	suite.portal.publisher = &connectionPublisher{}
	suite.NotPanics(func() {
		suite.portal.Publish(suite.ctx, "out/phase", 123)
	})
}

func (suite *portalPublishSuite) TestPublishFail() {
	suite.publisher.On("Publish", mock.Anything, mock.Anything).
		Return(nil, errors.NewInternalError("sad life", nil)).Once()
	suite.NotPanics(func() {
		suite.portal.Publish(suite.ctx, "out/phase", 123)
	})
}

func (suite *portalPublishSuite) TestOK() {
	suite.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(publish *paho.Publish) bool {
		return publish.Topic == "out/phase" && string(publish.Payload) == "123" && publish.QoS == mqttQOS
	})).Return(&paho.PublishResponse{}, nil).Once()
	suite.portal.Publish(suite.ctx, "out/phase", 123)
}

func TestPortal_Publish(t *testing.T) {
	suite.Run(t, new(portalPublishSuite))
}
