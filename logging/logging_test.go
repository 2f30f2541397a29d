package logging

import (
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"testing"
)

// PublishCoreSuite tests NewPublishCore.
type PublishCoreSuite struct {
	suite.Suite
	logger  *zap.Logger
	entries <-chan LogEntry
}

func (suite *PublishCoreSuite) SetupTest() {
	var core zapcore.Core
	core, suite.entries = NewPublishCore(zap.InfoLevel, 4, "log-publish")
	suite.logger = zap.New(core)
}

func (suite *PublishCoreSuite) next() (LogEntry, bool) {
	select {
	case entry := <-suite.entries:
		return entry, true
	default:
		return LogEntry{}, false
	}
}

func (suite *PublishCoreSuite) TestForward() {
	suite.logger.Named("match").With(zap.String("phase", "lobby")).Info("countdown started", zap.Int("remaining", 30))
	entry, ok := suite.next()
	suite.Require().True(ok, "should forward entry")
	suite.Equal("countdown started", entry.Message, "should set message")
	suite.Equal("match", entry.LoggerName, "should set logger name")
	suite.Equal(zap.InfoLevel, entry.Level, "should set level")
	suite.Equal(map[string]interface{}{
		"phase":     "lobby",
		"remaining": int64(30),
	}, entry.Fields, "should include all fields")
}

func (suite *PublishCoreSuite) TestLevel() {
	suite.logger.Debug("meow")
	_, ok := suite.next()
	suite.False(ok, "should not forward debug entries")
}

func (suite *PublishCoreSuite) TestNoPublishField() {
	suite.logger.Info("meow", NoPublish())
	_, ok := suite.next()
	suite.False(ok, "should omit entry")
}

func (suite *PublishCoreSuite) TestNoPublishWith() {
	suite.logger.With(NoPublish()).Named("child").Warn("meow")
	_, ok := suite.next()
	suite.False(ok, "should omit entries of logger")
}

func (suite *PublishCoreSuite) TestOmitLogger() {
	suite.logger.Named("log-publish").Error("meow")
	suite.logger.Named("log-publish").Named("portal").Error("meow")
	suite.logger.Named("log-publisher").Error("woof")
	entry, ok := suite.next()
	suite.Require().True(ok, "should forward entries of other loggers")
	suite.Equal("woof", entry.Message, "should only forward other logger")
	_, ok = suite.next()
	suite.False(ok, "should omit entries of omitted logger")
}

func (suite *PublishCoreSuite) TestDropWhenFull() {
	suite.NotPanics(func() {
		for i := 0; i < 10; i++ {
			suite.logger.Info("meow")
		}
	})
	suite.Len(suite.entries, 4, "should keep buffered entries")
}

func TestPublishCore(t *testing.T) {
	suite.Run(t, new(PublishCoreSuite))
}
