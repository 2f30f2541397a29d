package app

import (
	"context"
	"fmt"
	"github.com/lefinal/bedwars-server/debugstatssvc"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/logging"
	"github.com/lefinal/bedwars-server/logpublishsvc"
	"github.com/lefinal/bedwars-server/matchsvc"
	"github.com/lefinal/bedwars-server/portal"
	"github.com/lefinal/bedwars-server/service"
	"github.com/lefinal/bedwars-server/stats"
	"github.com/lefinal/bedwars-server/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"time"
)

type services map[string]service.Service

// serviceFunc allows using a function as service.Service.
type serviceFunc func(ctx context.Context) error

func (fn serviceFunc) Run(ctx context.Context) error {
	return fn(ctx)
}

// servicesDeps are the components created in App.boot that are run as
// services.
type servicesDeps struct {
	portalBase portal.Base
	match      *games.Match
	scheduler  *games.Scheduler
	inbox      *games.Inbox
	bridge     *matchsvc.Bridge
	recorder   *stats.Recorder
	publishLog <-chan logging.LogEntry
}

func createServices(appConfig Config, logger *zap.Logger, deps servicesDeps) (services, error) {
	services := make(services)
	// MQTT connection.
	services["portal"] = serviceFunc(deps.portalBase.Open)
	// Match.
	services["match"] = matchsvc.NewMatchService(logger.Named("match-service"),
		deps.portalBase.NewPortal("match-service"), matchsvc.Deps{
			Match:         deps.match,
			Inbox:         deps.inbox,
			Clock:         deps.scheduler,
			Bridge:        deps.bridge,
			StatsResetter: deps.recorder,
		})
	services["bridge"] = deps.bridge
	services["stats"] = deps.recorder
	// Debug stats service.
	services["debug-stats"] = debugstatssvc.NewService(logger.Named("debug-stats"), debugstatssvc.Config{
		IsEnabled: appConfig.Log.SystemDebugStatsInterval.Valid,
		Interval:  time.Duration(appConfig.Log.SystemDebugStatsInterval.Int) * time.Second,
	}, deps.match)
	// Log publishing service.
	services["log-publish"] = logpublishsvc.New(logger.Named("log-publish-service"),
		deps.portalBase.NewPortal(logpublishsvc.LoggerName), deps.publishLog)
	// Web server.
	if appConfig.WebAddr.Valid {
		webServer, err := webserver.NewWebServer(logger.Named("web-server"), webserver.Config{
			ServeAddr:    appConfig.WebAddr.String,
			WriteTimeout: webserver.DefaultWriteTimeout,
			ReadTimeout:  webserver.DefaultReadTimeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "new web server", nil)
		}
		hub := webserver.NewHub(logger.Named("ws-hub"), deps.match, webserver.DefaultBroadcastInterval)
		webServer.PopulateRoutes(deps.match, hub)
		services["web-server"] = webServer
		services["ws-hub"] = hub
	}
	return services, nil
}

func (s services) run(ctx context.Context, logger *zap.Logger) error {
	wg, lifetime := errgroup.WithContext(ctx)
	for name, serviceToRun := range s {
		// Copy values.
		name, serviceToRun := name, serviceToRun
		wg.Go(func() error {
			logger.Debug(fmt.Sprintf("service %s up", name))
			defer logger.Debug(fmt.Sprintf("service %s down", name))
			if err := serviceToRun.Run(lifetime); err != nil {
				return errors.Wrap(err, "run service", errors.Details{"service_name": name})
			}
			return nil
		})
	}
	return wg.Wait()
}
