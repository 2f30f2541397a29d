// Package webserver serves health checks, metrics and a live view of the match
// for dashboards.
package webserver

import (
	"context"
	nativeerrors "errors"
	"github.com/gorilla/mux"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	// DefaultServeAddr is the default address to serve on.
	DefaultServeAddr = ":8080"
	// DefaultWriteTimeout is the default timeout for writing.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultReadTimeout is the default timeout for reading.
	DefaultReadTimeout = 15 * time.Second
	// shutdownTimeout is the timeout for graceful shutdown.
	shutdownTimeout = 15 * time.Second
)

// Config is the configuration that is used in order to create and run a web
// server.
type Config struct {
	// ServeAddr is the address for the web server to listen to.
	ServeAddr string
	// WriteTimeout is the duration to wait until write fails with a timeout.
	WriteTimeout time.Duration
	// ReadTimeout is the duration to wait until read fails with a timeout.
	ReadTimeout time.Duration
}

// WebServer serves the routes added with WebServer.PopulateRoutes.
type WebServer struct {
	logger     *zap.Logger
	config     Config
	httpServer *http.Server
	router     *mux.Router
}

// NewWebServer creates a new WebServer. Run it with WebServer.Run and do not
// forget to call WebServer.PopulateRoutes before.
func NewWebServer(logger *zap.Logger, config Config) (*WebServer, error) {
	if config.ServeAddr == "" {
		return nil, errors.NewInternalError("no addr provided in config", nil)
	}
	server := &WebServer{
		logger: logger,
		config: config,
		router: mux.NewRouter(),
	}
	server.router.Use(server.loggingMiddleware)
	server.router.Use(noCacheMiddleware)
	server.router.NotFoundHandler = noCacheMiddleware(server.loggingMiddleware(http.NotFoundHandler()))
	server.httpServer = &http.Server{
		Handler: cors.New(cors.Options{
			AllowedMethods: []string{http.MethodGet},
		}).Handler(server.router),
		Addr:         config.ServeAddr,
		WriteTimeout: config.WriteTimeout,
		ReadTimeout:  config.ReadTimeout,
	}
	return server, nil
}

// Run serves until the given context.Context is done.
func (server *WebServer) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		server.logger.Info("web server running", zap.String("addr", server.config.ServeAddr))
		err := server.httpServer.ListenAndServe()
		if err != nil && !nativeerrors.Is(err, http.ErrServerClosed) {
			serveErr <- errors.FromErr("listen and serve", errors.ErrInternal, err,
				errors.Details{"addr": server.config.ServeAddr})
		}
		close(serveErr)
	}()
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return errors.FromErr("shutdown web server", errors.ErrInternal, err, nil)
	}
	return nil
}
