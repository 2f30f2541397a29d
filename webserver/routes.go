package webserver

import (
	"encoding/json"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/metrics"
	"net/http"
)

// PopulateRoutes populates the WebServer with the routes.
func (server *WebServer) PopulateRoutes(source SnapshotSource, hub *Hub) {
	server.router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	server.router.HandleFunc("/readyz", handleReady(source)).Methods(http.MethodGet)
	server.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	server.router.HandleFunc("/ws", hub.handleWS())
	apiRouter := server.router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/match", server.handleMatch(source)).Methods(http.MethodGet)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports the server as ready for players until the match is
// resolving.
func handleReady(source SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if source.Snapshot().Phase == games.MatchPhaseResolving {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("resolving"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// handleMatch responds with the current games.Snapshot.
func (server *WebServer) handleMatch(source SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		raw, err := json.Marshal(source.Snapshot())
		if err != nil {
			errors.Log(server.logger, errors.NewInternalErrorFromErr(err, "marshal snapshot", nil))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}
