package webserver

import (
	"context"
	"encoding/json"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/games"
	"go.uber.org/zap"
	"time"
)

// DefaultBroadcastInterval is the default interval in which the snapshot is
// sent to all clients.
const DefaultBroadcastInterval = time.Second

// SnapshotSource provides the current state of the match.
type SnapshotSource interface {
	Snapshot() games.Snapshot
}

// Hub holds all connected websocket clients and broadcasts match snapshots to
// them.
type Hub struct {
	logger *zap.Logger
	source SnapshotSource
	// broadcastInterval is the interval for broadcasting snapshots.
	broadcastInterval time.Duration
	// clients holds all online clients.
	clients map[*client]struct{}
	// register receives when a client wants to register itself.
	register chan *client
	// unregister receives when a client wants to unregister itself.
	unregister chan *client
	// stopped is closed when Run returns.
	stopped chan struct{}
}

// NewHub creates a new Hub. Start it with Hub.Run.
func NewHub(logger *zap.Logger, source SnapshotSource, broadcastInterval time.Duration) *Hub {
	return &Hub{
		logger:            logger,
		source:            source,
		broadcastInterval: broadcastInterval,
		clients:           make(map[*client]struct{}),
		register:          make(chan *client),
		unregister:        make(chan *client),
		stopped:           make(chan struct{}),
	}
}

// Run the Hub until the given context.Context is done. All clients are
// disconnected afterwards.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.stopped)
	ticker := time.NewTicker(h.broadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return nil
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("client connected", zap.Any("client_id", c.id))
			if raw, ok := h.marshalSnapshot(); ok {
				h.send(c, raw)
			}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				// Close the send-channel which leads to stopping the write-pump.
				close(c.send)
				h.logger.Debug("client disconnected", zap.Any("client_id", c.id))
			}
		case <-ticker.C:
			if len(h.clients) == 0 {
				continue
			}
			raw, ok := h.marshalSnapshot()
			if !ok {
				continue
			}
			for c := range h.clients {
				h.send(c, raw)
			}
		}
	}
}

func (h *Hub) marshalSnapshot() ([]byte, bool) {
	raw, err := json.Marshal(h.source.Snapshot())
	if err != nil {
		errors.Log(h.logger, errors.NewInternalErrorFromErr(err, "marshal snapshot", nil))
		return nil, false
	}
	return raw, true
}

// send the message to the client. Slow clients miss the message.
func (h *Hub) send(c *client, message []byte) {
	select {
	case c.send <- message:
	default:
		h.logger.Debug("client too slow. dropping snapshot.", zap.Any("client_id", c.id))
	}
}
