package server

import (
	"sync"
	"time"

	"sim-trader/src/logger"
	"sim-trader/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Live Update Broadcaster
// -----------------------------------------------------------------------------

// Broadcaster tracks one push channel per connected user and delivers the
// latest simulated time after each tick. The registry is guarded by a single
// coarse lock; cardinality is one entry per connected user.
type Broadcaster struct {
	Logger *logger.Logger

	mu    sync.Mutex
	conns map[uuid.UUID]*Client
}

// -----------------------------------------------------------------------------

func NewBroadcaster(log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		Logger: log,
		conns:  make(map[uuid.UUID]*Client),
	}
}

// -----------------------------------------------------------------------------

// Connect registers the channel for the user. A later connection silently
// supersedes an earlier one: the old client stops receiving updates but its
// socket is left to wind down on its own.
func (b *Broadcaster) Connect(userID uuid.UUID, client *Client) {
	b.mu.Lock()
	b.conns[userID] = client
	b.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Disconnect removes the registration and closes its channel. Safe to call
// when no channel is registered. The close happens under the registry lock:
// send channels are only ever closed while holding b.mu, so Notify's locked
// send can never hit a closed channel.
func (b *Broadcaster) Disconnect(userID uuid.UUID) {
	b.mu.Lock()
	if client, ok := b.conns[userID]; ok {
		delete(b.conns, userID)
		client.closeSend()
	}
	b.mu.Unlock()
}

// -----------------------------------------------------------------------------

// dropClient removes the registration only if client is still the current
// one, so a dying superseded connection cannot evict its replacement.
func (b *Broadcaster) dropClient(userID uuid.UUID, client *Client) {
	b.mu.Lock()
	if b.conns[userID] == client {
		delete(b.conns, userID)
		client.closeSend()
	}
	b.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Notify delivers the new simulated time to the user's channel, if one is
// registered. The non-blocking send runs under the registry lock, mutually
// exclusive with the channel close in Disconnect/dropClient. A full send
// buffer means the consumer is dead or too slow; that is treated as an
// implicit disconnect, never an error.
func (b *Broadcaster) Notify(userID uuid.UUID, simTime time.Time) {
	update := models.MSimTimeUpdate{SimTime: simTime.UTC().Format(time.RFC3339)}

	b.mu.Lock()
	client, ok := b.conns[userID]
	if !ok {
		b.mu.Unlock()
		return
	}

	select {
	case client.send <- update:
		b.mu.Unlock()
	default:
		delete(b.conns, userID)
		client.closeSend()
		b.mu.Unlock()
		b.Logger.Warning("Subscriber %s too slow, dropping connection", userID)
	}
}

// -----------------------------------------------------------------------------

// ConnectedCount reports the number of live subscriber channels.
func (b *Broadcaster) ConnectedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}
