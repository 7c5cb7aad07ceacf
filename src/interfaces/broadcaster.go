package interfaces

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// IBroadcaster is the push-delivery contract the tick scheduler writes to.
// Connection registration lives on the concrete type in the server package;
// the engine only ever notifies.
// -----------------------------------------------------------------------------

type IBroadcaster interface {

	// -----------------------------------------------------------------------------

	// Notify delivers the latest simulated time to the user's channel, if any.
	// Delivery failure is handled internally (implicit disconnect), never returned.
	Notify(userID uuid.UUID, simTime time.Time)

	// -----------------------------------------------------------------------------

	// ConnectedCount reports the number of live subscriber channels.
	ConnectedCount() int
}
