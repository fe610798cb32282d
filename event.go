package statemodel

import (
	"time"

	"github.com/google/uuid"
)

// Event names an occurrence the machine may act upon: a button edge, a timer
// expiry, or a custom condition detected by the application. Names are opaque
// and case-sensitive, and unique across the whole machine.
type Event string

// NoEvent is the reserved event used for unconditional transitions. It is
// always registered, is processed once per run-loop tick, and is the event
// reported to the handler by Start and Stop.
const NoEvent Event = "no_event"

// PressEvent composes the press event name for a button.
func PressEvent(name string) Event { return Event(name + "_press") }

// ReleaseEvent composes the release event name for a button.
func ReleaseEvent(name string) Event { return Event(name + "_release") }

// TimeoutEvent composes the expiry event name for a timer.
func TimeoutEvent(name string) Event { return Event(name + "_timeout") }

// occurrence is one queued event delivery, stamped for tracing.
type occurrence struct {
	id    uuid.UUID
	event Event
	at    time.Time
}
