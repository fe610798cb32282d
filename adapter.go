package statemodel

// ButtonTarget receives button edges from a driver. *Machine implements it;
// drivers hold it as a non-owning delivery reference.
type ButtonTarget interface {
	ButtonPressed(name string)
	ButtonReleased(name string)
}

// Button is the capability a button driver exposes to the machine. Concrete
// buttons live in the driver layer; the machine only composes their press and
// release event names and takes over event delivery.
type Button interface {
	// Name is the base name used to compose <name>_press and <name>_release.
	Name() string
	// SetDeliveryTarget points the driver's edge callbacks at the machine.
	// A nil target detaches the driver.
	SetDeliveryTarget(t ButtonTarget)
}

// TimerTarget receives timer expirations. *Machine implements it.
type TimerTarget interface {
	Timeout(name string)
}

// Timer is the capability a timer exposes to the machine. Registration adds
// the composed <name>_timeout event; Stop detaches the timer and cancels any
// pending expiration.
type Timer interface {
	Name() string
	// SetDeliveryTarget points the timer's expiry delivery at the machine.
	// A nil target detaches the timer.
	SetDeliveryTarget(t TimerTarget)
	// Cancel discards any pending expiration.
	Cancel()
}

// polledTimer is satisfied by timers the run loop polls once per tick.
type polledTimer interface {
	Check()
}
