package bus

import "time"

// Event is a named occurrence published on the bus. Real-time channel
// frames are published with Kind set to the channel event name.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
