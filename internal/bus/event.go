package bus

import "time"

// Event is one protocol or domain event published on the bus. ID is assigned
// on publish when empty; Session scopes the payload to one account.
type Event struct {
	ID        string
	Kind      string
	Session   string
	Timestamp time.Time
	Payload   any
}
