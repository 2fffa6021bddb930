package outbox

import (
	"time"
)

// Message is an escalation event that failed to be published to RabbitMQ
// and is parked for retry by the outbox worker.
type Message struct {
	ID          int64
	Queue       string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
