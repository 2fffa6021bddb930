package escalation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teamthreads/storefront/order/internal/dal/interfaces/inotifier"
	"github.com/teamthreads/storefront/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/outbox"
	"github.com/teamthreads/storefront/order/pkg/logger/sl"
)

// FailedQueue carries order-failure events for downstream consumers.
const FailedQueue = "storefront.order.failed"

const maxPublishRetries = 5

// publisher is the subset of the message broker client the service needs.
type publisher interface {
	EnsureQueue(name string) error
	Publish(queue, contentType string, payload []byte) error
}

// failureEvent is the payload published for every escalated failure.
type failureEvent struct {
	ID         string          `json:"id"`
	OccurredAt time.Time       `json:"occurredAt"`
	Context    string          `json:"context"`
	Error      string          `json:"error"`
	Order      *order.Order    `json:"order,omitempty"`
	Snapshot   *order.Redacted `json:"snapshot,omitempty"`
}

// EscalationService is the guaranteed-delivery failure-reporting path: a
// durable audit record plus a notification a human operator can act on to
// complete the order manually. Record never propagates an error; a failure
// inside escalation is only logged.
type EscalationService struct {
	notifier      inotifier.INotifier
	publisher     publisher
	outboxRepo    ioutboxrepo.IOutboxRepository
	operatorEmail string
}

// option is a function that configures the EscalationService.
type option func(*EscalationService)

// MustNewEscalationService creates a new EscalationService. When a broker
// client is configured the failed queue is declared here, before anything
// can publish to it.
func MustNewEscalationService(opts ...option) *EscalationService {
	s := &EscalationService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher != nil {
		if err := s.publisher.EnsureQueue(FailedQueue); err != nil {
			panic(fmt.Sprintf("escalation: failed to declare queue %s: %v", FailedQueue, err))
		}
	}

	return s
}

// WithNotifier sets the notifier used for operator mail.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n inotifier.INotifier) option {
	return func(s *EscalationService) {
		s.notifier = n
	}
}

// WithPublisher sets the message broker client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p publisher) option {
	return func(s *EscalationService) {
		s.publisher = p
	}
}

// WithOutboxRepository sets the fallback store for undeliverable events.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutboxRepository(repo ioutboxrepo.IOutboxRepository) option {
	return func(s *EscalationService) {
		s.outboxRepo = repo
	}
}

// WithOperatorEmail sets the technical-operator address.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOperatorEmail(email string) option {
	return func(s *EscalationService) {
		s.operatorEmail = email
	}
}

// Record logs the failure with a redacted order snapshot, notifies the
// technical operator with the full payload, and publishes a failure event.
func (s *EscalationService) Record(ctx context.Context, failureContext string, cause error, o *order.Order) {
	snapshot := o.Redact()
	stack := string(debug.Stack())

	slog.Error("Order pipeline failure escalated",
		"context", failureContext,
		"error", cause,
		"stack", stack,
		"order", snapshot,
		sl.Traced(ctx),
	)

	event := failureEvent{
		ID:         uuid.NewString(),
		OccurredAt: time.Now(),
		Context:    failureContext,
		Error:      cause.Error(),
		Order:      o,
		Snapshot:   &snapshot,
	}

	// Escalation must not inherit a cancelled request context. The two
	// delivery paths are independent: a failing publish must not cancel
	// the operator mail, and vice versa, so no shared cancellation here.
	escCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var g errgroup.Group

	g.Go(func() error {
		return s.notifyOperator(escCtx, failureContext, cause, stack, o)
	})
	g.Go(func() error {
		return s.publishEvent(escCtx, event)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Escalation delivery incomplete", "context", failureContext, "error", err)
	}
}

func (s *EscalationService) notifyOperator(
	ctx context.Context,
	failureContext string,
	cause error,
	stack string,
	o *order.Order,
) error {
	if s.notifier == nil || s.operatorEmail == "" {
		return nil
	}

	payload, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		payload = []byte(fmt.Sprintf("marshal failed: %v", err))
	}

	subject := fmt.Sprintf("[ACTION REQUIRED] order pipeline failure: %s", failureContext)
	html := fmt.Sprintf(
		"<h2>Order pipeline failure</h2>"+
			"<p><b>Context:</b> %s</p>"+
			"<p><b>Error:</b> %s</p>"+
			"<p>The full order payload is below so the order can be completed manually.</p>"+
			"<pre>%s</pre><hr><pre>%s</pre>",
		failureContext, cause.Error(), string(payload), stack,
	)

	if err := s.notifier.Send(ctx, inotifier.Message{
		To:      s.operatorEmail,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("operator notification failed: %w", err)
	}

	return nil
}

// publishEvent publishes the failure event, parking it in the outbox when
// the broker is unavailable so the outbox worker can retry it.
func (s *EscalationService) publishEvent(ctx context.Context, event failureEvent) error {
	if s.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal failure event: %w", err)
	}

	if err := s.publisher.Publish(FailedQueue, "application/json", payload); err == nil {
		return nil
	} else if s.outboxRepo == nil {
		return fmt.Errorf("failed to publish failure event: %w", err)
	}

	now := time.Now()
	if err := s.outboxRepo.Insert(ctx, outbox.Message{
		Queue:       FailedQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  maxPublishRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}); err != nil {
		return fmt.Errorf("failed to park failure event in outbox: %w", err)
	}

	return nil
}
