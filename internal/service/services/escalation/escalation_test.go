package escalation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamthreads/storefront/order/internal/dal/interfaces/inotifier"
	"github.com/teamthreads/storefront/order/internal/service/models/order"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
	"github.com/teamthreads/storefront/order/internal/service/models/outbox"
)

type fakeNotifier struct {
	sent    []inotifier.Message
	sendErr error
}

func (f *fakeNotifier) Send(_ context.Context, msg inotifier.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)

	return nil
}

type fakePublisher struct {
	declared   []string
	published  [][]byte
	queues     []string
	declareErr error
	err        error
}

func (f *fakePublisher) EnsureQueue(name string) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name)

	return nil
}

func (f *fakePublisher) Publish(queue, _ string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.queues = append(f.queues, queue)
	f.published = append(f.published, payload)

	return nil
}

// slowNotifier delivers only if its context is still alive after a delay,
// the way a real SMTP dial would notice cancellation.
type slowNotifier struct {
	sent []inotifier.Message
}

func (f *slowNotifier) Send(ctx context.Context, msg inotifier.Message) error {
	time.Sleep(50 * time.Millisecond)
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sent = append(f.sent, msg)

	return nil
}

type fakeOutbox struct {
	parked []outbox.Message
	err    error
}

func (f *fakeOutbox) Insert(_ context.Context, msg outbox.Message) error {
	if f.err != nil {
		return f.err
	}
	f.parked = append(f.parked, msg)

	return nil
}

func (f *fakeOutbox) GetPendingMessages(context.Context, int) ([]outbox.Message, error) {
	return nil, nil
}

func (f *fakeOutbox) Delete(context.Context, int64) error { return nil }

func (f *fakeOutbox) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

func failedOrder() *order.Order {
	return &order.Order{
		ContactInfo: order.ContactInfo{
			Email:     "jordan@example.com",
			FirstName: "Jordan",
			LastName:  "Smith",
			Phone:     "+1 555 0100",
		},
		Items:       []orderitem.OrderItem{{ProductID: "tee", Quantity: 2, TotalPrice: 23.00}},
		TotalAmount: 46.00,
		StoreSlug:   "phenoms",
		OrderNumber: "ORD-PROD-PHENOMS-20250810-000042",
	}
}

func TestRecordNotifiesOperatorAndPublishes(t *testing.T) {
	notifier := &fakeNotifier{}
	pub := &fakePublisher{}
	svc := MustNewEscalationService(
		WithNotifier(notifier),
		WithPublisher(pub),
		WithOperatorEmail("ops@example.com"),
	)

	svc.Record(context.Background(), "fulfillment", errors.New("deadlock detected"), failedOrder())

	require.Len(t, notifier.sent, 1)
	msg := notifier.sent[0]
	assert.Equal(t, "ops@example.com", msg.To)
	assert.Contains(t, msg.Subject, "ACTION REQUIRED")
	assert.Contains(t, msg.HTML, "deadlock detected")
	// The full payload must be in the mail so the order can be completed
	// manually.
	assert.Contains(t, msg.HTML, "jordan@example.com")
	assert.Contains(t, msg.HTML, "ORD-PROD-PHENOMS-20250810-000042")

	require.Len(t, pub.published, 1)
	assert.Equal(t, []string{FailedQueue}, pub.queues)

	var event failureEvent
	require.NoError(t, json.Unmarshal(pub.published[0], &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "fulfillment", event.Context)
	assert.Equal(t, "deadlock detected", event.Error)
	require.NotNil(t, event.Order)
	assert.Equal(t, "ORD-PROD-PHENOMS-20250810-000042", event.Order.OrderNumber)
}

func TestConstructorDeclaresFailedQueue(t *testing.T) {
	pub := &fakePublisher{}

	MustNewEscalationService(WithPublisher(pub))

	assert.Equal(t, []string{FailedQueue}, pub.declared)
}

func TestConstructorPanicsWhenQueueDeclareFails(t *testing.T) {
	assert.Panics(t, func() {
		MustNewEscalationService(WithPublisher(&fakePublisher{
			declareErr: errors.New("channel closed"),
		}))
	})
}

func TestRecordPublishFailureDoesNotCancelOperatorMail(t *testing.T) {
	// Correlated outage: the broker publish fails and there is no outbox to
	// park the event. The operator mail is an independent delivery path and
	// must still go out.
	notifier := &slowNotifier{}
	svc := MustNewEscalationService(
		WithNotifier(notifier),
		WithPublisher(&fakePublisher{err: errors.New("connection refused")}),
		WithOperatorEmail("ops@example.com"),
	)

	svc.Record(context.Background(), "fulfillment", errors.New("deadlock detected"), failedOrder())

	require.Len(t, notifier.sent, 1, "operator mail must still be attempted")
	assert.Equal(t, "ops@example.com", notifier.sent[0].To)
}

func TestRecordParksEventWhenBrokerDown(t *testing.T) {
	parked := &fakeOutbox{}
	svc := MustNewEscalationService(
		WithPublisher(&fakePublisher{err: errors.New("connection refused")}),
		WithOutboxRepository(parked),
	)

	svc.Record(context.Background(), "fulfillment", errors.New("smtp 421"), failedOrder())

	require.Len(t, parked.parked, 1)
	assert.Equal(t, FailedQueue, parked.parked[0].Queue)
	assert.Equal(t, "application/json", parked.parked[0].ContentType)
	assert.Equal(t, maxPublishRetries, parked.parked[0].MaxRetries)
}

func TestRecordSwallowsEveryDeliveryFailure(t *testing.T) {
	svc := MustNewEscalationService(
		WithNotifier(&fakeNotifier{sendErr: errors.New("smtp down")}),
		WithPublisher(&fakePublisher{err: errors.New("broker down")}),
		WithOutboxRepository(&fakeOutbox{err: errors.New("db down")}),
		WithOperatorEmail("ops@example.com"),
	)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), "fulfillment", errors.New("everything is on fire"), failedOrder())
	})
}

func TestRecordWithNoCollaborators(t *testing.T) {
	svc := MustNewEscalationService()

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), "fulfillment", errors.New("boom"), failedOrder())
	})
}
