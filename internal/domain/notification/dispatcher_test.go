package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"
)

// blockingRepo is a Repository whose Create can be paused and which records
// every persisted notification.
type blockingRepo struct {
	mu      sync.Mutex
	created []Notification
	err     error
	gate    chan struct{} // when non-nil, Create waits for it to close
}

func (r *blockingRepo) Create(_ context.Context, n *Notification) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *blockingRepo) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.created...)
}

func (r *blockingRepo) List(_ context.Context, _ string, _ ListParams) ([]Notification, Page, error) {
	return nil, Page{}, nil
}

func (r *blockingRepo) MarkRead(_ context.Context, _, _ string) (*Notification, error) {
	return nil, ErrNotFound
}

func (r *blockingRepo) MarkAllRead(_ context.Context, _ string) (int, error) { return 0, nil }

func (r *blockingRepo) SoftDelete(_ context.Context, _, _ string) (*Notification, error) {
	return nil, ErrNotFound
}

var _ Repository = (*blockingRepo)(nil)

func newTestDispatcher(t *testing.T, repo Repository, cfg DispatcherConfig) *Dispatcher {
	t.Helper()
	return NewDispatcher(repo, zaptest.NewLogger(t), noop.NewMeterProvider().Meter("test"), cfg)
}

func TestDispatcherPersistsEvents(t *testing.T) {
	repo := &blockingRepo{}
	d := newTestDispatcher(t, repo, DispatcherConfig{})

	d.Publish(context.Background(), Event{
		Type:        EventOrderPlaced,
		RecipientID: "user-1",
		OrderID:     "order-1",
	})
	d.Publish(context.Background(), Event{
		Type:        EventProductApproved,
		RecipientID: "seller-1",
		ProductID:   "p1",
		ProductName: "Brass Lamp",
	})
	d.Close()

	created := repo.all()
	require.Len(t, created, 2)

	byRecipient := make(map[string]Notification, len(created))
	for _, n := range created {
		byRecipient[n.RecipientID] = n
		assert.NotEmpty(t, n.ID)
	}

	orderNote := byRecipient["user-1"]
	assert.Equal(t, "New order placed!", orderNote.Title)
	assert.Equal(t, "Order", orderNote.EntityType)
	assert.Equal(t, "order-1", orderNote.EntityID)

	productNote := byRecipient["seller-1"]
	assert.Equal(t, "Product approved!", productNote.Title)
	assert.Contains(t, productNote.Message, "Brass Lamp")
}

func TestDispatcherSwallowsPersistFailures(t *testing.T) {
	repo := &blockingRepo{err: errors.New("db down")}
	d := newTestDispatcher(t, repo, DispatcherConfig{})

	// Must neither panic nor block the producer.
	d.Publish(context.Background(), Event{Type: EventOrderPlaced, RecipientID: "user-1", OrderID: "o1"})
	d.Close()

	assert.Empty(t, repo.all())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	repo := &blockingRepo{gate: gate}
	d := newTestDispatcher(t, repo, DispatcherConfig{QueueSize: 1, Workers: 1})

	// Worker picks up the first event and blocks on the gate; the second
	// fills the queue; the third must be dropped without blocking.
	d.Publish(context.Background(), Event{Type: EventOrderPlaced, RecipientID: "u", OrderID: "o1"})
	time.Sleep(50 * time.Millisecond)
	d.Publish(context.Background(), Event{Type: EventOrderPlaced, RecipientID: "u", OrderID: "o2"})

	done := make(chan struct{})
	go func() {
		d.Publish(context.Background(), Event{Type: EventOrderPlaced, RecipientID: "u", OrderID: "o3"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	close(gate)
	d.Close()

	// At most the two queued events made it through.
	assert.LessOrEqual(t, len(repo.all()), 2)
}

func TestDispatcherIgnoresUnknownEventTypes(t *testing.T) {
	repo := &blockingRepo{}
	d := newTestDispatcher(t, repo, DispatcherConfig{})

	d.Publish(context.Background(), Event{Type: EventType("MYSTERY"), RecipientID: "user-1"})
	d.Close()

	assert.Empty(t, repo.all())
}

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		event      Event
		wantTitle  string
		wantEntity string
	}{
		{
			name:       "order placed",
			event:      Event{Type: EventOrderPlaced, RecipientID: "u", OrderID: "o1"},
			wantTitle:  "New order placed!",
			wantEntity: "Order",
		},
		{
			name:       "order updated carries the new status",
			event:      Event{Type: EventOrderUpdated, RecipientID: "u", OrderID: "o1", NewStatus: "shipped"},
			wantTitle:  "Order status updated!",
			wantEntity: "Order",
		},
		{
			name:       "new product",
			event:      Event{Type: EventNewProduct, RecipientID: "s", ProductID: "p1", ProductName: "Rug"},
			wantTitle:  "New product submitted!",
			wantEntity: "Product",
		},
		{
			name:       "product approved",
			event:      Event{Type: EventProductApproved, RecipientID: "s", ProductID: "p1", ProductName: "Rug"},
			wantTitle:  "Product approved!",
			wantEntity: "Product",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := render(tt.event)
			require.NotNil(t, n)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantEntity, n.EntityType)
			assert.Equal(t, tt.event.RecipientID, n.RecipientID)
		})
	}

	t.Run("unknown type renders nothing", func(t *testing.T) {
		assert.Nil(t, render(Event{Type: "NOPE"}))
	})

	t.Run("order updated message names the status", func(t *testing.T) {
		n := render(Event{Type: EventOrderUpdated, RecipientID: "u", OrderID: "o1", NewStatus: "shipped"})
		require.NotNil(t, n)
		assert.Contains(t, n.Message, "shipped")
	})
}
