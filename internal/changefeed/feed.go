package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// subscriptionBuffer is the per-subscriber channel depth. A subscriber
	// that falls further behind loses events; a dropped event is recovered
	// by the next full refetch, so losing one is never fatal.
	subscriptionBuffer = 16

	reconnectMinDelay = time.Second
	reconnectMaxDelay = 30 * time.Second
)

// Feed consumes pg_notify payloads on a dedicated connection and fans the
// decoded events out to subscribers. The listen loop reconnects with capped
// exponential backoff when the connection drops - a server-side consumer
// cannot lean on a page reload the way the browser client did.
type Feed struct {
	pool    *pgxpool.Pool
	channel string
	logger  *slog.Logger

	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewFeed creates a change feed listening on the given notification channel.
func NewFeed(pool *pgxpool.Pool, channel string, logger *slog.Logger) *Feed {
	return &Feed{
		pool:    pool,
		channel: channel,
		logger:  logger,
		subs:    make(map[uint64]*Subscription),
	}
}

// Subscription is one caller-owned handle onto the feed. Close detaches it;
// every consumer must close its subscription on every exit path, which the
// SSE handler ties to the request context.
type Subscription struct {
	id     uint64
	filter Filter
	ch     chan Event
	feed   *Feed
	once   sync.Once
}

// Events returns the subscription's event channel. The channel is closed
// when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the feed. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.feed.unsubscribe(s.id)
		close(s.ch)
	})
}

// Subscribe registers a new subscriber. A zero Filter receives every event.
func (f *Feed) Subscribe(filter Filter) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	sub := &Subscription{
		id:     f.nextID,
		filter: filter,
		ch:     make(chan Event, subscriptionBuffer),
		feed:   f,
	}
	f.subs[sub.id] = sub

	return sub
}

func (f *Feed) unsubscribe(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, id)
}

// Run drives the listen loop until the context is canceled. Returns nil on
// context cancellation, otherwise keeps reconnecting.
func (f *Feed) Run(ctx context.Context) error {
	delay := reconnectMinDelay
	for {
		err := f.listen(ctx)
		if ctx.Err() != nil {
			f.logger.Info("change feed stopped")
			return nil
		}

		f.logger.Warn("change feed connection lost, reconnecting",
			"channel", f.channel,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}

		delay *= 2
		if delay > reconnectMaxDelay {
			delay = reconnectMaxDelay
		}
	}
}

// listen holds one dedicated connection in LISTEN mode and dispatches
// payloads until the connection or context fails.
func (f *Feed) listen(ctx context.Context) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen on %s: %w", f.channel, err)
	}

	f.logger.Info("change feed listening", "channel", f.channel)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := DecodeEvent([]byte(notification.Payload))
		if err != nil {
			// A malformed payload is a trigger bug, not a reason to drop
			// the connection.
			f.logger.Warn("discarding malformed change payload", "error", err)
			continue
		}

		f.dispatch(event)
	}
}

// dispatch fans an event out to every matching subscriber. Sends never
// block: a full subscriber buffer drops the event for that subscriber only.
func (f *Feed) dispatch(event *Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.ch <- *event:
		default:
			f.logger.Debug("subscriber behind, dropping event",
				"subscription_id", sub.id,
				"document_id", event.DocumentID(),
			)
		}
	}
}
