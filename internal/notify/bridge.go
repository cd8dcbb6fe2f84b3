// Package notify keeps concurrent viewers of table state in sync.
// Table changes are published on a Redis channel; subscribers react
// by reloading their view.  The bridge is a best-effort cache
// invalidation signal only — any occupy/release/edit decision must
// be made against a fresh point read, never against a pushed copy.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// TablesChannel is the Redis pub/sub channel carrying table change
// signals.  The message body is the table ID, or "*" for a bulk
// change such as a layout edit.
const TablesChannel = "mesas.changed"

// DefaultPollInterval is the fallback reload cadence used when push
// notifications are unavailable or disabled.
const DefaultPollInterval = 30 * time.Second

// Bridge composes two independent signal sources — the Redis push
// feed and a poll timer — behind one refresh callback.  When the
// feed is missing (nil client), fails, or push is disabled (e.g.
// while staff edit the floor layout), the bridge degrades to polling
// at the configured interval.
type Bridge struct {
	rdb      *redis.Client // nil → polling only
	push     bool
	interval time.Duration
	refresh  func(ctx context.Context)
}

// NewBridge constructs a Bridge.  refresh is invoked on every push
// signal and on every poll tick; it must be safe to call from a
// single background goroutine.  rdb may be nil.
func NewBridge(rdb *redis.Client, pushEnabled bool, interval time.Duration, refresh func(ctx context.Context)) *Bridge {
	if refresh == nil {
		panic("nil refresh passed to notify.NewBridge")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Bridge{rdb: rdb, push: pushEnabled, interval: interval, refresh: refresh}
}

// Publish announces a table change to other viewers.  It is
// best-effort: failures are logged, never propagated, because the
// write that caused the change has already succeeded.
func (b *Bridge) Publish(ctx context.Context, tableID string) {
	if b.rdb == nil {
		return
	}
	if err := b.rdb.Publish(ctx, TablesChannel, tableID).Err(); err != nil {
		log.Printf("notify: publish failed: %v", err)
	}
}

// Run blocks until ctx is cancelled, invoking refresh on each
// signal.  It prefers the push feed and drops to polling when the
// feed is not usable, retrying the subscription after each polling
// interval.
func (b *Bridge) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if b.rdb == nil || !b.push {
			b.pollOnce(ctx)
			continue
		}
		if err := b.consumeFeed(ctx); err != nil && ctx.Err() == nil {
			log.Printf("notify: feed lost: %v; polling until resubscribe", err)
			b.pollOnce(ctx)
		}
	}
}

// consumeFeed subscribes to the tables channel and forwards each
// message to refresh.  Returns when the subscription breaks or the
// context is cancelled.
func (b *Bridge) consumeFeed(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, TablesChannel)
	defer func() { _ = sub.Close() }()
	// Force the subscribe round trip so a dead server is detected
	// here instead of on the first receive.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return context.Canceled
			}
			b.refresh(ctx)
		}
	}
}

// pollOnce waits one interval, then performs a full reload.  Used
// both as the pure fallback loop body and as the backoff between
// resubscribe attempts.
func (b *Bridge) pollOnce(ctx context.Context) {
	t := time.NewTimer(b.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
		b.refresh(ctx)
	}
}
