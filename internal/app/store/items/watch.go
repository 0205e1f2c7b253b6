package itemstore

import (
	"context"
	"sync"

	"github.com/campusfound/campusfound/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Subscription delivers full-collection snapshots of the items
// collection. Every snapshot replaces the previous one entirely; when
// changes arrive faster than the consumer reads, stale snapshots are
// dropped so the consumer only ever sees the newest state.
//
// Close must be called when the consuming view is torn down or the
// change stream leaks. It is safe to call more than once.
type Subscription struct {
	ch     chan []models.Item
	cancel context.CancelFunc
	once   sync.Once
}

// Snapshots returns the snapshot channel. It is closed when the
// subscription ends (Close, context cancellation, or a stream error).
func (sub *Subscription) Snapshots() <-chan []models.Item {
	return sub.ch
}

// Close disposes the subscription. Idempotent.
func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
}

// push replaces any pending snapshot with the given one.
func (sub *Subscription) push(items []models.Item) {
	for {
		select {
		case sub.ch <- items:
			return
		default:
			select {
			case <-sub.ch:
			default:
			}
		}
	}
}

// Watch opens a live subscription to the items collection. The current
// collection state is delivered as the first snapshot; afterwards
// every change event triggers a full re-read delivered as a replacing
// snapshot. The subscription lives until Close is called or ctx ends.
//
// Requires a deployment with change streams (replica set); standalone
// servers return an error here.
func (s *Store) Watch(ctx context.Context) (*Subscription, error) {
	stream, err := s.c.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ch:     make(chan []models.Item, 1),
		cancel: cancel,
	}

	initial, err := s.List(wctx)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, err
	}
	sub.push(initial)

	go func() {
		defer close(sub.ch)
		defer func() { _ = stream.Close(context.Background()) }()

		for stream.Next(wctx) {
			snapshot, err := s.List(wctx)
			if err != nil {
				return
			}
			sub.push(snapshot)
		}
	}()

	return sub, nil
}
