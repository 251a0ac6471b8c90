package realtime

import (
	"context"
	"errors"
	"log/slog"

	"labreserve-backend/internal/logger"
)

var ErrHubClosed = errors.New("realtime hub is closed")

// Subscription is a single-consumer stream of matching events. The channel
// is closed when the subscription is removed, when the hub stops, or when
// the consumer falls a full buffer behind.
type Subscription struct {
	filter Filter
	ch     chan ChangeEvent
}

func (s *Subscription) Events() <-chan ChangeEvent {
	return s.ch
}

func (s *Subscription) Filter() Filter {
	return s.filter
}

// Hub owns the subscriber set. All mutation happens on the Run goroutine.
type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	publish    chan ChangeEvent
	done       chan struct{}
	buffer     int
	subs       map[*Subscription]struct{}
	log        *slog.Logger
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		publish:    make(chan ChangeEvent),
		done:       make(chan struct{}),
		buffer:     buffer,
		subs:       make(map[*Subscription]struct{}),
		log:        logger.WithComponent("realtime_hub"),
	}
}

// Run dispatches until ctx is cancelled, then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for s := range h.subs {
			close(s.ch)
			delete(h.subs, s)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.register:
			h.subs[s] = struct{}{}
			h.log.Debug("Subscriber registered", "table", s.filter.Table, "subscribers", len(h.subs))
		case s := <-h.unregister:
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
		case ev := <-h.publish:
			for s := range h.subs {
				if !s.filter.Matches(ev) {
					continue
				}
				select {
				case s.ch <- ev:
				default:
					h.log.Warn("Dropping lagging subscriber", "table", s.filter.Table)
					delete(h.subs, s)
					close(s.ch)
				}
			}
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	s := &Subscription{filter: f, ch: make(chan ChangeEvent, h.buffer)}
	select {
	case h.register <- s:
		return s, nil
	case <-h.done:
		return nil, ErrHubClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe is safe to call more than once and after the hub stopped.
func (h *Hub) Unsubscribe(s *Subscription) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

func (h *Hub) Publish(ctx context.Context, ev ChangeEvent) error {
	select {
	case h.publish <- ev:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
