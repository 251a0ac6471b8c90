package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"

	"labreserve-backend/internal/logger"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// PGListener LISTENs on a PostgreSQL channel and publishes every decoded
// notification into a Hub.
type PGListener struct {
	dsn       string
	channel   string
	hub       *Hub
	reconnect func(context.Context)
}

func NewPGListener(dsn, channel string, hub *Hub) *PGListener {
	return &PGListener{dsn: dsn, channel: channel, hub: hub}
}

// OnReconnect registers fn to run after the connection is re-established.
// Events raised while disconnected are lost, so fn should drop anything
// derived from them.
func (l *PGListener) OnReconnect(fn func(context.Context)) {
	l.reconnect = fn
}

// Run blocks until ctx is cancelled. pq reconnects on its own.
func (l *PGListener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, l.reportProblem)
	defer listener.Close()

	logger.ExternalServiceCall("postgres", "LISTEN", "channel", l.channel)
	err := listener.Listen(l.channel)
	logger.ExternalServiceResult("postgres", "LISTEN", err, "channel", l.channel)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if err := l.handle(ctx, n); errors.Is(err, ErrHubClosed) {
				return err
			}
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					logger.Warn("Change listener ping failed", "error", err)
				}
			}()
		}
	}
}

// handle dispatches one notification. pq delivers nil after a reconnect.
func (l *PGListener) handle(ctx context.Context, n *pq.Notification) error {
	if n == nil {
		logger.Warn("Change listener reconnected, events may have been missed", "channel", l.channel)
		if l.reconnect != nil {
			l.reconnect(ctx)
		}
		return nil
	}
	return l.dispatch(ctx, n.Extra)
}

func (l *PGListener) dispatch(ctx context.Context, payload string) error {
	ev, err := DecodeEvent(payload)
	if err != nil {
		logger.Warn("Skipping change notification", "channel", l.channel, "error", err)
		return err
	}
	return l.hub.Publish(ctx, ev)
}

func (l *PGListener) reportProblem(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventDisconnected:
		logger.Warn("Change listener disconnected", "error", err)
	case pq.ListenerEventConnectionAttemptFailed:
		logger.Warn("Change listener reconnect failed", "error", err)
	case pq.ListenerEventReconnected:
		logger.Info("Change listener reconnected")
	}
}
