package client

import (
	"context"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// Listener maintains the realtime connection: dial with exponential
// backoff, full resync on every (re)connect, then stream events into the
// reconciliation store. Broadcast is best-effort server-side, so the
// resync, not event replay, is what restores anything missed while
// disconnected. While the socket cannot be established the Listener
// degrades to polling: each failed dial runs the replay-then-sync path
// over HTTP on the backoff cadence, so state keeps converging on
// networks that block websockets.
type Listener struct {
	WSBaseURL string
	Client    *Client

	// Dialer is swappable for tests.
	Dialer *websocket.Dialer
}

func NewListener(wsBaseURL string, c *Client) *Listener {
	return &Listener{
		WSBaseURL: wsBaseURL,
		Client:    c,
		Dialer:    websocket.DefaultDialer,
	}
}

// Run blocks until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0 // retry forever
	policy.MaxInterval = 30 * time.Second

	for {
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Polling substitute: the socket is down but HTTP may not
			// be, so drain the queue and refresh state each attempt.
			l.onConnect(ctx)
			wait := policy.NextBackOff()
			l.Client.Log.Debug("realtime dial failed, backing off", "wait", wait, "error", err)
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		policy.Reset()

		l.onConnect(ctx)
		l.consume(ctx, conn)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(l.WSBaseURL + "/ws")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", l.Client.Token)
	u.RawQuery = q.Encode()

	conn, _, err := l.Dialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

// onConnect runs the reconnect protocol: connectivity is back, so replay
// the offline queue first (its writes broadcast like any other), then
// load the authoritative state.
func (l *Listener) onConnect(ctx context.Context) {
	if err := l.Client.ReplayQueue(ctx); err != nil {
		l.Client.Log.Warn("offline replay incomplete", "error", err)
	}
	if err := l.Client.Sync(ctx); err != nil {
		l.Client.Log.Warn("full sync failed, state may be stale", "error", err)
	}
}

func (l *Listener) consume(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// The cancellation watcher must not outlive this connection or one
	// goroutine piles up per reconnect cycle.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			l.Client.Log.Info("realtime connection lost", "error", err)
			return
		}
		l.Client.State.Apply(msg)
	}
}
