// Package wsbridge binds a WebSocket connection to a PumpRoom message
// router. It is the transport used when embedded frames talk to a Go host
// over a WebSocket instead of an in-process channel.
package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	pumproom "github.com/inzhenerka-cloud/pumproom-sdk-go"
)

const (
	defaultWriteTimeout = 10 * time.Second
	maxMessageSize      = 1 << 20
)

// Dispatcher consumes inbound frame messages. *pumproom.Router satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte, sender pumproom.Conn)
}

// Bridge pumps messages between one WebSocket connection and a Dispatcher.
// It implements pumproom.Conn for the outbound direction.
type Bridge struct {
	id         string
	conn       *websocket.Conn
	dispatcher Dispatcher
	logger     *logrus.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// New wraps conn. The caller keeps ownership of the underlying network
// connection until Run returns or Close is called.
func New(conn *websocket.Conn, dispatcher Dispatcher, logger *logrus.Logger) *Bridge {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Bridge{
		id:         uuid.NewString(),
		conn:       conn,
		dispatcher: dispatcher,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// ID returns the unique identifier of this bridge.
func (b *Bridge) ID() string {
	return b.id
}

// Run reads messages until the connection closes or ctx is canceled and feeds
// each one to the dispatcher with the bridge as sender. It blocks; run it on
// its own goroutine when the caller has other work. A normal peer close
// returns nil.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.Close()
	b.conn.SetReadLimit(maxMessageSize)

	go func() {
		select {
		case <-ctx.Done():
			b.Close()
		case <-b.done:
		}
	}()

	log := b.logger.WithField("bridge_id", b.id)
	log.Debug("Bridge started")

	for {
		messageType, data, err := b.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("Peer closed connection")
				return nil
			}
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			log.WithError(err).Debug("Bridge read failed")
			return err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		b.dispatcher.Dispatch(ctx, data, b)
	}
}

// Send implements pumproom.Conn. Writes are serialized; the context deadline
// bounds the write, falling back to a fixed timeout.
func (b *Bridge) Send(ctx context.Context, env pumproom.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	select {
	case <-b.done:
		return websocket.ErrCloseSent
	default:
	}

	if err := b.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the connection down. Safe to call multiple times.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		b.writeMu.Lock()
		deadline := time.Now().Add(time.Second)
		_ = b.conn.SetWriteDeadline(deadline)
		_ = b.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		b.writeMu.Unlock()
		err = b.conn.Close()
		b.logger.WithField("bridge_id", b.id).Debug("Bridge closed")
	})
	return err
}
