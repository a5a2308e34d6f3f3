package pumproom

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Conn is one side of a message channel to an embedded frame. Implementations
// must be safe for concurrent use; the wsbridge package adapts a WebSocket
// connection.
type Conn interface {
	// Send delivers one envelope to the peer.
	Send(ctx context.Context, env Envelope) error
}

// Router dispatches inbound frame messages and builds outbound ones. One
// router serves all frames of a client.
type Router struct {
	session    *session
	registry   *callbackRegistry
	dispatcher *dispatcher
	viewport   Viewport
	pageURL    string
	logger     *logrus.Logger
}

// Dispatch validates raw bytes and routes the message. Anything that fails
// validation, carries an unknown type or arrives without a needed sender
// produces no observable effect. Dispatch never returns an error: a message
// channel must survive arbitrary peer input.
func (r *Router) Dispatch(ctx context.Context, raw []byte, sender Conn) {
	msg := ParseMessage(raw, "")
	if msg == nil {
		return
	}

	switch msg.Type {
	case MessageGetEnvironment:
		r.handleGetEnvironment(ctx, msg, sender)
	case MessageGetUser:
		r.handleGetUser(ctx, sender)
	case MessageToggleFullscreen:
		r.handleToggleFullscreen(msg)
	case MessageTaskLoaded:
		if cb := r.registry.getOnTaskLoaded(); cb != nil {
			data := *msg.TaskLoaded
			r.dispatcher.submit("onTaskLoaded", func() { cb(data) })
		}
	case MessageTaskSubmitted:
		if cb := r.registry.getOnTaskSubmitted(); cb != nil {
			data := *msg.TaskSubmitted
			r.dispatcher.submit("onTaskSubmitted", func() { cb(data) })
		}
	case MessageResultReady:
		if cb := r.registry.getOnResultReady(); cb != nil {
			data := *msg.Result
			r.dispatcher.submit("onResultReady", func() { cb(data) })
		}
	default:
		// setEnvironment, setPumpRoomUser, setPrompt, getStatus and
		// reportStatus are outbound or frame-side types; inbound copies and
		// unknown types are ignored.
		r.logger.WithField("type", msg.Type).Debug("Ignoring message")
	}
}

// handleGetEnvironment registers the announcing frame, replies with the
// environment and fires the init callback.
func (r *Router) handleGetEnvironment(ctx context.Context, msg *Message, sender Conn) {
	instance := *msg.Instance
	r.session.registerInstance(instance)

	if sender != nil {
		if err := r.SendEnvironment(ctx, sender); err != nil {
			r.logger.WithError(err).Warn("Failed to send environment")
		}
	}

	if cb := r.registry.getOnInit(); cb != nil {
		r.dispatcher.submit("onInit", func() {
			cb(EnvironmentData{InstanceContext: instance})
		})
	}
}

// handleGetUser answers a user request, but only after authentication has
// completed and produced a user. Anything else is a silent no-op.
func (r *Router) handleGetUser(ctx context.Context, sender Conn) {
	if sender == nil || !r.session.isReady() {
		return
	}
	user := r.session.currentUser()
	if user == nil {
		return
	}
	if err := r.send(ctx, sender, MessageSetUser, user); err != nil {
		r.logger.WithError(err).Warn("Failed to send user")
	}
}

// handleToggleFullscreen restores the recorded scroll position when a frame
// leaves fullscreen mode. Entering fullscreen needs nothing from the host.
func (r *Router) handleToggleFullscreen(msg *Message) {
	if msg.Fullscreen.FullscreenState {
		return
	}
	r.viewport.ScrollTo(r.session.savedScroll())
}

// SendEnvironment pushes the hosting environment to a frame.
func (r *Router) SendEnvironment(ctx context.Context, conn Conn) error {
	return r.send(ctx, conn, MessageSetEnvironment, Environment{
		PageURL:    r.pageURL,
		SDKVersion: Version,
	})
}

// SendUser pushes the current user to a frame. It is a no-op before
// authentication completes.
func (r *Router) SendUser(ctx context.Context, conn Conn) error {
	if !r.session.isReady() {
		return nil
	}
	user := r.session.currentUser()
	if user == nil {
		return nil
	}
	return r.send(ctx, conn, MessageSetUser, user)
}

// SendPrompt pushes prompt content into a frame.
func (r *Router) SendPrompt(ctx context.Context, conn Conn, content string) error {
	return r.send(ctx, conn, MessageSetPrompt, PromptParameters{Content: content})
}

// RequestStatus asks a frame to report its task status. The frame answers
// with a reportStatus message on its own channel.
func (r *Router) RequestStatus(ctx context.Context, conn Conn) error {
	return r.send(ctx, conn, MessageGetStatus, nil)
}

func (r *Router) send(ctx context.Context, conn Conn, messageType MessageType, payload interface{}) error {
	env, err := NewEnvelope(messageType, payload)
	if err != nil {
		return err
	}
	return conn.Send(ctx, env)
}
