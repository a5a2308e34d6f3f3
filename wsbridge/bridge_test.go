package wsbridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pumproom "github.com/inzhenerka-cloud/pumproom-sdk-go"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	messages [][]byte
	received chan struct{}
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{received: make(chan struct{}, 16)}
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, raw []byte, sender pumproom.Conn) {
	d.mu.Lock()
	d.messages = append(d.messages, append([]byte(nil), raw...))
	d.mu.Unlock()
	d.received <- struct{}{}
}

func (d *recordingDispatcher) all() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.messages...)
}

// dialTestBridge upgrades an HTTP test server connection and returns the
// server-side bridge plus the client-side websocket.
func dialTestBridge(t *testing.T, dispatcher Dispatcher) (*Bridge, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	bridges := make(chan *Bridge, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		bridge := New(conn, dispatcher, nil)
		bridges <- bridge
		bridge.Run(context.Background())
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case bridge := <-bridges:
		t.Cleanup(func() { bridge.Close() })
		return bridge, client
	case <-time.After(2 * time.Second):
		t.Fatal("bridge was not created")
		return nil, nil
	}
}

func TestBridge_DispatchesInbound(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	_, client := dialTestBridge(t, dispatcher)

	raw := []byte(`{"service":"pumproom","type":"getStatus"}`)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, raw))

	select {
	case <-dispatcher.received:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not dispatched")
	}

	messages := dispatcher.all()
	require.Len(t, messages, 1)
	assert.JSONEq(t, string(raw), string(messages[0]))
}

func TestBridge_IgnoresBinaryFrames(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	_, client := dialTestBridge(t, dispatcher)

	require.NoError(t, client.WriteMessage(websocket.BinaryMessage, []byte{0x01}))
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"service":"pumproom","type":"getStatus"}`)))

	select {
	case <-dispatcher.received:
	case <-time.After(2 * time.Second):
		t.Fatal("text message was not dispatched")
	}
	assert.Len(t, dispatcher.all(), 1, "binary frames are dropped")
}

func TestBridge_Send(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	bridge, client := dialTestBridge(t, dispatcher)

	env, err := pumproom.NewEnvelope(pumproom.MessageSetPrompt, pumproom.PromptParameters{Content: "hello"})
	require.NoError(t, err)
	require.NoError(t, bridge.Send(context.Background(), env))

	messageType, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, messageType)

	var got pumproom.Envelope
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, pumproom.ServiceName, got.Service)
	assert.Equal(t, pumproom.MessageSetPrompt, got.Type)
}

func TestBridge_SendAfterClose(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	bridge, _ := dialTestBridge(t, dispatcher)

	require.NoError(t, bridge.Close())

	env, err := pumproom.NewEnvelope(pumproom.MessageGetStatus, nil)
	require.NoError(t, err)
	assert.Error(t, bridge.Send(context.Background(), env))
}

func TestBridge_ID(t *testing.T) {
	dispatcher := newRecordingDispatcher()
	a, _ := dialTestBridge(t, dispatcher)
	b, _ := dialTestBridge(t, dispatcher)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
