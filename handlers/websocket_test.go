package handlers

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"rover-backend/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// startViewerServer serves the app on a loopback port with a running hub
// and returns the viewer websocket URL
func startViewerServer(t *testing.T, s *testServer) string {
	t.Helper()
	s.h.Sim.SetBroadcastFunc(s.h.Hub.BroadcastMessage)

	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan error, 1)
	go func() { hubDone <- s.h.Hub.Run(ctx) }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.app.Listener(ln) }()

	t.Cleanup(func() {
		cancel()
		<-hubDone
		_ = s.app.Shutdown()
	})
	return "ws://" + ln.Addr().String() + "/websocket/viewer"
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips frame broadcasts and other noise until a message of type
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) wireMessage {
	t.Helper()
	for i := 0; i < 50; i++ {
		if msg := readMessage(t, conn); msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message", msgType)
	return wireMessage{}
}

func sendCommand(t *testing.T, conn *websocket.Conn, cmd models.CommandData) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": models.MessageTypeCommand,
		"data": cmd,
	}))
}

func TestViewerWebSocket(t *testing.T) {
	s := newTestServer(t, obstacleLayout(), nil)
	url := startViewerServer(t, s)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, models.MessageTypeSystemInfo, readMessage(t, conn).Type)

	first := readMessage(t, conn)
	require.Equal(t, models.MessageTypeFrame, first.Type)
	var frame struct {
		State string `json:"state"`
		Draw  struct {
			Ops []json.RawMessage `json:"ops"`
		} `json:"draw"`
	}
	require.NoError(t, json.Unmarshal(first.Data, &frame))
	assert.Equal(t, "idle", frame.State)
	assert.NotEmpty(t, frame.Draw.Ops)

	require.Eventually(t, func() bool { return s.h.Hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	sendCommand(t, conn, models.CommandData{Action: models.ActionStart})
	ev := readUntil(t, conn, models.MessageTypeSimEvent)
	var simEvent models.SimEvent
	require.NoError(t, json.Unmarshal(ev.Data, &simEvent))
	assert.Equal(t, models.EventRunStarted, simEvent.Type)
	assert.Equal(t, models.StateMoving, s.h.Sim.Snapshot().State)

	sendCommand(t, conn, models.CommandData{Action: models.ActionPointerDown, X: 10, Y: 10})
	errMsg := readUntil(t, conn, models.MessageTypeError)
	assert.Contains(t, string(errMsg.Data), "edit mode")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	errMsg = readUntil(t, conn, models.MessageTypeError)
	assert.Contains(t, string(errMsg.Data), "invalid message")
}

func TestViewerReceivesBroadcastFrames(t *testing.T) {
	s := newTestServer(t, obstacleLayout(), nil)
	url := startViewerServer(t, s)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn) // system_info
	readMessage(t, conn) // initial frame
	require.Eventually(t, func() bool { return s.h.Hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.h.Sim.Step()
	msg := readUntil(t, conn, models.MessageTypeFrame)
	var frame models.FrameData
	require.NoError(t, json.Unmarshal(msg.Data, &frame))
	assert.Equal(t, uint64(1), frame.Frame)
}

func TestViewerDisconnectUnregisters(t *testing.T) {
	s := newTestServer(t, obstacleLayout(), nil)
	url := startViewerServer(t, s)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return s.h.Hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.h.Hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
