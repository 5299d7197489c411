package socket_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldbook/internal/service"
	"fieldbook/internal/socket"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	hub := socket.NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		registered <- hub.Register(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var id string
	select {
	case id = <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client was not registered")
	}
	assert.Equal(t, 1, hub.Len())

	hub.Publish(service.Event{Type: service.EventCreated, ID: "abc"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var got service.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, service.Event{Type: service.EventCreated, ID: "abc"}, got)

	hub.Unregister(id)
	hub.Unregister(id)
	assert.Zero(t, hub.Len())
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := socket.NewHub()
	hub.Broadcast([]byte(`{}`))
	assert.Zero(t, hub.Len())
}
