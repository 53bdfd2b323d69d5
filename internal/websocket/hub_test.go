package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialTestHub поднимает хаб с HTTP сервером и подключает клиента
func dialTestHub(t *testing.T) (*Hub, *websocket.Conn, context.CancelFunc) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		cancel()
		t.Fatalf("не удалось подключиться к хабу: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return hub, conn, cancel
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("число клиентов = %d, ожидалось %d", hub.ClientCount(), want)
}

func TestHubBroadcast(t *testing.T) {
	hub, conn, cancel := dialTestHub(t)
	defer cancel()

	waitForClients(t, hub, 1)

	hub.Broadcast("signal", map[string]string{"pair": "BTC/ETH"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("сообщение не получено: %v", err)
	}

	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("не удалось разобрать событие: %v", err)
	}
	if event.Type != "signal" {
		t.Errorf("тип события = %q, ожидалось signal", event.Type)
	}
	data, ok := event.Data.(map[string]interface{})
	if !ok || data["pair"] != "BTC/ETH" {
		t.Errorf("данные события = %v, ожидалась пара BTC/ETH", event.Data)
	}
	if event.Time.IsZero() {
		t.Error("событие должно нести временную метку")
	}
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub, conn, cancel := dialTestHub(t)
	defer cancel()

	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub, _, cancel := dialTestHub(t)

	waitForClients(t, hub, 1)

	cancel()
	waitForClients(t, hub, 0)
}

func TestHubBroadcastUnserializable(t *testing.T) {
	hub := NewHub()

	// не должно паниковать и не должно попасть в очередь
	hub.Broadcast("bad", func() {})

	select {
	case <-hub.broadcast:
		t.Error("несериализуемое событие не должно попадать в очередь")
	default:
	}
}
