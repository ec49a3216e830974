package spectate

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/game"
	"github.com/pthm-cable/hexcraft/hex"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	waitFor(t, func() bool { return hub.Clients() > 0 })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for hub")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return msg
}

func TestHub_PublishReachesClient(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)

	ok, err := hub.Publish(TypeFrame, 42, map[string]int{"ships": 3})
	if err != nil || !ok {
		t.Fatalf("Publish = %v, %v", ok, err)
	}

	msg := readMessage(t, conn)
	if msg.Type != TypeFrame || msg.Tick != 42 {
		t.Errorf("got %+v", msg)
	}
	if p, _ := msg.Payload.(map[string]any); p["ships"] != float64(3) {
		t.Errorf("payload = %v", msg.Payload)
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)

	conn.Close()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}

func TestHub_PublishRejectsBadPayload(t *testing.T) {
	hub := NewHub(nil)
	if _, err := hub.Publish(TypeFrame, 0, make(chan int)); err == nil {
		t.Error("expected an encoding error")
	}
}

func TestHub_DropsWhenBackedUp(t *testing.T) {
	hub := NewHub(nil) // Run never started, so nothing drains the queue
	for range broadcastBuffer {
		if ok, _ := hub.Publish(TypeFrame, 0, nil); !ok {
			t.Fatal("queue filled early")
		}
	}
	if ok, _ := hub.Publish(TypeFrame, 0, nil); ok {
		t.Error("expected the message to be dropped")
	}
	if hub.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", hub.Dropped())
	}
}

func TestNewFrame(t *testing.T) {
	ships := []game.ShipView{
		{
			ID:        1,
			Alignment: components.Friend,
			Pos:       components.Position{X: 10, Y: 20},
			Power:     cells.PowerReport{Demand: 4, Granted: 2},
			Cells: []components.CellView{
				{Pos: hex.Coord{}, Capability: components.CapCore, Health: 50, Alive: true, Connected: true},
				{Pos: hex.Coord{Q: 1}, Capability: components.CapWeapon, Alive: false},
			},
		},
		{ID: 2, Alignment: components.Foe},
	}

	f := NewFrame(ships)
	if f.Friends != 1 || f.Foes != 1 || len(f.Ships) != 2 {
		t.Fatalf("frame = %+v", f)
	}
	s := f.Ships[0]
	if s.X != 10 || s.Y != 20 || s.Satisfaction != 0.5 {
		t.Errorf("ship frame = %+v", s)
	}
	if len(s.Cells) != 2 || s.Cells[1].Q != 1 || s.Cells[1].Alive {
		t.Errorf("cells = %+v", s.Cells)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"capability":"Weapon"`) {
		t.Errorf("capability not encoded by name: %s", data)
	}
}

func TestBroadcaster_Observe(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	s, err := game.NewSkirmish(cfg, game.Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	hub, url := startHub(t)
	b := NewBroadcaster(hub, 2)

	// No spectators: nothing queued
	if err := b.Observe(s); err != nil {
		t.Fatal(err)
	}
	if len(hub.broadcast) != 0 {
		t.Fatal("published without spectators")
	}

	conn := dial(t, hub, url)
	s.Step() // tick 1 is skipped
	if err := b.Observe(s); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if err := b.Observe(s); err != nil {
		t.Fatal(err)
	}

	msg := readMessage(t, conn)
	if msg.Type != TypeFrame || msg.Tick != 2 {
		t.Errorf("expected the tick 2 frame, got %s at %d", msg.Type, msg.Tick)
	}
}
