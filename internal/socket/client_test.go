package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/chatterm/internal/bus"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeServer accepts one connection, records received frames and lets the
// test push frames to the client.
type fakeServer struct {
	*httptest.Server
	query    chan string
	cookies  chan string
	received chan Frame
	push     chan Frame
	kill     chan struct{}
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		query:    make(chan string, 1),
		cookies:  make(chan string, 1),
		received: make(chan Frame, 16),
		push:     make(chan Frame, 16),
		kill:     make(chan struct{}),
	}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.query <- r.URL.Query().Get("userId")
		fs.cookies <- r.Header.Get("Cookie")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				var f Frame
				if err := conn.ReadJSON(&f); err != nil {
					return
				}
				fs.received <- f
			}
		}()
		for {
			select {
			case f := <-fs.push:
				if err := conn.WriteJSON(f); err != nil {
					return
				}
			case <-readDone:
				return
			case <-fs.kill:
				return
			}
		}
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http") + "/socket"
}

func connect(t *testing.T, fs *fakeServer, b *bus.Bus) *Client {
	t.Helper()
	c := New(Options{
		URL: fs.wsURL(),
		Bus: b,
		Cookies: func() []*http.Cookie {
			return []*http.Cookie{{Name: "jwt", Value: "token"}}
		},
	})
	if err := c.Connect(context.Background(), "u1"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestConnectSendsIdentity(t *testing.T) {
	fs := newFakeServer(t)
	c := connect(t, fs, nil)

	if got := <-fs.query; got != "u1" {
		t.Errorf("userId query = %q, want u1", got)
	}
	if got := <-fs.cookies; got != "jwt=token" {
		t.Errorf("Cookie header = %q, want jwt=token", got)
	}
	if !c.Connected() {
		t.Error("Connected() = false after Connect")
	}
}

func TestEmitReachesServer(t *testing.T) {
	fs := newFakeServer(t)
	c := connect(t, fs, nil)

	if err := c.Emit(EventTypingStart, map[string]string{"receiverId": "u2"}); err != nil {
		t.Fatal(err)
	}

	select {
	case f := <-fs.received:
		if f.Event != EventTypingStart {
			t.Errorf("event = %q, want %q", f.Event, EventTypingStart)
		}
		var body map[string]string
		if err := json.Unmarshal(f.Data, &body); err != nil {
			t.Fatal(err)
		}
		if body["receiverId"] != "u2" {
			t.Errorf("body = %v", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for emitted frame")
	}
}

func TestEmitWithoutConnection(t *testing.T) {
	c := New(Options{URL: "ws://127.0.0.1:1/socket"})
	defer c.Close()
	if err := c.Emit(EventJoinGroup, "g1"); err != ErrNotConnected {
		t.Errorf("Emit() error = %v, want ErrNotConnected", err)
	}
}

func TestOnDispatchesInOrderAndOffStops(t *testing.T) {
	fs := newFakeServer(t)
	c := connect(t, fs, nil)

	got := make(chan string, 8)
	c.On(EventUserTyping, func(raw json.RawMessage) { got <- "start:" + string(raw) })
	c.On(EventUserStopTyping, func(raw json.RawMessage) { got <- "stop:" + string(raw) })

	fs.push <- Frame{Event: EventUserTyping, Data: json.RawMessage(`"u2"`)}
	fs.push <- Frame{Event: EventUserStopTyping, Data: json.RawMessage(`"u2"`)}

	for _, want := range []string{`start:"u2"`, `stop:"u2"`} {
		select {
		case g := <-got:
			if g != want {
				t.Errorf("got %q, want %q", g, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}

	c.Off(EventUserTyping)
	if n := c.listeners(EventUserTyping); n != 0 {
		t.Errorf("listeners() after Off = %d, want 0", n)
	}
	fs.push <- Frame{Event: EventUserTyping, Data: json.RawMessage(`"u3"`)}
	fs.push <- Frame{Event: EventUserStopTyping, Data: json.RawMessage(`"u3"`)}

	select {
	case g := <-got:
		if g != `stop:"u3"` {
			t.Errorf("got %q after Off, want only the stop event", g)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for stop event")
	}
}

func TestOnReturnsScopedRemover(t *testing.T) {
	c := New(Options{URL: "ws://unused"})
	defer c.Close()

	off1 := c.On(EventNewMessage, func(json.RawMessage) {})
	c.On(EventNewMessage, func(json.RawMessage) {})
	if n := c.listeners(EventNewMessage); n != 2 {
		t.Fatalf("listeners() = %d, want 2", n)
	}
	off1()
	off1()
	if n := c.listeners(EventNewMessage); n != 1 {
		t.Errorf("listeners() after remover = %d, want 1", n)
	}
}

func TestServerCloseNotifiesDisconnect(t *testing.T) {
	fs := newFakeServer(t)
	b := bus.New()
	ch, unsub := b.SubscribeExact(KindDisconnected, 1)
	defer unsub()

	c := connect(t, fs, b)
	<-fs.query
	<-fs.cookies
	close(fs.kill)

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for disconnect event")
	}
	deadline := time.Now().Add(time.Second)
	for c.Connected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Connected() {
		t.Error("Connected() = true after server closed the connection")
	}
}

func TestDisconnectIsQuiet(t *testing.T) {
	fs := newFakeServer(t)
	b := bus.New()
	ch, unsub := b.SubscribeExact(KindDisconnected, 1)
	defer unsub()

	c := connect(t, fs, b)
	c.Disconnect()

	select {
	case evt := <-ch:
		t.Errorf("unexpected disconnect event after Disconnect: %v", evt)
	case <-time.After(100 * time.Millisecond):
	}
	if c.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
}

func TestGroupMessageEvent(t *testing.T) {
	if got := GroupMessageEvent("g1"); got != "group:g1:newMessage" {
		t.Errorf("GroupMessageEvent() = %q", got)
	}
}

func TestBurstIsNotDropped(t *testing.T) {
	fs := newFakeServer(t)
	c := connect(t, fs, nil)

	const total = 4 * recvBufSize
	gate := make(chan struct{})
	got := make(chan string, total)
	c.On(EventNewMessage, func(raw json.RawMessage) {
		<-gate
		got <- string(raw)
	})

	go func() {
		for i := 0; i < total; i++ {
			fs.push <- Frame{Event: EventNewMessage, Data: json.RawMessage(strconv.Itoa(i))}
		}
	}()
	// Let the backlog pile up behind the stuck handler.
	time.Sleep(100 * time.Millisecond)
	close(gate)

	for i := 0; i < total; i++ {
		select {
		case g := <-got:
			if g != strconv.Itoa(i) {
				t.Fatalf("frame %d = %s, want in-order delivery", i, g)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout after %d of %d frames", i, total)
		}
	}
}

func TestFramesBypassBus(t *testing.T) {
	fs := newFakeServer(t)
	b := bus.New()
	events, unsub := b.Subscribe("", 8)
	defer unsub()

	c := connect(t, fs, b)
	delivered := make(chan struct{}, 1)
	c.On(EventNewMessage, func(json.RawMessage) { delivered <- struct{}{} })
	fs.push <- Frame{Event: EventNewMessage, Data: json.RawMessage(`{}`)}

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
	if evt := <-events; evt.Kind != KindConnected {
		t.Errorf("first bus event = %q, want %q", evt.Kind, KindConnected)
	}
	select {
	case evt := <-events:
		t.Errorf("unexpected bus event %q", evt.Kind)
	default:
	}
}
