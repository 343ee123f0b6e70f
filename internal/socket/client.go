package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/chatterm/internal/bus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxFrame    = 8 << 20 // image data URLs ride in frames
	sendBufSize = 64
	recvBufSize = 256
)

// ErrNotConnected is returned by Emit when there is no live connection.
var ErrNotConnected = errors.New("socket: not connected")

// Options configures a Client.
type Options struct {
	URL     string
	Cookies func() []*http.Cookie
	Bus     *bus.Bus
	Logger  *zap.Logger
	Dialer  *websocket.Dialer
}

// Client is a real-time channel connection. Incoming frames are dispatched,
// in arrival order, to handlers registered with On. The read pump blocks
// while the dispatcher is behind, so no frame is dropped. Connection changes
// are published on the bus.
type Client struct {
	opts   Options
	logger *zap.Logger
	bus    *bus.Bus

	mu       sync.RWMutex
	conn     *websocket.Conn
	send     chan Frame
	cancel   context.CancelFunc
	done     chan struct{}
	closing  bool
	handlers map[string]map[int]func(json.RawMessage)
	nextID   int

	frames       chan Frame
	dispatchOnce sync.Once
	stopDispatch chan struct{}
	dispatchDone chan struct{}
	stopOnce     sync.Once
}

// New creates a disconnected client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := opts.Bus
	if b == nil {
		b = bus.New()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Client{
		opts:         opts,
		logger:       logger,
		bus:          b,
		handlers:     make(map[string]map[int]func(json.RawMessage)),
		frames:       make(chan Frame, recvBufSize),
		stopDispatch: make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
}

// Connected reports whether a connection is live.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Connect dials the channel as userID. It is a no-op when already connected.
func (c *Client) Connect(ctx context.Context, userID string) error {
	c.startDispatch()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return fmt.Errorf("parse socket url: %w", err)
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if c.opts.Cookies != nil {
		req := &http.Request{Header: header}
		for _, ck := range c.opts.Cookies() {
			req.AddCookie(ck)
		}
	}

	conn, resp, err := c.opts.Dialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	conn.SetReadLimit(maxFrame)

	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c.conn = conn
	c.send = make(chan Frame, sendBufSize)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.closing = false

	go c.run(runCtx, conn, c.send, c.done)

	c.logger.Info("socket connected", zap.String("url", c.opts.URL))
	c.bus.Publish(bus.Event{Kind: KindConnected, Timestamp: time.Now()})
	return nil
}

func (c *Client) run(ctx context.Context, conn *websocket.Conn, send <-chan Frame, done chan struct{}) {
	defer close(done)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(gctx, conn) })
	g.Go(func() error { return c.writePump(gctx, conn, send) })
	err := g.Wait()

	c.mu.Lock()
	intentional := c.closing
	if c.conn == conn {
		c.conn = nil
		c.send = nil
	}
	c.mu.Unlock()

	if intentional {
		return
	}
	c.logger.Warn("socket disconnected", zap.Error(err))
	c.bus.Publish(bus.Event{Kind: KindDisconnected, Timestamp: time.Now(), Payload: err})
}

func (c *Client) readPump(ctx context.Context, conn *websocket.Conn) error {
	// Unblocks the writer when the peer goes away.
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if f.Event == "" {
			continue
		}
		select {
		case c.frames <- f:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) writePump(ctx context.Context, conn *websocket.Conn, send <-chan Frame) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case f := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				return fmt.Errorf("write %s: %w", f.Event, err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return ctx.Err()
		}
	}
}

// Emit queues an event for the server.
func (c *Client) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- Frame{Event: event, Data: raw}:
		return nil
	default:
		return fmt.Errorf("emit %s: send buffer full", event)
	}
}

// On registers fn for event. The returned func removes only this handler.
func (c *Client) On(event string, fn func(json.RawMessage)) func() {
	c.startDispatch()

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]func(json.RawMessage))
	}
	c.handlers[event][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.handlers[event], id)
		if len(c.handlers[event]) == 0 {
			delete(c.handlers, event)
		}
		c.mu.Unlock()
	}
}

// Off removes every handler for event.
func (c *Client) Off(event string) {
	c.mu.Lock()
	delete(c.handlers, event)
	c.mu.Unlock()
}

func (c *Client) listeners(event string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers[event])
}

func (c *Client) startDispatch() {
	c.dispatchOnce.Do(func() {
		go func() {
			defer close(c.dispatchDone)
			for {
				select {
				case f := <-c.frames:
					c.dispatch(f)
				case <-c.stopDispatch:
					return
				}
			}
		}()
	})
}

func (c *Client) dispatch(f Frame) {
	c.mu.RLock()
	fns := make([]func(json.RawMessage), 0, len(c.handlers[f.Event]))
	for _, fn := range c.handlers[f.Event] {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	if len(fns) == 0 {
		c.logger.Debug("no handler for frame", zap.String("event", f.Event))
	}
	for _, fn := range fns {
		fn(f.Data)
	}
}

// Disconnect closes the live connection, if any, and waits for its goroutines.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	if c.conn != nil {
		c.closing = true
	}
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close disconnects and stops event dispatch. Handlers stop firing and
// frames not yet dispatched are discarded.
func (c *Client) Close() {
	c.Disconnect()
	c.startDispatch()
	c.stopOnce.Do(func() {
		close(c.stopDispatch)
		<-c.dispatchDone
	})
}
