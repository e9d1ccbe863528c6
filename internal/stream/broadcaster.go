// Package stream pushes indexing lifecycle events to websocket subscribers.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dfryer1193/blogapi/api"
	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	clientBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan api.Event
}

// Broadcaster is an http.Handler that upgrades each request to a websocket and
// forwards every published event to it. Slow subscribers lose events rather
// than stall a rebuild.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The stream is public and read-only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan api.Event, clientBuffer)}
	if !b.add(c) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	log.Debug().Str("remote", r.RemoteAddr).Msg("Event stream subscriber connected")

	go c.writeLoop()
	b.readLoop(c)
}

// readLoop discards client messages; it exists to notice disconnects and answer pings.
func (b *Broadcaster) readLoop(c *client) {
	defer b.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Event stream subscriber dropped")
			}
			return
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (b *Broadcaster) add(c *client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.clients[c] = struct{}{}
	return true
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

// Subscribers is the number of connected clients.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) broadcast(evt api.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		select {
		case c.send <- evt:
		default:
			log.Warn().Str("type", evt.Type).Str("runID", evt.RunID).Msg("Dropping event for slow subscriber")
		}
	}
}

func (b *Broadcaster) OnIndexingStarted(ctx context.Context, evt domain.IndexingStarted) error {
	b.broadcast(api.Event{Type: "started", RunID: evt.RunID, Trigger: evt.Trigger, At: evt.At})
	return nil
}

func (b *Broadcaster) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	b.broadcast(api.Event{Type: "finished", RunID: evt.RunID, EntryCount: evt.Snapshot.Len(), At: evt.At})
	return nil
}

func (b *Broadcaster) OnIndexingFailed(ctx context.Context, evt domain.IndexingFailed) error {
	msg := ""
	if evt.Err != nil {
		msg = evt.Err.Error()
	}
	b.broadcast(api.Event{Type: "failed", RunID: evt.RunID, Error: msg, At: evt.At})
	return nil
}

// Close disconnects every subscriber and refuses new ones.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
	return nil
}
