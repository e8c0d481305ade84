package hub

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"arena-service/pkg/arena"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsMsg is the envelope for everything sent over the socket.
type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan wsMsg
}

// Broadcaster fans game events out to websocket watchers. Present never
// blocks: a watcher whose buffer is full misses the event.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

// Present implements arena.Presenter.
func (b *Broadcaster) Present(e arena.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- wsMsg{Type: "event", Data: e}:
		default:
			log.Printf("ws: dropping %s event for slow client", e.Kind)
		}
	}
}

// Clients is the number of connected watchers.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *Broadcaster) add(conn *websocket.Conn, hello wsMsg) (*client, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false
	}
	c := &client{conn: conn, send: make(chan wsMsg, sendBuffer)}
	c.send <- hello
	b.clients[c] = struct{}{}
	return c, true
}

func (b *Broadcaster) remove(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

// Close disconnects every watcher.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
}

// serve runs one watcher until it disconnects. Inputs read from the socket
// are validated and dispatched to the game; replies and events share the
// send queue.
func (b *Broadcaster) serve(conn *websocket.Conn, game *arena.Game) {
	var (
		c  *client
		ok bool
	)
	// Registered under the game lock so nothing lands between the hello
	// snapshot and the first event.
	game.Observe(func(s arena.Snapshot) {
		c, ok = b.add(conn, wsMsg{Type: "snapshot", Data: s})
	})
	if !ok {
		conn.Close()
		return
	}

	go func() {
		for msg := range c.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws: write error: %v", err)
				break
			}
		}
		conn.Close()
	}()

	defer b.remove(c)
	for {
		var in arena.Input
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}
		if err := validateInput(in); err != nil {
			b.reply(c, wsMsg{Type: "error", Data: err.Error()})
			continue
		}
		if err := game.Dispatch(in); err != nil {
			b.reply(c, wsMsg{Type: "error", Data: err.Error()})
		}
	}
}

func (b *Broadcaster) reply(c *client, msg wsMsg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
