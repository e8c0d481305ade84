package hub

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena-service/pkg/arena"
	"arena-service/pkg/cards"
	"arena-service/pkg/render"
)

var ErrSessionNotFound = errors.New("session not found")

// Options configure every session a Hub creates.
type Options struct {
	Bounds    arena.Bounds
	Policy    arena.EffectPolicy
	AssetsDir string
	Clock     arena.Clock
}

// Session is one arena with its presentation adapters attached.
type Session struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Game        *arena.Game
	Renderer    *render.Renderer
	Broadcaster *Broadcaster
}

// Hub owns the live sessions.
type Hub struct {
	opts    Options
	catalog *cards.Catalog

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(catalog *cards.Catalog, opts Options) *Hub {
	return &Hub{
		opts:     opts,
		catalog:  catalog,
		sessions: make(map[string]*Session),
	}
}

func (h *Hub) Catalog() *cards.Catalog { return h.catalog }

// Create starts a new empty arena.
func (h *Hub) Create() *Session {
	s := &Session{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		Renderer:    render.NewRenderer(h.opts.AssetsDir),
		Broadcaster: NewBroadcaster(),
	}
	s.Game = arena.NewGame(h.opts.Bounds,
		arena.WithPresenter(arena.Fanout{s.Renderer, s.Broadcaster}),
		arena.WithEffectPolicy(h.opts.Policy),
		arena.WithClock(h.opts.Clock),
	)

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	log.Printf("hub: session %s created (%vx%v, %s stacking)", s.ID, h.opts.Bounds.Width, h.opts.Bounds.Height, h.opts.Policy)
	return s
}

func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session and disconnects its watchers.
func (h *Hub) Delete(id string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	log.Printf("hub: session %s deleted", id)
	return nil
}

// List returns the sessions, oldest first.
func (h *Hub) List() []*Session {
	h.mu.RLock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.close()
		delete(h.sessions, id)
	}
}

func (s *Session) close() {
	s.Game.Close()
	s.Broadcaster.Close()
}

// validateInput rejects inline card specs the catalog would refuse. Every
// transport runs it before Dispatch.
func validateInput(in arena.Input) error {
	if in.Kind == arena.InputSpawn && in.Spec != nil {
		return cards.Validate(*in.Spec)
	}
	return nil
}
