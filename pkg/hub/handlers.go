package hub

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"arena-service/pkg/arena"
	"arena-service/pkg/cards"
)

// SpawnRequest drops a card at arena-local coordinates. Either CardID names
// a catalog card or Spec carries one inline.
type SpawnRequest struct {
	CardID string               `json:"cardId"`
	Spec   *arena.CharacterSpec `json:"spec"`
	X      float64              `json:"x"`
	Y      float64              `json:"y"`
}

// Register mounts the arena API on r.
func (h *Hub) Register(r gin.IRouter) {
	r.GET("/cards", h.ListCards)

	s := r.Group("/sessions")
	{
		s.GET("", h.ListSessions)
		s.POST("", h.CreateSession)
		s.GET("/:id", h.GetSession)
		s.DELETE("/:id", h.DeleteSession)
		s.POST("/:id/spawn", h.Spawn)
		s.POST("/:id/input", h.Input)
		s.GET("/:id/render", h.Render)
		s.GET("/:id/ws", h.Watch)
	}
}

func (h *Hub) ListCards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cards": h.catalog.All()})
}

func (h *Hub) ListSessions(c *gin.Context) {
	sessions := []gin.H{}
	for _, s := range h.List() {
		sessions = append(sessions, gin.H{
			"id":        s.ID,
			"createdAt": s.CreatedAt,
			"entities":  len(s.Game.Entities()),
			"watchers":  s.Broadcaster.Clients(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *Hub) CreateSession(c *gin.Context) {
	s := h.Create()
	c.JSON(http.StatusCreated, gin.H{"id": s.ID, "snapshot": s.Game.Snapshot()})
}

func (h *Hub) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Game.Snapshot())
}

func (h *Hub) DeleteSession(c *gin.Context) {
	if err := h.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Hub) Spawn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var spec arena.CharacterSpec
	switch {
	case req.Spec != nil:
		if err := cards.Validate(*req.Spec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		spec = *req.Spec
	case req.CardID != "":
		found, err := h.catalog.Lookup(req.CardID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		spec = found
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "cardId or spec required"})
		return
	}

	c.JSON(http.StatusCreated, s.Game.Spawn(spec, req.X, req.Y))
}

func (h *Hub) Input(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var in arena.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateInput(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Game.Dispatch(in); err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, arena.ErrUnknownInput) && !errors.Is(err, arena.ErrUnknownCommand) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.Game.Snapshot())
}

func (h *Hub) Render(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	buf, err := s.Renderer.Render(s.Game.Snapshot())
	if err != nil {
		log.Printf("render %s: %v", s.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render arena"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf)
}

func (h *Hub) Watch(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade %s: %v", s.ID, err)
		return
	}
	log.Printf("ws: watcher connected to %s from %s", s.ID, c.ClientIP())
	s.Broadcaster.serve(conn, s.Game)
}

func (h *Hub) session(c *gin.Context) (*Session, bool) {
	s, err := h.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}
