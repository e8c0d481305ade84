package arena

import "time"

// EventKind names a notification the Game emits.
type EventKind string

const (
	EventSpawned          EventKind = "entity-spawned"
	EventRemoved          EventKind = "entity-removed"
	EventHPChanged        EventKind = "hp-changed"
	EventStatsChanged     EventKind = "stats-changed"
	EventSelectionChanged EventKind = "selection-changed"
	EventCombatText       EventKind = "combat-text"
	EventStatusEffect     EventKind = "status-effect"
	EventHUDChanged       EventKind = "hud-changed"
)

// Event is a single notification. Fields not relevant to Kind are zero.
type Event struct {
	Kind     EventKind     `json:"kind"`
	EntityID string        `json:"entityId,omitempty"`
	Entity   *EntityView   `json:"entity,omitempty"`
	HP       int           `json:"hp,omitempty"`
	MaxHP    int           `json:"maxHp,omitempty"`
	Text     string        `json:"text,omitempty"`
	Label    string        `json:"label,omitempty"`
	Active   bool          `json:"active,omitempty"`
	TTL      time.Duration `json:"ttl,omitempty"`
	At       time.Time     `json:"at"`
}

// Presenter receives events synchronously while the Game holds its lock.
// Implementations must not call back into the Game.
type Presenter interface {
	Present(Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Event)

func (f PresenterFunc) Present(e Event) { f(e) }

// Fanout delivers each event to every presenter in order.
type Fanout []Presenter

func (f Fanout) Present(e Event) {
	for _, p := range f {
		if p != nil {
			p.Present(e)
		}
	}
}

type discard struct{}

func (discard) Present(Event) {}
