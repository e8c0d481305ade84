package arena

import (
	"fmt"
	"strings"
	"time"
)

// Stat is a combat stat an effect can modify.
type Stat string

const (
	StatAtk Stat = "atk"
	StatDef Stat = "def"
)

// EffectPolicy decides what happens when an effect is applied to an entity
// that already carries an active effect with the same label.
type EffectPolicy int

const (
	// StackAdditive adds another independent effect with its own expiry.
	StackAdditive EffectPolicy = iota
	// StackRefresh restarts the existing effect's duration without adding magnitude.
	StackRefresh
)

func (p EffectPolicy) String() string {
	switch p {
	case StackRefresh:
		return "refresh"
	default:
		return "additive"
	}
}

// ParseEffectPolicy accepts "additive" or "refresh".
func ParseEffectPolicy(s string) (EffectPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "additive", "stack":
		return StackAdditive, nil
	case "refresh", "reset":
		return StackRefresh, nil
	}
	return StackAdditive, fmt.Errorf("unknown effect policy %q", s)
}

// Effect is a temporary stat modifier. Reverting subtracts Delta.
type Effect struct {
	ID       uint64        `json:"id"`
	EntityID string        `json:"entityId"`
	Label    string        `json:"label"`
	Stat     Stat          `json:"stat"`
	Delta    int           `json:"delta"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// Expires is when the effect reverts.
func (e Effect) Expires() time.Time { return e.Start.Add(e.Duration) }

type activeEffect struct {
	Effect
	target *Character
	timer  Timer
	gen    uint64
}

// applyEffect must be called with g.mu held.
func (g *Game) applyEffect(c *Character, label string, stat Stat, delta int, d time.Duration) {
	if g.closed {
		return
	}
	if g.policy == StackRefresh {
		if fx := g.findEffect(c, label); fx != nil {
			g.schedule(fx, d)
			g.emit(Event{Kind: EventStatusEffect, EntityID: c.id, Label: label, Active: true, TTL: d})
			return
		}
	}

	g.effectSeq++
	fx := &activeEffect{
		Effect: Effect{
			ID:       g.effectSeq,
			EntityID: c.id,
			Label:    label,
			Stat:     stat,
			Delta:    delta,
		},
		target: c,
	}
	c.addStat(stat, delta)
	g.effects = append(g.effects, fx)
	g.schedule(fx, d)

	view := c.view()
	g.emit(Event{Kind: EventStatsChanged, EntityID: c.id, Entity: &view})
	g.emit(Event{Kind: EventStatusEffect, EntityID: c.id, Label: label, Active: true, TTL: d})
}

func (g *Game) schedule(fx *activeEffect, d time.Duration) {
	if fx.timer != nil {
		fx.timer.Stop()
	}
	fx.gen++
	fx.Start = g.clock.Now()
	fx.Duration = d
	id, gen := fx.ID, fx.gen
	fx.timer = g.clock.AfterFunc(d, func() { g.expire(id, gen) })
}

// expire runs on the clock's goroutine.
func (g *Game) expire(id, gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := -1
	for i, fx := range g.effects {
		if fx.ID == id {
			idx = i
			break
		}
	}
	// Stale callbacks belong to a refreshed or cancelled effect.
	if idx < 0 || g.effects[idx].gen != gen {
		return
	}
	fx := g.effects[idx]
	g.effects = append(g.effects[:idx], g.effects[idx+1:]...)

	c := fx.target
	c.addStat(fx.Stat, -fx.Delta)
	view := c.view()
	g.emit(Event{Kind: EventStatsChanged, EntityID: c.id, Entity: &view})
	g.emit(Event{Kind: EventStatusEffect, EntityID: c.id, Label: fx.Label, Active: false})
	if g.selected == c {
		g.emitHUD()
	}
}

func (g *Game) findEffect(c *Character, label string) *activeEffect {
	for _, fx := range g.effects {
		if fx.target == c && fx.Label == label {
			return fx
		}
	}
	return nil
}

// cancelEffects drops every effect on c without reverting it.
func (g *Game) cancelEffects(c *Character) {
	kept := g.effects[:0]
	for _, fx := range g.effects {
		if fx.target == c {
			if fx.timer != nil {
				fx.timer.Stop()
			}
			continue
		}
		kept = append(kept, fx)
	}
	for i := len(kept); i < len(g.effects); i++ {
		g.effects[i] = nil
	}
	g.effects = kept
}

// Effects lists the active effects on an entity in application order.
func (g *Game) Effects(id string) []Effect {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Effect
	for _, fx := range g.effects {
		if fx.EntityID == id {
			out = append(out, fx.Effect)
		}
	}
	return out
}
