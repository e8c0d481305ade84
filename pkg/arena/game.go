package arena

import (
	"fmt"
	"sync"
	"time"
)

// Option configures a Game.
type Option func(*Game)

// WithPresenter sets where events are delivered.
func WithPresenter(p Presenter) Option {
	return func(g *Game) {
		if p != nil {
			g.presenter = p
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(g *Game) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithEffectPolicy sets how repeated status effects combine.
func WithEffectPolicy(p EffectPolicy) Option {
	return func(g *Game) { g.policy = p }
}

// Game owns the live characters, the selection and combat resolution.
//
// All state changes happen under one mutex, including timer expiries, so
// the Game behaves like a single event loop. Events are emitted after the
// state change they describe and before the call returns.
type Game struct {
	mu        sync.Mutex
	bounds    Bounds
	entities  []*Character
	selected  *Character
	seq       uint64
	effectSeq uint64
	effects   []*activeEffect
	policy    EffectPolicy
	presenter Presenter
	clock     Clock
	handlers  map[InputKind]inputHandler
	closed    bool
}

func NewGame(bounds Bounds, opts ...Option) *Game {
	g := &Game{
		bounds:    bounds,
		presenter: discard{},
		clock:     SystemClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.handlers = g.dispatchTable()
	return g
}

func (g *Game) Bounds() Bounds { return g.bounds }

// Spawn clamps (x, y) into the arena and adds a new character.
func (g *Game) Spawn(spec CharacterSpec, x, y float64) EntityView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spawn(spec, x, y).view()
}

func (g *Game) spawn(spec CharacterSpec, x, y float64) *Character {
	g.seq++
	c := NewCharacter(fmt.Sprintf("%s-%d", spec.ID, g.seq), spec, g.bounds.Clamp(x, y))
	g.entities = append(g.entities, c)

	view := c.view()
	g.emit(Event{Kind: EventSpawned, EntityID: c.id, Entity: &view})
	return c
}

// Remove deletes a character. Unknown ids are ignored.
func (g *Game) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.find(id); c != nil {
		g.remove(c)
	}
}

func (g *Game) remove(c *Character) {
	idx := g.indexOf(c)
	if idx < 0 {
		return
	}
	g.entities = append(g.entities[:idx], g.entities[idx+1:]...)
	g.cancelEffects(c)
	g.emit(Event{Kind: EventRemoved, EntityID: c.id})

	if g.selected == c {
		g.selected = nil
		g.emit(Event{Kind: EventSelectionChanged})
		g.emitHUD()
	}
}

// Select toggles the selection on id. Unknown ids are ignored.
func (g *Game) Select(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.find(id); c != nil {
		g.selectEntity(c)
	}
}

func (g *Game) selectEntity(c *Character) {
	if g.selected == c {
		g.clearSelection()
		return
	}
	g.selected = c
	g.emit(Event{Kind: EventSelectionChanged, EntityID: c.id})
	g.emitHUD()
}

func (g *Game) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearSelection()
}

func (g *Game) clearSelection() {
	g.selected = nil
	g.emit(Event{Kind: EventSelectionChanged})
	g.emitHUD()
}

// Selected returns the selected character, if any.
func (g *Game) Selected() (EntityView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == nil {
		return EntityView{}, false
	}
	return g.selected.view(), true
}

// Entity looks up a live character.
func (g *Game) Entity(id string) (EntityView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.find(id)
	if c == nil {
		return EntityView{}, false
	}
	return c.view(), true
}

// Entities returns the live characters in spawn order.
func (g *Game) Entities() []EntityView {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]EntityView, 0, len(g.entities))
	for _, c := range g.entities {
		out = append(out, c.view())
	}
	return out
}

// FindNearest returns the character closest to id, measured between
// centers. Ties go to the earliest spawned.
func (g *Game) FindNearest(id string) (EntityView, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.find(id)
	if c == nil {
		return EntityView{}, false
	}
	best := g.findNearest(c)
	if best == nil {
		return EntityView{}, false
	}
	return best.view(), true
}

func (g *Game) findNearest(target *Character) *Character {
	var best *Character
	bestDist := 0.0
	tc := target.Center()
	for _, c := range g.entities {
		if c == target {
			continue
		}
		d := distance(tc, c.Center())
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// ResolveAttack makes attacker hit defender and reports the damage dealt.
// ok is false when either id is unknown.
func (g *Game) ResolveAttack(attackerID, defenderID string) (damage int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	attacker, defender := g.find(attackerID), g.find(defenderID)
	if attacker == nil || defender == nil {
		return 0, false
	}
	return g.resolveAttack(attacker, defender), true
}

func (g *Game) resolveAttack(attacker, defender *Character) int {
	dmg := defender.TakeDamage(attacker.atk)
	g.emit(Event{Kind: EventHPChanged, EntityID: defender.id, HP: defender.hp, MaxHP: defender.maxHP})
	g.combatText(defender, fmt.Sprintf("-%d", dmg))
	if defender.hp == 0 {
		g.remove(defender)
	}
	return dmg
}

func (g *Game) autoAttack(attacker *Character) bool {
	target := g.findNearest(attacker)
	if target == nil {
		return false
	}
	g.resolveAttack(attacker, target)
	return true
}

// Click handles a primary click. An empty id is a click on open arena space.
func (g *Game) Click(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.click(id)
}

func (g *Game) click(id string) {
	if id == "" {
		g.clearSelection()
		return
	}
	c := g.find(id)
	if c == nil {
		return
	}
	if g.selected != nil && g.selected != c {
		g.resolveAttack(g.selected, c)
		g.emitHUD()
		return
	}
	g.selectEntity(c)
}

// DoubleClick makes id attack its nearest neighbour.
func (g *Game) DoubleClick(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.find(id); c != nil {
		g.autoAttack(c)
	}
}

// ContextMenu dismisses id without combat.
func (g *Game) ContextMenu(id string) {
	g.Remove(id)
}

// CommandAttack makes the selected character attack its nearest neighbour.
func (g *Game) CommandAttack() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commandAttack()
}

func (g *Game) commandAttack() {
	if g.selected == nil {
		return
	}
	if g.autoAttack(g.selected) {
		g.emitHUD()
	}
}

// CommandDefend grants the selected character a temporary defense bonus.
func (g *Game) CommandDefend() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commandDefend()
}

func (g *Game) commandDefend() {
	who := g.selected
	if who == nil {
		return
	}
	label := fmt.Sprintf("DEF+%d", DefendBonus)
	g.applyEffect(who, label, StatDef, DefendBonus, DefendDuration*time.Millisecond)
	g.combatText(who, label)
	g.emitHUD()
}

// CommandHeal heals the selected character.
func (g *Game) CommandHeal() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commandHeal()
}

func (g *Game) commandHeal() {
	who := g.selected
	if who == nil {
		return
	}
	who.Heal(HealAmount)
	g.emit(Event{Kind: EventHPChanged, EntityID: who.id, HP: who.hp, MaxHP: who.maxHP})
	g.combatText(who, fmt.Sprintf("+%d", HealAmount))
	g.emitHUD()
}

// Snapshot is a point-in-time copy of the whole session.
type Snapshot struct {
	Bounds   Bounds       `json:"bounds"`
	Entities []EntityView `json:"entities"`
	Selected string       `json:"selected,omitempty"`
	Effects  []Effect     `json:"effects"`
	At       time.Time    `json:"at"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// Observe calls fn with a snapshot while holding the game lock. No event is
// emitted between the snapshot and fn returning, so a watcher registered in
// fn sees every later change exactly once. fn must not call back into g.
func (g *Game) Observe(fn func(Snapshot)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.snapshot())
}

// Close stops pending effect timers. Effects are dropped without reverting
// or emitting events; the game is expected to be discarded.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for _, fx := range g.effects {
		if fx.timer != nil {
			fx.timer.Stop()
		}
	}
	g.effects = nil
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		Bounds:   g.bounds,
		Entities: make([]EntityView, 0, len(g.entities)),
		Effects:  make([]Effect, 0, len(g.effects)),
		At:       g.clock.Now(),
	}
	for _, c := range g.entities {
		s.Entities = append(s.Entities, c.view())
	}
	if g.selected != nil {
		s.Selected = g.selected.id
	}
	for _, fx := range g.effects {
		s.Effects = append(s.Effects, fx.Effect)
	}
	return s
}

func (g *Game) find(id string) *Character {
	if id == "" {
		return nil
	}
	for _, c := range g.entities {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (g *Game) indexOf(c *Character) int {
	for i, e := range g.entities {
		if e == c {
			return i
		}
	}
	return -1
}

func (g *Game) emit(e Event) {
	e.At = g.clock.Now()
	g.presenter.Present(e)
}

func (g *Game) emitHUD() {
	e := Event{Kind: EventHUDChanged}
	if g.selected != nil {
		view := g.selected.view()
		e.EntityID = view.ID
		e.Entity = &view
	}
	g.emit(e)
}

func (g *Game) combatText(c *Character, text string) {
	g.emit(Event{Kind: EventCombatText, EntityID: c.id, Text: text, TTL: CombatTextTTL * time.Millisecond})
}
