package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnClampsIntoBounds(t *testing.T) {
	g, rec, _ := newTestGame()

	tests := []struct {
		name string
		x, y float64
		want Position
	}{
		{"inside", 100, 200, Position{X: 100, Y: 200}},
		{"negative", -30, -1, Position{X: 0, Y: 0}},
		{"past right edge", 900, 10, Position{X: 740, Y: 10}},
		{"past bottom edge", 10, 499, Position{X: 10, Y: 440}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := g.Spawn(warrior, tt.x, tt.y)
			assert.Equal(t, tt.want, e.Position)
		})
	}
	assert.Len(t, rec.ofKind(EventSpawned), len(tests))
}

func TestSpawnInTinyArenaPinsToOrigin(t *testing.T) {
	g := NewGame(Bounds{Width: 30, Height: 30})
	e := g.Spawn(warrior, 20, 20)
	assert.Equal(t, Position{}, e.Position)
}

func TestSpawnAssignsDistinctIDs(t *testing.T) {
	g, _, _ := newTestGame()
	a := g.Spawn(warrior, 0, 0)
	b := g.Spawn(warrior, 0, 0)
	c := g.Spawn(archer, 0, 0)

	assert.Equal(t, "c1-1", a.ID)
	assert.Equal(t, "c1-2", b.ID)
	assert.Equal(t, "c2-3", c.ID)
	assert.Equal(t, 100, a.HP)
	assert.Equal(t, a.MaxHP, a.HP)
}

func TestRemoveClearsSelection(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 100, 0)

	g.Select(w.ID)
	rec.reset()
	g.Remove(w.ID)

	_, ok := g.Selected()
	assert.False(t, ok)
	assert.Equal(t, []EventKind{EventRemoved, EventSelectionChanged, EventHUDChanged}, rec.kinds())

	entities := g.Entities()
	require.Len(t, entities, 1)
	assert.Equal(t, a.ID, entities[0].ID)

	rec.reset()
	g.Remove(w.ID)
	g.Remove("missing")
	assert.Empty(t, rec.events)
}

func TestSelectToggles(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 100, 0)

	g.Select(w.ID)
	sel, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, w.ID, sel.ID)

	g.Select(a.ID)
	sel, _ = g.Selected()
	assert.Equal(t, a.ID, sel.ID)

	rec.reset()
	g.Select(a.ID)
	_, ok = g.Selected()
	assert.False(t, ok)
	require.NotEmpty(t, rec.events)
	assert.Equal(t, EventSelectionChanged, rec.events[0].Kind)
	assert.Empty(t, rec.events[0].EntityID)

	rec.reset()
	g.Select("nobody")
	assert.Empty(t, rec.events)
}

func TestFindNearest(t *testing.T) {
	g, _, _ := newTestGame()
	a := g.Spawn(CharacterSpec{ID: "a", HP: 10}, 0, 0)
	_ = g.Spawn(CharacterSpec{ID: "b", HP: 10}, 10, 0)
	c := g.Spawn(CharacterSpec{ID: "c", HP: 10}, 3, 0)

	got, ok := g.FindNearest(a.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)
}

func TestFindNearestTieGoesToFirstSpawned(t *testing.T) {
	g, _, _ := newTestGame()
	a := g.Spawn(CharacterSpec{ID: "a", HP: 10}, 100, 100)
	b := g.Spawn(CharacterSpec{ID: "b", HP: 10}, 110, 100)
	_ = g.Spawn(CharacterSpec{ID: "c", HP: 10}, 90, 100)

	got, ok := g.FindNearest(a.ID)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
}

func TestFindNearestAlone(t *testing.T) {
	g, _, _ := newTestGame()
	_, ok := g.FindNearest("nobody")
	assert.False(t, ok)

	a := g.Spawn(warrior, 0, 0)
	_, ok = g.FindNearest(a.ID)
	assert.False(t, ok)
}

func TestLethalAttackRemovesTarget(t *testing.T) {
	g, rec, _ := newTestGame()
	attacker := g.Spawn(CharacterSpec{ID: "hit", HP: 50, Atk: 15}, 0, 0)
	victim := g.Spawn(CharacterSpec{ID: "vic", HP: 10}, 100, 0)
	rec.reset()

	dmg, ok := g.ResolveAttack(attacker.ID, victim.ID)
	require.True(t, ok)
	assert.Equal(t, 15, dmg)

	_, alive := g.Entity(victim.ID)
	assert.False(t, alive)
	assert.Equal(t, []EventKind{EventHPChanged, EventCombatText, EventRemoved}, rec.kinds())
	assert.Equal(t, 0, rec.events[0].HP)
	assert.Equal(t, "-15", rec.events[1].Text)
}

func TestResolveAttackUnknownIDs(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	rec.reset()

	_, ok := g.ResolveAttack(w.ID, "ghost")
	assert.False(t, ok)
	_, ok = g.ResolveAttack("ghost", w.ID)
	assert.False(t, ok)
	assert.Empty(t, rec.events)
}

func TestCommandAttackScenario(t *testing.T) {
	g, _, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 200, 0)

	g.Select(w.ID)
	g.CommandAttack()
	got, _ := g.Entity(a.ID)
	assert.Equal(t, 58, got.HP)

	g.CommandAttack()
	got, _ = g.Entity(a.ID)
	assert.Equal(t, 41, got.HP)

	sel, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, w.ID, sel.ID)
}

func TestCommandsWithoutSelectionAreNoOps(t *testing.T) {
	g, rec, _ := newTestGame()
	g.Spawn(warrior, 0, 0)
	g.Spawn(archer, 100, 0)
	rec.reset()

	g.CommandAttack()
	g.CommandDefend()
	g.CommandHeal()
	assert.Empty(t, rec.events)
}

func TestCommandAttackWithoutTarget(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)
	rec.reset()

	g.CommandAttack()
	assert.Empty(t, rec.events)
}

func TestCommandHeal(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 50, 0)

	g.Select(a.ID)
	g.Click(w.ID) // archer hits warrior for 20
	got, _ := g.Entity(w.ID)
	require.Equal(t, 80, got.HP)

	g.Select(a.ID)
	g.Select(w.ID)
	rec.reset()
	g.CommandHeal()
	got, _ = g.Entity(w.ID)
	assert.Equal(t, 100, got.HP)
	assert.Equal(t, []EventKind{EventHPChanged, EventCombatText, EventHUDChanged}, rec.kinds())
	assert.Equal(t, "+20", rec.events[1].Text)

	g.CommandHeal()
	got, _ = g.Entity(w.ID)
	assert.Equal(t, 100, got.HP)
}

func TestClickSemantics(t *testing.T) {
	t.Run("selects when nothing selected", func(t *testing.T) {
		g, _, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		g.Click(w.ID)
		sel, ok := g.Selected()
		require.True(t, ok)
		assert.Equal(t, w.ID, sel.ID)
	})

	t.Run("attacks another entity and keeps selection", func(t *testing.T) {
		g, _, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		a := g.Spawn(archer, 300, 300)
		g.Click(w.ID)
		g.Click(a.ID)

		got, _ := g.Entity(a.ID)
		assert.Equal(t, 58, got.HP)
		sel, ok := g.Selected()
		require.True(t, ok)
		assert.Equal(t, w.ID, sel.ID)
	})

	t.Run("selection survives target death", func(t *testing.T) {
		g, _, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		weak := g.Spawn(CharacterSpec{ID: "weak", HP: 5}, 300, 300)
		g.Click(w.ID)
		g.Click(weak.ID)

		_, alive := g.Entity(weak.ID)
		assert.False(t, alive)
		sel, ok := g.Selected()
		require.True(t, ok)
		assert.Equal(t, w.ID, sel.ID)
	})

	t.Run("clicking selected toggles off", func(t *testing.T) {
		g, _, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		g.Click(w.ID)
		g.Click(w.ID)
		_, ok := g.Selected()
		assert.False(t, ok)
	})

	t.Run("empty space clears selection", func(t *testing.T) {
		g, _, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		g.Click(w.ID)
		g.Click("")
		_, ok := g.Selected()
		assert.False(t, ok)
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		g, rec, _ := newTestGame()
		w := g.Spawn(warrior, 0, 0)
		g.Click(w.ID)
		rec.reset()
		g.Click("ghost-9")
		assert.Empty(t, rec.events)
		_, ok := g.Selected()
		assert.True(t, ok)
	})
}

func TestDoubleClickAutoAttacksNearest(t *testing.T) {
	g, _, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	near := g.Spawn(archer, 70, 0)
	far := g.Spawn(tank, 400, 0)

	g.DoubleClick(w.ID)

	got, _ := g.Entity(near.ID)
	assert.Equal(t, 58, got.HP)
	got, _ = g.Entity(far.ID)
	assert.Equal(t, 150, got.HP)
	_, ok := g.Selected()
	assert.False(t, ok)
}

func TestContextMenuRemovesWithoutCombat(t *testing.T) {
	g, rec, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	rec.reset()

	g.ContextMenu(w.ID)
	assert.Equal(t, []EventKind{EventRemoved}, rec.kinds())
	assert.Empty(t, g.Entities())
}

func TestSnapshot(t *testing.T) {
	g, _, clock := newTestGame()
	w := g.Spawn(warrior, 10, 10)
	g.Spawn(archer, 100, 10)
	g.Select(w.ID)
	g.CommandDefend()

	s := g.Snapshot()
	assert.Equal(t, Bounds{Width: 800, Height: 500}, s.Bounds)
	assert.Equal(t, w.ID, s.Selected)
	require.Len(t, s.Entities, 2)
	assert.Equal(t, 10, s.Entities[0].Def)
	require.Len(t, s.Effects, 1)
	assert.Equal(t, clock.Now(), s.At)
}

func TestEventsAreTimestamped(t *testing.T) {
	g, rec, clock := newTestGame()
	g.Spawn(warrior, 0, 0)
	require.Len(t, rec.events, 1)
	assert.Equal(t, clock.Now(), rec.events[0].At)
}

func TestObserveHoldsTheLock(t *testing.T) {
	g, rec, _ := newTestGame()
	g.Spawn(warrior, 0, 0)
	rec.reset()

	var seen Snapshot
	g.Observe(func(s Snapshot) {
		seen = s
		assert.False(t, g.mu.TryLock())
	})

	require.Len(t, seen.Entities, 1)
	assert.Equal(t, "c1-1", seen.Entities[0].ID)
	assert.Empty(t, rec.events)
}
