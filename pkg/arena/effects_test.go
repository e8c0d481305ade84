package arena

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defOf(t *testing.T, g *Game, id string) int {
	t.Helper()
	e, ok := g.Entity(id)
	require.True(t, ok, "entity %s not alive", id)
	return e.Def
}

func TestDefendRevertsAfterDuration(t *testing.T) {
	g, rec, clock := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)
	rec.reset()

	g.CommandDefend()
	assert.Equal(t, 10, defOf(t, g, w.ID))
	assert.Equal(t,
		[]EventKind{EventStatsChanged, EventStatusEffect, EventCombatText, EventHUDChanged},
		rec.kinds())
	status := rec.ofKind(EventStatusEffect)[0]
	assert.Equal(t, "DEF+5", status.Label)
	assert.True(t, status.Active)
	assert.Equal(t, 3*time.Second, status.TTL)

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, 10, defOf(t, g, w.ID))

	rec.reset()
	clock.Advance(time.Millisecond)
	assert.Equal(t, 5, defOf(t, g, w.ID))
	assert.Empty(t, g.Effects(w.ID))
	assert.Equal(t, []EventKind{EventStatsChanged, EventStatusEffect, EventHUDChanged}, rec.kinds())
	assert.False(t, rec.ofKind(EventStatusEffect)[0].Active)
}

func TestDefendStacksAdditively(t *testing.T) {
	g, _, clock := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)

	g.CommandDefend()
	clock.Advance(time.Second)
	g.CommandDefend()
	assert.Equal(t, 15, defOf(t, g, w.ID))
	assert.Len(t, g.Effects(w.ID), 2)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 10, defOf(t, g, w.ID))

	clock.Advance(time.Second)
	assert.Equal(t, 5, defOf(t, g, w.ID))
	assert.Empty(t, g.Effects(w.ID))
}

func TestDefendRefreshPolicyResetsDuration(t *testing.T) {
	g, rec, clock := newTestGame(WithEffectPolicy(StackRefresh))
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)

	g.CommandDefend()
	clock.Advance(2 * time.Second)
	rec.reset()
	g.CommandDefend()
	assert.Equal(t, 10, defOf(t, g, w.ID))
	assert.Empty(t, rec.ofKind(EventStatsChanged))
	require.Len(t, g.Effects(w.ID), 1)

	// The first timer would have fired here.
	clock.Advance(time.Second + time.Millisecond)
	assert.Equal(t, 10, defOf(t, g, w.ID))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 5, defOf(t, g, w.ID))
}

func TestDefendOnDeselectedEntityStillExpires(t *testing.T) {
	g, rec, clock := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)
	g.CommandDefend()
	g.ClearSelection()
	rec.reset()

	clock.Advance(3 * time.Second)
	assert.Equal(t, 5, defOf(t, g, w.ID))
	assert.Equal(t, []EventKind{EventStatsChanged, EventStatusEffect}, rec.kinds())
}

func TestRemovingEntityCancelsEffects(t *testing.T) {
	g, rec, clock := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 100, 0)
	g.Select(w.ID)
	g.CommandDefend()
	g.Select(a.ID)
	g.CommandDefend()

	g.Remove(w.ID)
	rec.reset()
	clock.Advance(3 * time.Second)

	assert.Equal(t, 3, defOf(t, g, a.ID))
	status := rec.ofKind(EventStatusEffect)
	require.Len(t, status, 1)
	assert.Equal(t, a.ID, status[0].EntityID)
	assert.Empty(t, g.Effects(w.ID))
}

func TestCloseStopsPendingEffects(t *testing.T) {
	g, rec, clock := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	g.Select(w.ID)
	g.CommandDefend()
	require.Len(t, g.Effects(w.ID), 1)

	g.Close()
	rec.reset()
	clock.Advance(5 * time.Second)

	assert.Empty(t, rec.events)
	assert.Empty(t, g.Effects(w.ID))
	assert.Equal(t, 10, defOf(t, g, w.ID))

	g.CommandDefend()
	assert.Empty(t, g.Effects(w.ID))
	assert.Empty(t, rec.ofKind(EventStatusEffect))
}

func TestDefendReducesIncomingDamage(t *testing.T) {
	g, _, _ := newTestGame()
	w := g.Spawn(warrior, 0, 0)
	a := g.Spawn(archer, 100, 0)

	g.Select(w.ID)
	g.CommandDefend()
	g.Select(a.ID)
	g.CommandAttack()

	got, _ := g.Entity(w.ID)
	assert.Equal(t, 85, got.HP)
}

func TestParseEffectPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    EffectPolicy
		wantErr bool
	}{
		{"", StackAdditive, false},
		{"additive", StackAdditive, false},
		{"Refresh", StackRefresh, false},
		{" reset ", StackRefresh, false},
		{"multiply", StackAdditive, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEffectPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, must(ParseEffectPolicy(got.String())))
		})
	}
}

func must(p EffectPolicy, err error) EffectPolicy {
	if err != nil {
		panic(err)
	}
	return p
}
