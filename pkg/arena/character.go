package arena

// Character is a spawned combatant.
type Character struct {
	id    string
	name  string
	maxHP int
	hp    int
	atk   int
	def   int
	pos   Position
}

// NewCharacter creates a character at full health.
func NewCharacter(id string, spec CharacterSpec, pos Position) *Character {
	return &Character{
		id:    id,
		name:  spec.Name,
		maxHP: spec.HP,
		hp:    spec.HP,
		atk:   spec.Atk,
		def:   spec.Def,
		pos:   pos,
	}
}

func (c *Character) ID() string         { return c.id }
func (c *Character) Name() string       { return c.name }
func (c *Character) HP() int            { return c.hp }
func (c *Character) MaxHP() int         { return c.maxHP }
func (c *Character) Atk() int           { return c.atk }
func (c *Character) Def() int           { return c.def }
func (c *Character) Position() Position { return c.pos }
func (c *Character) Alive() bool        { return c.hp > 0 }

// Center is the midpoint of the token's footprint.
func (c *Character) Center() Position {
	return Position{X: c.pos.X + Footprint/2, Y: c.pos.Y + Footprint/2}
}

// TakeDamage applies amount reduced by defense and returns the damage dealt.
// Negative amounts count as zero.
func (c *Character) TakeDamage(amount int) int {
	dmg := max(0, amount-c.def)
	c.hp = max(0, c.hp-dmg)
	return dmg
}

// Heal restores hp up to maxHP. Negative amounts count as zero.
func (c *Character) Heal(amount int) {
	if amount < 0 {
		amount = 0
	}
	c.hp = min(c.maxHP, c.hp+amount)
}

func (c *Character) addStat(stat Stat, delta int) {
	switch stat {
	case StatDef:
		c.def += delta
	case StatAtk:
		c.atk += delta
	}
}

// EntityView is a copy of a character's state.
type EntityView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"maxHp"`
	Atk      int      `json:"atk"`
	Def      int      `json:"def"`
	Position Position `json:"position"`
}

func (c *Character) view() EntityView {
	return EntityView{
		ID:       c.id,
		Name:     c.name,
		HP:       c.hp,
		MaxHP:    c.maxHP,
		Atk:      c.atk,
		Def:      c.def,
		Position: c.pos,
	}
}
