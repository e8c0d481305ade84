package arena

import "math"

const (
	// Footprint is the square size of a character token in arena units.
	Footprint = 60.0

	DefendBonus    = 5
	DefendDuration = 3000 // ms
	HealAmount     = 20

	// CombatTextTTL is how long floating combat text stays on screen.
	CombatTextTTL = 1200 // ms
)

// CharacterSpec is the immutable template a card carries.
type CharacterSpec struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	HP   int    `json:"hp" yaml:"hp"`
	Atk  int    `json:"atk" yaml:"atk"`
	Def  int    `json:"def" yaml:"def"`
}

// Position is the top-left corner of a token.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the arena size.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp keeps a token fully inside the bounds. Arenas smaller than the
// footprint pin tokens to the origin.
func (b Bounds) Clamp(x, y float64) Position {
	maxX := math.Max(0, b.Width-Footprint)
	maxY := math.Max(0, b.Height-Footprint)
	return Position{
		X: math.Max(0, math.Min(x, maxX)),
		Y: math.Max(0, math.Min(y, maxY)),
	}
}

func distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
