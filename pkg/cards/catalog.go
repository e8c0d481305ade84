package cards

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"arena-service/pkg/arena"
)

var (
	ErrDuplicateCard = errors.New("duplicate card id")
	ErrInvalidCard   = errors.New("invalid card")
	ErrCardNotFound  = errors.New("card not found")
)

// Builtin returns the starter deck shown in the cards panel.
func Builtin() []arena.CharacterSpec {
	return []arena.CharacterSpec{
		{ID: "c1", Name: "Warrior", HP: 100, Atk: 20, Def: 5},
		{ID: "c2", Name: "Archer", HP: 75, Atk: 25, Def: 3},
		{ID: "c3", Name: "Tank", HP: 150, Atk: 10, Def: 12},
	}
}

// Catalog is an ordered, id-indexed set of cards.
type Catalog struct {
	specs []arena.CharacterSpec
	byID  map[string]int
}

// New builds a catalog, rejecting invalid or duplicate cards.
func New(specs ...arena.CharacterSpec) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(specs))}
	for _, s := range specs {
		if err := c.add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) add(s arena.CharacterSpec) error {
	if err := Validate(s); err != nil {
		return err
	}
	if _, ok := c.byID[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, s.ID)
	}
	c.byID[s.ID] = len(c.specs)
	c.specs = append(c.specs, s)
	return nil
}

// Lookup finds a card by id.
func (c *Catalog) Lookup(id string) (arena.CharacterSpec, error) {
	i, ok := c.byID[id]
	if !ok {
		return arena.CharacterSpec{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return c.specs[i], nil
}

// All returns the cards in catalog order.
func (c *Catalog) All() []arena.CharacterSpec {
	out := make([]arena.CharacterSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

func (c *Catalog) Len() int { return len(c.specs) }

// Validate checks the stat ranges a card must satisfy.
func Validate(s arena.CharacterSpec) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidCard)
	case s.Name == "":
		return fmt.Errorf("%w: %s: missing name", ErrInvalidCard, s.ID)
	case s.HP <= 0:
		return fmt.Errorf("%w: %s: hp must be positive, got %d", ErrInvalidCard, s.ID, s.HP)
	case s.Atk < 0:
		return fmt.Errorf("%w: %s: atk must not be negative, got %d", ErrInvalidCard, s.ID, s.Atk)
	case s.Def < 0:
		return fmt.Errorf("%w: %s: def must not be negative, got %d", ErrInvalidCard, s.ID, s.Def)
	}
	return nil
}

type yamlCatalog struct {
	Cards []arena.CharacterSpec `yaml:"cards"`
}

// LoadYAML reads a catalog document of the form `cards: [{id, name, hp, atk, def}]`.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return New(doc.Cards...)
}

// LoadFile loads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadYAML(f)
}

// Default returns the catalog at path, or the builtin deck when path is empty.
func Default(path string) (*Catalog, error) {
	if path == "" {
		return New(Builtin()...)
	}
	return LoadFile(path)
}
