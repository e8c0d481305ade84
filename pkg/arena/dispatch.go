package arena

import (
	"errors"
	"fmt"
)

// InputKind is a presentation-layer input event.
type InputKind string

const (
	InputSpawn       InputKind = "spawn"
	InputClick       InputKind = "click"
	InputDoubleClick InputKind = "dblclick"
	InputContextMenu InputKind = "contextmenu"
	InputCommand     InputKind = "command"
)

// CommandKind is a HUD button.
type CommandKind string

const (
	CommandAttack CommandKind = "attack"
	CommandDefend CommandKind = "defend"
	CommandHeal   CommandKind = "heal"
)

var (
	ErrUnknownInput   = errors.New("unknown input kind")
	ErrUnknownCommand = errors.New("unknown command")
)

// Input is one event delivered by a UI adapter.
type Input struct {
	Kind     InputKind      `json:"kind"`
	EntityID string         `json:"entityId,omitempty"`
	Command  CommandKind    `json:"command,omitempty"`
	Spec     *CharacterSpec `json:"spec,omitempty"`
	X        float64        `json:"x,omitempty"`
	Y        float64        `json:"y,omitempty"`
}

type inputHandler func(Input) error

func (g *Game) dispatchTable() map[InputKind]inputHandler {
	return map[InputKind]inputHandler{
		InputSpawn: func(in Input) error {
			if in.Spec == nil {
				return fmt.Errorf("spawn: missing spec")
			}
			g.spawn(*in.Spec, in.X, in.Y)
			return nil
		},
		InputClick: func(in Input) error {
			g.click(in.EntityID)
			return nil
		},
		InputDoubleClick: func(in Input) error {
			if c := g.find(in.EntityID); c != nil {
				g.autoAttack(c)
			}
			return nil
		},
		InputContextMenu: func(in Input) error {
			if c := g.find(in.EntityID); c != nil {
				g.remove(c)
			}
			return nil
		},
		InputCommand: g.dispatchCommand,
	}
}

func (g *Game) dispatchCommand(in Input) error {
	switch in.Command {
	case CommandAttack:
		g.commandAttack()
	case CommandDefend:
		g.commandDefend()
	case CommandHeal:
		g.commandHeal()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, in.Command)
	}
	return nil
}

// Dispatch routes an input event to the matching operation.
func (g *Game) Dispatch(in Input) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.handlers[in.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownInput, in.Kind)
	}
	return h(in)
}
