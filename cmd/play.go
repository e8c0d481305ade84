package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"arena-service/pkg/arena"
	"arena-service/pkg/cards"
	"arena-service/pkg/render"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	damageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	healStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const playHelp = `commands:
  spawn <card> <x> <y>   drop a card into the arena
  click [id]             click a character, or empty space without an id
  dbl <id>               double-click: attack the nearest character
  rm <id>                right-click: dismiss a character
  attack | defend | heal HUD commands for the selected character
  state                  show the arena
  cards                  show the catalog
  render <file>          write a PNG snapshot
  quit`

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a local arena from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		policy, err := cfg.EffectPolicy()
		if err != nil {
			return err
		}

		out := &syncWriter{w: cmd.OutOrStdout()}
		renderer := render.NewRenderer(cfg.AssetsDir)
		game := arena.NewGame(cfg.Bounds(),
			arena.WithPresenter(arena.Fanout{renderer, eventPrinter{out}}),
			arena.WithEffectPolicy(policy),
		)
		r := &repl{out: out, game: game, catalog: catalog, renderer: renderer}
		return r.run(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

// syncWriter serializes writes from the prompt and from timer-driven events.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type eventPrinter struct {
	out io.Writer
}

func (p eventPrinter) Present(e arena.Event) {
	if line := formatEvent(e); line != "" {
		fmt.Fprintln(p.out, line)
	}
}

func formatEvent(e arena.Event) string {
	switch e.Kind {
	case arena.EventSpawned:
		if e.Entity == nil {
			return ""
		}
		return subtleStyle.Render(fmt.Sprintf("+ %s (%s) at %.0f,%.0f", e.Entity.Name, e.EntityID, e.Entity.Position.X, e.Entity.Position.Y))
	case arena.EventRemoved:
		return subtleStyle.Render(fmt.Sprintf("- %s removed", e.EntityID))
	case arena.EventHPChanged:
		return fmt.Sprintf("  %s hp %d/%d", e.EntityID, e.HP, e.MaxHP)
	case arena.EventCombatText:
		style := statusStyle
		switch {
		case strings.HasPrefix(e.Text, "-"):
			style = damageStyle
		case strings.HasPrefix(e.Text, "+"):
			style = healStyle
		}
		return fmt.Sprintf("  %s %s", e.EntityID, style.Render(e.Text))
	case arena.EventSelectionChanged:
		if e.EntityID == "" {
			return subtleStyle.Render("  selection cleared")
		}
		return selectedStyle.Render("  selected " + e.EntityID)
	case arena.EventStatusEffect:
		state := "ended"
		if e.Active {
			state = "active"
		}
		return statusStyle.Render(fmt.Sprintf("  %s %s %s", e.EntityID, e.Label, state))
	}
	// stats and HUD refreshes are visible through `state`
	return ""
}

type repl struct {
	out      io.Writer
	game     *arena.Game
	catalog  *cards.Catalog
	renderer *render.Renderer
}

func (r *repl) run(in io.Reader) error {
	fmt.Fprintln(r.out, subtleStyle.Render("type help for commands"))
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, promptStyle.Render("arena> "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := r.exec(fields[0], fields[1:]); err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
		}
	}
}

func (r *repl) exec(verb string, args []string) error {
	switch verb {
	case "help":
		fmt.Fprintln(r.out, playHelp)
		return nil
	case "spawn":
		if len(args) != 3 {
			return fmt.Errorf("usage: spawn <card> <x> <y>")
		}
		spec, err := r.catalog.Lookup(args[0])
		if err != nil {
			return err
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return fmt.Errorf("coordinates must be numbers")
		}
		return r.game.Dispatch(arena.Input{Kind: arena.InputSpawn, Spec: &spec, X: x, Y: y})
	case "click":
		in := arena.Input{Kind: arena.InputClick}
		if len(args) > 0 {
			in.EntityID = args[0]
		}
		return r.game.Dispatch(in)
	case "dbl":
		if len(args) != 1 {
			return fmt.Errorf("usage: dbl <id>")
		}
		return r.game.Dispatch(arena.Input{Kind: arena.InputDoubleClick, EntityID: args[0]})
	case "rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: rm <id>")
		}
		return r.game.Dispatch(arena.Input{Kind: arena.InputContextMenu, EntityID: args[0]})
	case "attack", "defend", "heal":
		if _, ok := r.game.Selected(); !ok {
			fmt.Fprintln(r.out, subtleStyle.Render("  nothing selected"))
			return nil
		}
		return r.game.Dispatch(arena.Input{Kind: arena.InputCommand, Command: arena.CommandKind(verb)})
	case "state":
		r.printState()
		return nil
	case "cards":
		return printCatalog(r.out, r.catalog)
	case "render":
		if len(args) != 1 {
			return fmt.Errorf("usage: render <file>")
		}
		buf, err := r.renderer.Render(r.game.Snapshot())
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], buf, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(r.out, subtleStyle.Render("  wrote "+args[0]))
		return nil
	}
	return fmt.Errorf("unknown command %q (try help)", verb)
}

func (r *repl) printState() {
	s := r.game.Snapshot()
	if len(s.Entities) == 0 {
		fmt.Fprintln(r.out, subtleStyle.Render("  arena is empty"))
		return
	}

	effects := map[string][]string{}
	for _, fx := range s.Effects {
		effects[fx.EntityID] = append(effects[fx.EntityID], fx.Label)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(subtleStyle).
		Headers("", "ID", "NAME", "HP", "ATK", "DEF", "POS", "STATUS")
	for _, e := range s.Entities {
		mark := ""
		if e.ID == s.Selected {
			mark = "*"
		}
		t.Row(mark, e.ID, e.Name,
			fmt.Sprintf("%d/%d", e.HP, e.MaxHP),
			strconv.Itoa(e.Atk), strconv.Itoa(e.Def),
			fmt.Sprintf("%.0f,%.0f", e.Position.X, e.Position.Y),
			strings.Join(effects[e.ID], " "))
	}
	fmt.Fprintln(r.out, t.Render())
}
