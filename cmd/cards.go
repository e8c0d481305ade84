package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"arena-service/pkg/cards"
)

var importURL string

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the card catalog",
	Long: `Lists the cards that can be dropped into the arena. With --import the
catalog is read from a web page instead of CARDS_FILE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			catalog *cards.Catalog
			err     error
		)
		if importURL != "" {
			catalog, err = cards.Fetch(cmd.Context(), importURL)
		} else {
			cfg, cfgErr := loadConfig()
			if cfgErr != nil {
				return cfgErr
			}
			catalog, err = loadCatalog(cfg)
		}
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), catalog)
	},
}

func init() {
	cardsCmd.Flags().StringVar(&importURL, "import", "", "import cards from an HTML page")
	rootCmd.AddCommand(cardsCmd)
}

func printCatalog(out io.Writer, catalog *cards.Catalog) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(subtleStyle).
		Headers("ID", "NAME", "HP", "ATK", "DEF")
	for _, c := range catalog.All() {
		t.Row(c.ID, c.Name, strconv.Itoa(c.HP), strconv.Itoa(c.Atk), strconv.Itoa(c.Def))
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}
