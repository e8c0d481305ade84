package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"arena-service/pkg/cards"
	"arena-service/pkg/config"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Card-spawned arena combat service",
	Long: `arena hosts a small arena game: cards spawn characters, and a selected
character can attack, defend or heal against its nearest opponent.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
}

func loadConfig() (config.Config, error) {
	return config.Load(envFile)
}

func loadCatalog(cfg config.Config) (*cards.Catalog, error) {
	return cards.Default(cfg.CardsFile)
}
