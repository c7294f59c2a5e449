package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathblocks/internal/config"
	"github.com/abhisek/mathblocks/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathblocks",
	Short: "Place-value and fraction blocks for the terminal",
	Long:  "MathBlocks: a terminal manipulatives board with guided lessons, free play and timed challenges.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides MATHBLOCKS_DB env var)")
	pf.String("config", "", "Path to config file (overrides MATHBLOCKS_CONFIG env var)")
	pf.String("locale", "", "Narration locale, e.g. en or hi")
	pf.String("narration", "", "Narration mode: off, caption or command")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHBLOCKS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the database named by resolveDBPath.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadSettings reads the config file and applies flag overrides.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fc, err := config.LoadConfig(path)
	if err != nil {
		return config.Settings{}, err
	}
	s, err := config.Resolve(fc)
	if err != nil {
		return config.Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	if v, _ := cmd.Flags().GetString("locale"); v != "" {
		s.Locale = v
	}
	if v, _ := cmd.Flags().GetString("narration"); v != "" {
		s.NarrationMode = v
		if err := s.Validate(); err != nil {
			return config.Settings{}, fmt.Errorf("--narration: %w", err)
		}
	}
	return s, nil
}
