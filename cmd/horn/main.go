// Command horn is the command-line interface to the hornlog engine:
// it loads clauses from theory files, YAML configuration, or a SQLite
// clause store, and answers queries against them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gitrdm/gohorn/pkg/hornlog/config"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "horn",
	Short: "A backward-chaining Horn clause engine",
	Long: `horn answers queries against a knowledge base of facts and rules.

Clauses use Prolog notation: father(abe, homer). is a fact and
parent(X, Y) :- father(X, Y). is a rule. Names starting with an
uppercase letter are variables. Queries are conjunctions of goals:

  horn ask --theory family.pl 'grandparent(G, bart)'

Ground queries answer YES or NO; queries with variables enumerate
bindings, one answer per line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		zapCfg := zap.NewProductionConfig()
		if verbose || cfg.Solver.Trace {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level proof tracing")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(clausesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
