package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/config"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
)

var loadStore string

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load clauses from a file into the clause store",
	Long: `Reads clauses from a file and appends them to the SQLite clause
store, preserving their order.

A .yaml or .yml file is read as a configuration document and its
theory.clauses entries are loaded. Any other file is read as a theory
of period-terminated clauses:

  horn load --store family.db family.pl`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadStore, "store", "s", "", "SQLite clause store (defaults to store.path from --config)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	clauses, err := readClauses(path)
	if err != nil {
		return err
	}
	if len(clauses) == 0 {
		fmt.Println("No clauses found.")
		return nil
	}

	st, storePath, err := openConfiguredStore(ctx, loadStore)
	if err != nil {
		return err
	}
	defer st.Close()

	for i, clause := range clauses {
		id, err := st.SaveClause(ctx, clause)
		if err != nil {
			return fmt.Errorf("saving clause %d: %w", i, err)
		}
		logger.Debug("clause stored",
			zap.String("id", id),
			zap.Stringer("clause", clause))
	}

	fmt.Printf("Loaded %d clauses into %s.\n", len(clauses), storePath)
	return nil
}

// readClauses reads a theory or configuration file into clauses.
func readClauses(path string) ([]*hornlog.Clause, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		fileCfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		kb, err := fileCfg.BuildKnowledgeBase()
		if err != nil {
			return nil, err
		}
		return kb.Clauses(), nil
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		clauses, err := parse.Program(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return clauses, nil
	}
}
