package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/gohorn/pkg/hornlog"
	"github.com/gitrdm/gohorn/pkg/hornlog/parse"
	"github.com/gitrdm/gohorn/pkg/hornlog/store"
	"github.com/gitrdm/gohorn/pkg/hornlog/store/sqlite"
)

var (
	askTheory  string
	askStore   string
	askWorkers int
	askLimit   int
	askAll     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Prove a query against the knowledge base",
	Long: `Proves a query and prints the results.

A query is a comma-separated conjunction of goals, with an optional
leading ?- and trailing period:

  horn ask --theory family.pl 'ancestor(A, bart)'
  horn ask --theory family.pl '?- parent(P, bart), parent(G, P).'

A ground query prints YES or NO. A query with variables prints one
line per answer, or NO ANSWERS when nothing satisfies it.

Clauses load in this order: the inline theory from --config, the
--theory file, then the clause store. Answer enumeration follows that
clause order.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askTheory, "theory", "t", "", "Theory file with period-terminated clauses")
	askCmd.Flags().StringVarP(&askStore, "store", "s", "", "SQLite clause store (defaults to store.path from --config)")
	askCmd.Flags().IntVarP(&askWorkers, "workers", "w", 0, "Concurrent branches per goal (default from --config; answers arrive unordered above 1)")
	askCmd.Flags().IntVarP(&askLimit, "max-answers", "n", 10, "Stop after this many answers")
	askCmd.Flags().BoolVarP(&askAll, "all", "a", false, "Enumerate every answer")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	goals, vars, err := parse.Query(args[0])
	if err != nil {
		return err
	}

	kb, err := assembleKnowledgeBase(ctx)
	if err != nil {
		return err
	}
	logger.Debug("knowledge base assembled", zap.Int("clauses", kb.Len()))

	workers := cfg.Solver.Workers
	if askWorkers > 0 {
		workers = askWorkers
	}
	solver := hornlog.NewSolver(kb, &hornlog.SolverConfig{
		Workers: workers,
		Logger:  logger,
	})

	if len(vars) == 0 {
		provable := false
		if len(goals) == 1 {
			provable = solver.Provable(ctx, goals[0])
		} else {
			provable = len(solver.AskConjunctionN(ctx, 1, goals...)) > 0
		}
		if provable {
			fmt.Println("YES.")
		} else {
			fmt.Println("NO.")
		}
		return nil
	}

	var subs []*hornlog.Substitution
	if askAll {
		subs = solver.AskConjunctionAll(ctx, goals...)
	} else {
		subs = solver.AskConjunctionN(ctx, askLimit, goals...)
	}

	if len(subs) == 0 {
		fmt.Println("NO ANSWERS.")
		return nil
	}
	for _, sub := range subs {
		fmt.Println(formatAnswer(sub, vars))
	}
	return nil
}

// formatAnswer renders one answer as "X = homer, Y = bart" with the
// query's variables in their source order.
func formatAnswer(sub *hornlog.Substitution, vars []*hornlog.Variable) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%s = %s", v.Name(), parse.FormatTerm(sub.Resolve(v)))
	}
	return strings.Join(parts, ", ")
}

// assembleKnowledgeBase merges every configured clause source: the
// inline config theory, the --theory file, and the clause store.
func assembleKnowledgeBase(ctx context.Context) (*hornlog.KnowledgeBase, error) {
	kb, err := cfg.BuildKnowledgeBase()
	if err != nil {
		return nil, err
	}

	if askTheory != "" {
		f, err := os.Open(askTheory)
		if err != nil {
			return nil, fmt.Errorf("opening theory %s: %w", askTheory, err)
		}
		clauses, err := parse.Program(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("theory %s: %w", askTheory, err)
		}
		if err := kb.AddClauses(clauses...); err != nil {
			return nil, err
		}
		logger.Debug("theory loaded",
			zap.String("path", askTheory),
			zap.Int("clauses", len(clauses)))
	}

	storePath := askStore
	if storePath == "" {
		storePath = cfg.Store.Path
	}
	if storePath != "" {
		st, err := sqlite.Open(ctx, storePath, logger)
		if err != nil {
			return nil, err
		}
		defer st.Close()

		stored, err := st.LoadAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := kb.AddClauses(stored...); err != nil {
			return nil, err
		}
		logger.Debug("store loaded",
			zap.String("path", storePath),
			zap.Int("clauses", len(stored)))
	}

	return kb, nil
}

// openConfiguredStore opens the SQLite store named by the flag or the
// configuration, for commands that require one.
func openConfiguredStore(ctx context.Context, flagPath string) (store.Store, string, error) {
	path := flagPath
	if path == "" {
		path = cfg.Store.Path
	}
	if path == "" {
		return nil, "", fmt.Errorf("no clause store configured; pass --store or set store.path in the config")
	}
	st, err := sqlite.Open(ctx, path, logger)
	if err != nil {
		return nil, "", err
	}
	return st, path, nil
}
