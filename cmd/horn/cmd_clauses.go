package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	clausesStore  string
	clausesDelete string
	clausesClear  bool
)

var clausesCmd = &cobra.Command{
	Use:   "clauses",
	Short: "List or edit the stored clauses",
	Long: `Lists the clause store's records with their IDs, in the order the
solver will consult them. With --delete the named record is removed;
with --clear the store is emptied.`,
	Args: cobra.NoArgs,
	RunE: runClauses,
}

func init() {
	clausesCmd.Flags().StringVarP(&clausesStore, "store", "s", "", "SQLite clause store (defaults to store.path from --config)")
	clausesCmd.Flags().StringVar(&clausesDelete, "delete", "", "Delete the record with this ID")
	clausesCmd.Flags().BoolVar(&clausesClear, "clear", false, "Delete every record")
}

func runClauses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, storePath, err := openConfiguredStore(ctx, clausesStore)
	if err != nil {
		return err
	}
	defer st.Close()

	if clausesClear {
		if err := st.Clear(ctx); err != nil {
			return err
		}
		fmt.Printf("Cleared %s.\n", storePath)
		return nil
	}

	if clausesDelete != "" {
		if err := st.Delete(ctx, clausesDelete); err != nil {
			return err
		}
		fmt.Printf("Deleted %s.\n", clausesDelete)
		return nil
	}

	records, err := st.Records(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("The store is empty.")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %s\n", rec.ID, rec.Text)
	}
	return nil
}
