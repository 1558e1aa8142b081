package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/portion/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list <recipes.db>",
	Short: "List recipes stored by the sqlite output",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("ingredients", false, "print each recipe's ingredients")
}

func runList(cmd *cobra.Command, args []string) error {
	initLogger()

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("recipe database: %w", err)
	}

	db, err := output.OpenSQLite(path, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	records, err := db.Records(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no recipes stored")
		return err
	}
	fmt.Fprintln(out, renderRecords(records))

	if show, _ := cmd.Flags().GetBool("ingredients"); show {
		for _, rec := range records {
			fmt.Fprintf(out, "\n%s (%s)\n", rec.DishName, rec.URL)
			for _, ing := range rec.Ingredients {
				fmt.Fprintf(out, "  - %s\n", strings.TrimSpace(ing))
			}
		}
	}
	return nil
}
