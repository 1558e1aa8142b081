package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/portion/pkg/quantity"
	"github.com/jmylchreest/portion/pkg/recipe"
)

var scaleCmd = &cobra.Command{
	Use:   "scale [ingredient...]",
	Short: "Scale ingredient lines without fetching a page",
	Long: `Scale ingredient lines by a recipe yield. Lines are read from the
arguments, or from stdin (one per line) when no arguments are given.

Examples:
  portion scale "2 cups flour" "1 1/2 cups milk" --yield 4
  # 1/2 cups flour
  # 3/8 cups milk

  portion scale --yield "12 muffins" --servings 3 --quantity-format decimal < ingredients.txt`,
	RunE: runScale,
}

func init() {
	rootCmd.AddCommand(scaleCmd)

	flags := scaleCmd.Flags()
	flags.String("yield", "1", "recipe yield; the first number is used (e.g. \"4\", \"12 muffins\")")
	flags.Int("servings", 1, "number of servings to scale to")
	flags.String("quantity-format", "fraction", "quantity format: fraction, decimal")
}

func runScale(cmd *cobra.Command, args []string) error {
	initLogger()

	yieldText, _ := cmd.Flags().GetString("yield")
	servings, _ := cmd.Flags().GetInt("servings")
	format, _ := cmd.Flags().GetString("quantity-format")

	if servings < 1 {
		return fmt.Errorf("servings must be at least 1, got %d", servings)
	}
	render, err := rendererFor(format)
	if err != nil {
		return err
	}

	lines := args
	if len(lines) == 0 {
		lines, err = readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	yield := recipe.ParseYield(yieldText)
	out := cmd.OutOrStdout()
	for _, raw := range lines {
		line := quantity.Split(raw).ScaleTo(yield, servings)
		if _, err := fmt.Fprintln(out, line.Format(render)); err != nil {
			return err
		}
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}
	return lines, nil
}
