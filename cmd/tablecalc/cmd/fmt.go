package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TKDKid1000/tablecalc/formula"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [formula]",
	Short: "Auto-close an unbalanced formula's parentheses",
	Long: `Run a formula through balance_parens, appending the minimum number
of closing parentheses needed to balance it, matching the auto-close
behavior of the original input widget this engine was factored out of.

Example:
  tablecalc fmt "=SUM(A1,(A2+A3"`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(_ *cobra.Command, args []string) error {
	fmt.Println(formula.BalanceParens(args[0]))
	return nil
}
