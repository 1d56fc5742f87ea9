package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TKDKid1000/tablecalc/formula"
	"github.com/TKDKid1000/tablecalc/grid"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [path] [output.json]",
	Short: "Save a CSV grid as a resumable JSON session snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(_ *cobra.Command, args []string) error {
	registry := formula.NewDefaultRegistry()
	g, err := grid.LoadDelim(args[0], registry, delimiterRune())
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	if err := grid.SaveSnapshot(args[1], g); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}
