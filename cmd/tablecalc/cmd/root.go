package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set by build flags; it has no bearing on the engine, only on
// the CLI's --version output.
var Version = "0.1.0-dev"

// config is the optional .tablecalc.yaml document: display defaults the
// flags can override. Flags always win (per SPEC_FULL.md's Configuration
// section).
type config struct {
	ASCII     bool   `yaml:"ascii"`
	Delimiter string `yaml:"delimiter"`
}

var (
	ascii     bool
	delimiter string
)

var rootCmd = &cobra.Command{
	Use:     "tablecalc",
	Short:   "A terminal spreadsheet formula engine",
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cfg := loadConfig(".tablecalc.yaml")

	rootCmd.PersistentFlags().BoolVar(&ascii, "ascii", cfg.ASCII, "use ASCII glyphs instead of box-drawing characters")
	rootCmd.PersistentFlags().StringVar(&delimiter, "delimiter", orDefault(cfg.Delimiter, ","), "CSV field delimiter")
}

func loadConfig(path string) config {
	raw, err := os.ReadFile(path)
	if err != nil {
		return config{}
	}
	var cfg config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return config{}
	}
	return cfg
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// delimiterRune resolves the --delimiter flag (or its .tablecalc.yaml
// default) to the single rune grid.LoadDelim/SaveDelim split on, falling
// back to a comma for anything that isn't exactly one rune wide.
func delimiterRune() rune {
	runes := []rune(delimiter)
	if len(runes) != 1 {
		return ','
	}
	return runes[0]
}
