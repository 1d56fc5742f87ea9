package main

import (
	"fmt"
	"os"

	"github.com/TKDKid1000/tablecalc/cmd/tablecalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
