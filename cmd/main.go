package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-analyzer",
	Short: "A CLI for managing the portfolio analyzer services",
	Long:  `Portfolio Analyzer scores stock holdings from technical, fundamental, news and legal signals...`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
