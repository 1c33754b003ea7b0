// Package main provides the screen CLI, which runs the screening pipeline
// locally against files on disk.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screen",
	Short: "Résumé screening pipeline",
	Long:  "screen filters résumés by the experience a job description requires, ranks the survivors semantically and scores the shortlist with an LLM.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
