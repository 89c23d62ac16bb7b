// Package main is the entry point for the map generator
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mapgen",
	Short: "NPC World map generator",
	Long:  `mapgen builds the same walled grid maps the API serves, for previewing seeds and exporting fixtures.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
