package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/base-tetris/internal/registry"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List registered engines",
	Long:  `Shows every engine the shell can mount.`,
	Args:  cobra.NoArgs,
	Run:   runEngines,
}

func runEngines(_ *cobra.Command, _ []string) {
	engines := registry.List()

	if len(engines) == 0 {
		fmt.Println("No engines available.")
		return
	}

	fmt.Println("Available engines:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, e := range engines {
		if len(e.ID) > maxIDLen {
			maxIDLen = len(e.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, e := range engines {
		fmt.Printf("  %-*s  %s\n", maxIDLen, e.ID, e.Title)
	}

	fmt.Println()
	fmt.Println("Run 'basetetris play --engine <id>' to play with an engine.")
}
