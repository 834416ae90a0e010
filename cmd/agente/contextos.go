package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tecsup/agente/internal/agent"
)

var contextosCmd = &cobra.Command{
	Use:   "contextos",
	Short: "List the specialized contexts per product",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, producto := range []agent.Product{agent.ProductSalud, agent.ProductAcademico} {
			fmt.Fprintf(os.Stdout, "%s:\n", producto)
			for _, m := range agent.Modes(producto) {
				fmt.Fprintf(os.Stdout, "  %-22s %s\n", m, m.Description())
			}
		}
		return nil
	},
}
