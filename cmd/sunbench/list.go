package main

import (
	"fmt"

	"sunbench/internal/benchmark"
	"sunbench/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured tests by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := benchmark.ParseIDs(config.Current().TestList())
			if err != nil {
				return err
			}
			results := benchmark.Build(ids)

			out := cmd.OutOrStdout()
			for _, category := range results.Categories() {
				tests := category.Tests()
				fmt.Fprintf(out, "%s %s\n",
					categoryStyle.Render(category.Name),
					countStyle.Render(fmt.Sprintf("(%d)", len(tests))))
				for _, test := range tests {
					fmt.Fprintf(out, "  %s\n", test.Name)
				}
			}
			fmt.Fprintf(out, "\n%d tests in %d categories\n", results.TestCount(), len(results.Categories()))
			return nil
		},
	}
}
