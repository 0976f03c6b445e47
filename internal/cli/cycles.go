package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/pkg/priority"
)

// cyclesCommand creates the cycles command.
func (c *CLI) cyclesCommand() *cobra.Command {
	var (
		relax       string
		maxLength   int
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "cycles <file>",
		Short: "Enumerate dependency cycles",
		Long: `Cycles finds the shortest dependency cycles in a graph. Soft edges can be
ignored with --relax to see which cycles survive relaxation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				printError("Failed to load %s", args[0])
				return err
			}
			filter, err := priority.FilterByName(relax)
			if err != nil {
				return err
			}

			sp := newSpinner(cmd.Context(), "Searching for cycles")
			sp.Start()
			cycles := g.Cycles(filter, maxLength)
			sp.Stop()

			if len(cycles) == 0 {
				printSuccess("No cycles found")
				return nil
			}

			if interactive {
				return c.browseCycles(cycles)
			}

			printWarning("Found %d cycles", len(cycles))
			for _, cycle := range cycles {
				printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&relax, "relax", "", "ignore edges at or below this level (optional|soft|medium-soft|medium)")
	cmd.Flags().IntVar(&maxLength, "max-length", 0, "only report cycles up to this length (0 = unlimited)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse cycles in an interactive list")
	return cmd
}

// browseCycles runs the interactive cycle browser and prints the selection.
func (c *CLI) browseCycles(cycles [][]string) error {
	model := NewCycleListModel(cycles)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run cycle browser: %w", err)
	}

	m, ok := final.(CycleListModel)
	if !ok || len(m.Selected) == 0 {
		return nil
	}
	cycle := m.Selected[0]
	printInfo("Selected cycle (%d packages)", len(cycle))
	printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
	return nil
}
