package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/pkg/graphio"
	"github.com/hferras/depsolve/pkg/mergeorder"
	"github.com/hferras/depsolve/pkg/priority"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var relax string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a dependency graph and report its shape",
		Long: `Check loads a graph from a manifest (.toml) or graph file (.json),
validates it, and reports packages, dependencies, leaves, roots and whether a
complete merge order exists.`,
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

			p := newProgress(c.Logger)
			leaves := g.LeafNodes(filter)
			roots := g.RootNodes(filter)
			plan := mergeorder.Compute(g, mergeorder.Standard())
			p.done(fmt.Sprintf("Checked %d packages", g.Len()))

			printSuccess("Loaded %s", args[0])
			printStats(g.Len(), len(graphio.FromGraph(g).Edges), false)
			printKeyValue("Leaves", formatNodes(leaves))
			printKeyValue("Roots", formatNodes(roots))

			if plan.Complete() {
				printSuccess("Merge order is complete")
				printNextStep("Show it", "depsolve order "+args[0])
				return nil
			}

			printWarning("%d packages are locked in hard cycles", len(plan.Unresolved))
			for _, cycle := range plan.Cycles {
				printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
			}
			printNextStep("Inspect them", "depsolve cycles "+args[0])
			return fmt.Errorf("%d unresolved packages", len(plan.Unresolved))
		},
	}

	cmd.Flags().StringVar(&relax, "relax", "", "ignore edges at or below this level (optional|soft|medium-soft|medium)")
	return cmd
}

func formatNodes(nodes []string) string {
	if len(nodes) == 0 {
		return "none"
	}
	if len(nodes) > 8 {
		return fmt.Sprintf("%s … (%d total)", strings.Join(nodes[:8], ", "), len(nodes))
	}
	return strings.Join(nodes, ", ")
}
