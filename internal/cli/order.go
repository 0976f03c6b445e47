package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/pkg/mergeorder"
)

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "order <file>",
		Short: "Compute a merge order for the graph",
		Long: `Order drains the graph leaf-first and prints the resulting batches. When no
leaf exists under the full edge set, progressively softer dependencies are
ignored until one appears; the relaxation level used is shown per batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				printError("Failed to load %s", args[0])
				return err
			}

			p := newProgress(c.Logger)
			plan := mergeorder.Compute(g, mergeorder.Standard())
			p.done(fmt.Sprintf("Ordered %d packages", len(plan.Order())))

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(plan)
			}

			for i, step := range plan.Steps {
				label := fmt.Sprintf("Step %d", i+1)
				if step.Relax != "none" {
					label += " " + StyleWarning.Render("(relax: "+step.Relax+")")
				}
				printInfo("%s", label)
				for _, node := range step.Nodes {
					printDetail("%s", node)
				}
			}

			if plan.Complete() {
				printSuccess("All %d packages ordered", len(plan.Order()))
				return nil
			}

			printWarning("%d packages could not be ordered", len(plan.Unresolved))
			for _, cycle := range plan.Cycles {
				printDetail("%s", strings.Join(cycle, " "+iconArrow+" "))
			}
			return fmt.Errorf("%d unresolved packages", len(plan.Unresolved))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the plan as JSON")
	return cmd
}
