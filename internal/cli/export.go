package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hferras/depsolve/pkg/graphio"
	"github.com/hferras/depsolve/pkg/render"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		format string
		out    string
		labels bool
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a graph as JSON, DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				printError("Failed to load %s", args[0])
				return err
			}

			switch format {
			case "json":
				w := os.Stdout
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create output file: %w", err)
					}
					defer f.Close()
					w = f
				}
				if err := graphio.Write(w, g); err != nil {
					return err
				}

			case "dot":
				dot := render.ToDOT(g, render.Options{Labels: labels})
				if out == "" {
					fmt.Print(dot)
				} else if err := os.WriteFile(out, []byte(dot), 0o644); err != nil {
					return fmt.Errorf("write DOT file: %w", err)
				}

			case "svg":
				if out == "" {
					return fmt.Errorf("--out is required for SVG export")
				}
				dot := render.ToDOT(g, render.Options{Labels: labels})

				sp := newSpinner(cmd.Context(), "Rendering SVG")
				sp.Start()
				svg, err := render.SVG(cmd.Context(), dot)
				if err != nil {
					sp.StopWithError("Render failed")
					return err
				}
				sp.Stop()
				if err := os.WriteFile(out, svg, 0o644); err != nil {
					return fmt.Errorf("write SVG file: %w", err)
				}

			default:
				return fmt.Errorf("unknown format %q (want json, dot or svg)", format)
			}

			if out != "" {
				printSuccess("Exported %s", format)
				printFile(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, dot or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&labels, "labels", true, "label edges with their priority")
	return cmd
}
