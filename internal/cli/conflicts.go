package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/render/conflict"
)

// conflictsCommand creates the conflicts command, which draws the overlap
// graph of a window.
func (c *CLI) conflictsCommand() *cobra.Command {
	var (
		nav      navFlags
		format   string
		output   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts [items-file]",
		Short: "Draw which items of a window overlap",
		Long: `Draw which items of a window overlap.

Each visible item becomes a node coloured by its lane; an edge joins two
items whose clipped date ranges share at least one day. The deepest stack of
overlapping items equals the number of lanes the layout needs.

Output is Graphviz DOT (default) or SVG. Without -o, DOT is written to
stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be dot or svg)", format)
			}
			opts, err := c.options(nav)
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runConflicts(cmd.Context(), input, conflictsParams{
				opts:     opts,
				format:   format,
				output:   output,
				detailed: detailed,
				noCache:  noCache,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout for dot, <input>.conflicts.svg for svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add lane and dates to node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	nav.register(cmd, true)

	return cmd
}

func (c *CLI) runConflicts(ctx context.Context, input string, p conflictsParams) error {
	res, _, err := c.computeLayout(ctx, input, p.opts, p.noCache)
	if err != nil {
		return err
	}

	edges := conflict.Overlaps(res)
	c.Logger.Info("Overlap graph", "window", res.Window.Label(), "items", len(res.Items),
		"overlaps", len(edges), "depth", conflict.MaxDepth(res), "rows", res.Rows)

	dot := conflict.ToDOT(res, conflict.Options{Detailed: p.detailed})
	data := []byte(dot)
	if p.format == "svg" {
		if data, err = conflict.RenderSVG(ctx, dot); err != nil {
			return fmt.Errorf("render overlap graph: %w", err)
		}
	}

	path := p.output
	if path == "" && p.format == "svg" {
		path = basePath("", layoutPath(input, res.Window)) + ".conflicts.svg"
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Overlap graph written")
	printFile(path)
	return nil
}

type conflictsParams struct {
	opts     pipeline.Options
	format   string
	output   string
	detailed bool
	noCache  bool
}
