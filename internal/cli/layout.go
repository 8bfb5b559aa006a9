package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// layoutCommand creates the layout command for computing lane layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		nav     navFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [items-file]",
		Short: "Compute the lane layout of a timeline window",
		Long: `Compute the lane layout of a timeline window.

The layout command reads items from a JSON, YAML, TOML or CSV file (or the
configured source when no file is given), keeps those overlapping the
window, packs them into lanes and writes the result as layout JSON. The
layout.json can be rendered to SVG/PNG/PDF with 'render'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(nav)
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	nav.register(cmd, true)

	return cmd
}

// runLayout loads the items, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	res, cacheHit, err := c.computeLayout(ctx, input, opts, noCache)
	if err != nil {
		return err
	}

	outputPath := output
	if outputPath == "" {
		outputPath = layoutPath(input, res.Window)
	}
	if err := export.WriteFile(export.FromResult(res), outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete: %s", res.Window.Label())
	printWindow(res.Window)
	printFile(outputPath)
	printStats(statsOf(res, cacheHit))
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// computeLayout loads the window's items and lays them out through a runner.
func (c *CLI) computeLayout(ctx context.Context, input string, opts pipeline.Options, noCache bool) (timeline.Result, bool, error) {
	snap, err := c.loadItems(ctx, input, opts)
	if err != nil {
		return timeline.Result{}, false, err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return timeline.Result{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sp := c.spin(ctx, fmt.Sprintf("Packing %d items into lanes...", len(snap.Items)))
	res, cacheHit, err := runner.LayoutWithCacheInfo(ctx, snap.Items, snap.Revision, opts)
	if err != nil {
		sp.StopWithError("Layout failed")
		return timeline.Result{}, false, fmt.Errorf("compute layout: %w", err)
	}
	sp.Stop()

	if ctx.Err() != nil {
		return timeline.Result{}, false, ctx.Err()
	}
	return res, cacheHit, nil
}

// layoutPath derives the default layout file name from the input file and
// the window, e.g. plan.2024-q2.layout.json. Without an input file the
// name is based on the window alone.
func layoutPath(input string, w timeline.Window) string {
	base := appName
	if input != "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return fmt.Sprintf("%s.%s.layout.json", base, windowSlug(w))
}

// windowSlug is a file-name friendly window identifier.
func windowSlug(w timeline.Window) string {
	switch w.Granularity {
	case timeline.Quarter:
		return fmt.Sprintf("%d-q%d", w.Start.Year(), (int(w.Start.Month())-1)/3+1)
	case timeline.Half:
		return fmt.Sprintf("%d-h%d", w.Start.Year(), (int(w.Start.Month())-1)/6+1)
	case timeline.Year:
		return fmt.Sprintf("%d", w.Start.Year())
	}
	return w.Start.Format("2006-01")
}
