package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/pkg/export"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// renderFlags holds the output flags for the render command.
type renderFlags struct {
	formats    string
	output     string
	theme      string
	title      string
	width      float64
	laneHeight float64
	noCache    bool
}

// renderCommand creates the render command for generating images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		nav navFlags
		rf  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [items-file|layout.json]",
		Short: "Render a timeline to SVG, PNG, PDF or JSON",
		Long: `Render a timeline to SVG, PNG, PDF or JSON.

The input is either an item file, which is laid out for the window selected
by the navigation flags, or a layout.json written by 'layout', which is
rendered as is. PNG and PDF output require rsvg-convert.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(nav)
			if err != nil {
				return err
			}
			if err := rf.apply(&opts); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, opts, rf)
		},
	}

	cmd.Flags().StringVarP(&rf.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&rf.theme, "theme", "", "colour theme: light, dark (default from config)")
	cmd.Flags().StringVar(&rf.title, "title", "", "title shown above the timeline")
	cmd.Flags().Float64Var(&rf.width, "width", 0, "image width in pixels (default from config)")
	cmd.Flags().Float64Var(&rf.laneHeight, "lane-height", 0, "lane height in pixels (default from config)")
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "disable caching")
	nav.register(cmd, true)

	return cmd
}

// apply copies the set render flags into opts and validates them.
func (rf renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(rf.formats)
	if rf.theme != "" {
		opts.Theme = rf.theme
	}
	if rf.width != 0 {
		opts.Width = rf.width
	}
	if rf.laneHeight != 0 {
		opts.LaneHeight = rf.laneHeight
	}
	opts.Title = rf.title
	return opts.ValidateForRender()
}

// runRender lays out (or reads) the timeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, rf renderFlags) error {
	res, layoutHit, fromLayout, err := c.resolveLayout(ctx, input, opts, rf.noCache)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, renderHit, err := c.renderFormats(ctx, runner, res, opts)
	if err != nil {
		return err
	}

	base := input
	if !fromLayout {
		base = layoutPath(input, res.Window)
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      base,
		output:    rf.output,
		stats:     statsOf(res, layoutHit && renderHit),
	})
}

// renderFormats renders one format at a time so the spinner can report
// which one is in progress. The result is a cache hit only if every format
// was.
func (c *CLI) renderFormats(ctx context.Context, runner *pipeline.Runner, res timeline.Result, opts pipeline.Options) (map[string][]byte, bool, error) {
	sp := c.spin(ctx, "Rendering...")
	defer sp.Stop()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for i, format := range opts.Formats {
		sp.SetMessage(fmt.Sprintf("Rendering %s (%d/%d)...", format, i+1, len(opts.Formats)))
		one := opts
		one.Formats = []string{format}
		out, hit, err := runner.RenderWithCacheInfo(ctx, res, one)
		if err != nil {
			sp.StopWithError("Rendering " + format + " failed")
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = out[format]
		allHit = allHit && hit
	}
	return artifacts, allHit, nil
}

// resolveLayout reads input as a layout file when it is one, and otherwise
// lays out the items it contains.
func (c *CLI) resolveLayout(ctx context.Context, input string, opts pipeline.Options, noCache bool) (res timeline.Result, cacheHit, fromLayout bool, err error) {
	if input != "" {
		l, ok, rerr := readLayoutFile(input)
		if err = rerr; err != nil {
			return res, false, false, fmt.Errorf("load layout %s: %w", input, err)
		}
		if ok {
			res, err = export.ToResult(l)
			if err != nil {
				return res, false, false, fmt.Errorf("load layout %s: %w", input, err)
			}
			c.Logger.Debug("rendering saved layout", "window", res.Window.Label(), "rows", res.Rows)
			return res, true, true, nil
		}
	}
	res, cacheHit, err = c.computeLayout(ctx, input, opts, noCache)
	return res, cacheHit, false, err
}

// readLayoutFile reports whether path holds layout JSON (an object with a
// "window" member) and decodes it if so.
func readLayoutFile(path string) (export.Layout, bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return export.Layout{}, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Let the item source report missing files.
		return export.Layout{}, false, nil
	}
	var probe struct {
		Window json.RawMessage `json:"window"`
	}
	if json.Unmarshal(data, &probe) != nil || probe.Window == nil {
		return export.Layout{}, false, nil
	}
	l, err := export.Unmarshal(data)
	return l, true, err
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	formats := pipeline.ParseFormats(s)
	if len(formats) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return formats
}

// artifactWriteParams describes the files writeArtifacts produces.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string // input or layout path the output names derive from
	output    string // -o value
	stats     layoutStats
}

// writeArtifacts writes each artifact atomically and prints a summary.
func writeArtifacts(p artifactWriteParams) error {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(p.output, p.base, format, len(p.formats))
		if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats)
	return nil
}

// artifactPath returns the output path for one format. A single format
// written with -o uses the path as given; otherwise the format is appended
// to a base path derived from -o or the input.
func artifactPath(output, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension (and a ".layout" suffix) from
// input. If output has a format extension (.svg, .pdf, etc.), it strips that
// extension.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
