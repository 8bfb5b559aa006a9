package conflict

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/planboard/pkg/render"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// Options configures overlap graph rendering.
type Options struct {
	// Detailed adds the lane and clipped dates to node labels.
	Detailed bool
}

// Edge joins two items, by index into Result.Items, whose clipped ranges
// overlap.
type Edge struct {
	From, To int
}

// lanePalette colours nodes by lane; it repeats for many lanes.
var lanePalette = []string{
	"#8ecae6", "#ffb703", "#90be6d", "#f28482", "#cdb4db",
	"#ffd6a5", "#a0c4ff", "#caffbf", "#fdffb6", "#bdb2ff",
}

// Overlaps returns every pair of items whose clipped ranges share a day.
func Overlaps(res timeline.Result) []Edge {
	var edges []Edge
	for i := range res.Items {
		for j := i + 1; j < len(res.Items); j++ {
			a, b := res.Items[i], res.Items[j]
			if !a.ClippedEnd.Before(b.ClippedStart) && !b.ClippedEnd.Before(a.ClippedStart) {
				edges = append(edges, Edge{From: i, To: j})
			}
		}
	}
	return edges
}

// MaxDepth returns the largest number of items covering a single day. A
// valid layout has Rows >= MaxDepth.
func MaxDepth(res timeline.Result) int {
	depth := 0
	for _, li := range res.Items {
		n := 0
		for _, other := range res.Items {
			if !li.ClippedStart.Before(other.ClippedStart) && !li.ClippedStart.After(other.ClippedEnd) {
				n++
			}
		}
		depth = max(depth, n)
	}
	return depth
}

// ToDOT converts res to an undirected Graphviz graph.
func ToDOT(res timeline.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph overlaps {\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s: %d items, %d lanes", res.Window.Label(), len(res.Items), res.Rows))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	for i, li := range res.Items {
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(li, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", lanePalette[li.Lane%len(lanePalette)]),
		}
		if li.Overdue() {
			attrs = append(attrs, "color=red", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range Overlaps(res) {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(li timeline.LaidOutItem, detailed bool) string {
	label := li.Item.Title
	if label == "" {
		label = li.Item.ID
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nlane %d\n%s..%s", label, li.Lane,
		li.ClippedStart.Format("2006-01-02"), li.ClippedEnd.Format("2006-01-02"))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a plain
// pixel one so the image scales like the timeline SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
