// Package render turns computed timelines into files.
//
// The [sink] subpackage draws a timeline.Result as SVG (and PNG/PDF by
// conversion) or exports it as JSON. The [conflict] subpackage draws the
// overlap graph of a layout with Graphviz, which makes lane assignments easy
// to audit.
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// from librsvg:
//
//	svg := sink.RenderSVG(result, sink.WithTheme(sink.Dark))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/planboard/pkg/render/sink
// [conflict]: github.com/matzehuels/planboard/pkg/render/conflict
package render
