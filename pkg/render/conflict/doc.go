// Package conflict draws the overlap graph of a computed timeline.
//
// Every laid-out item becomes a node filled with the colour of its lane;
// two nodes are joined when their clipped ranges share at least one day.
// Because items in one lane never overlap, no edge ever joins two nodes of
// the same colour, and the number of lanes is at least the size of the
// largest set of items that all overlap on one day ([MaxDepth]). The graph
// makes both facts visible at a glance when debugging a layout:
//
//	dot := conflict.ToDOT(result, conflict.Options{Detailed: true})
//	svg, err := conflict.RenderSVG(ctx, dot)
//
// Rendering uses Graphviz compiled to WebAssembly, so no system Graphviz
// installation is required. PDF and PNG conversion requires librsvg.
package conflict
