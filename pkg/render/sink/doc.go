// Package sink provides output formats for computed timelines.
//
// A "sink" turns a timeline.Result into bytes:
//
//   - SVG: lanes, bars, labels and the today line
//   - JSON: the export.Layout document
//   - PDF and PNG: SVG converted with rsvg-convert
//
// # SVG Output
//
// [RenderSVG] draws one band per lane and one bar per item. The text inside a
// bar depends on the item's label-density variant:
//
//	normal     title, subtitle and date range
//	small      title and date range on one line
//	micro      title only
//	nano       a dot, no text
//	tinyLabel  no text in the bar; a floating label next to it
//
// Floating labels are drawn in a separate group after every lane, so they
// are never hidden by a neighbouring lane or cut off by lane height.
//
//	svg := sink.RenderSVG(result,
//	    sink.WithWidth(1600),
//	    sink.WithTheme(sink.Dark),
//	)
//
// Percent positions come straight from the engine; the sink only applies a
// minimum bar width in pixels so one-day items in a year view stay visible.
package sink
