package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/planboard/pkg/timeline"
)

// Default geometry in pixels.
const (
	DefaultWidth      = 1200.0
	DefaultLaneHeight = 44.0

	headerHeight = 56.0
	padding      = 16.0
	barInset     = 5.0
	minBarWidth  = 3.0
	titleSize    = 13.0
	detailSize   = 11.0
	nanoRadius   = 3.5
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	laneHeight float64
	theme      Theme
	title      string
}

// WithWidth sets the total image width. Values <= 0 keep the default.
func WithWidth(w float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 {
			r.width = w
		}
	}
}

// WithLaneHeight sets the height of one lane. Values <= 0 keep the default.
func WithLaneHeight(h float64) SVGOption {
	return func(r *svgRenderer) {
		if h > 0 {
			r.laneHeight = h
		}
	}
}

// WithTheme selects the colour theme.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithTitle replaces the window label in the header.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// RenderSVG draws res as a standalone SVG document.
func RenderSVG(res timeline.Result, opts ...SVGOption) []byte {
	r := svgRenderer{width: DefaultWidth, laneHeight: DefaultLaneHeight, theme: Light}
	for _, opt := range opts {
		opt(&r)
	}
	if r.title == "" {
		r.title = res.Window.Label()
	}

	rows := max(1, res.Rows)
	height := headerHeight + float64(rows)*r.laneHeight + padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Inter, Helvetica, Arial, sans-serif">`+"\n",
		r.width, height, r.width, height)
	fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)

	r.renderHeader(&buf, res.Window)
	r.renderLanes(&buf, rows)
	r.renderGrid(&buf, res.Window, rows)

	buf.WriteString(`  <g class="items">` + "\n")
	for _, li := range res.Items {
		r.renderItem(&buf, li)
	}
	buf.WriteString("  </g>\n")

	// Floating labels go last so nothing drawn later can cover them.
	buf.WriteString(`  <g class="overlay">` + "\n")
	for _, li := range res.Items {
		if li.Variant == timeline.VariantTinyLabel {
			r.renderFloatingLabel(&buf, li)
		}
	}
	buf.WriteString("  </g>\n")

	if res.Today != nil {
		r.renderToday(&buf, *res.Today, rows)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) plotWidth() float64 { return r.width - 2*padding }

func (r *svgRenderer) x(pct float64) float64 { return padding + pct/100*r.plotWidth() }

func (r *svgRenderer) laneY(lane int) float64 { return headerHeight + float64(lane)*r.laneHeight }

func (r *svgRenderer) renderHeader(buf *bytes.Buffer, w timeline.Window) {
	fmt.Fprintf(buf, `  <text class="title" x="%.1f" y="24" font-size="16" font-weight="600" fill="%s">%s</text>`+"\n",
		padding, r.theme.Text, escapeXML(r.title))
	if w.TotalDays > 0 {
		fmt.Fprintf(buf, `  <text class="range" x="%.1f" y="24" font-size="%.0f" text-anchor="end" fill="%s">%s - %s (%d days)</text>`+"\n",
			r.width-padding, detailSize, r.theme.Muted, w.Start.Format("02.01.2006"), w.End.Format("02.01.2006"), w.TotalDays)
	}
}

func (r *svgRenderer) renderLanes(buf *bytes.Buffer, rows int) {
	buf.WriteString(`  <g class="lanes">` + "\n")
	for lane := range rows {
		fill := r.theme.LaneEven
		if lane%2 == 1 {
			fill = r.theme.LaneOdd
		}
		fmt.Fprintf(buf, `    <rect class="lane" data-lane="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			lane, padding, r.laneY(lane), r.plotWidth(), r.laneHeight, fill)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderGrid(buf *bytes.Buffer, w timeline.Window, rows int) {
	top, bottom := headerHeight-8, r.laneY(rows)
	buf.WriteString(`  <g class="grid">` + "\n")
	for _, tk := range ticks(w) {
		x := r.x(tk.pct)
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			x, top, x, bottom, r.theme.Grid)
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" fill="%s">%s</text>`+"\n",
			x+3, top-4, detailSize, r.theme.Muted, escapeXML(tk.label))
	}
	buf.WriteString("  </g>\n")
}

// bar returns the pixel box of li's bar.
func (r *svgRenderer) bar(li timeline.LaidOutItem) (x, y, w, h float64) {
	x = r.x(li.LeftPct)
	w = max(minBarWidth, li.WidthPct/100*r.plotWidth())
	y = r.laneY(li.Lane) + barInset
	h = r.laneHeight - 2*barInset
	return x, y, w, h
}

func (r *svgRenderer) renderItem(buf *bytes.Buffer, li timeline.LaidOutItem) {
	x, y, w, h := r.bar(li)
	fill := li.Item.Color
	if fill == "" {
		fill = r.theme.Bar
	}

	attrs := fmt.Sprintf(`class="item %s" data-id="%s" data-lane="%d" data-variant="%s"`,
		statusClass(li), escapeXML(li.Item.ID), li.Lane, li.Variant)
	fmt.Fprintf(buf, "    <g %s>\n", attrs)
	fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(tooltip(li)))

	stroke := ""
	if li.Overdue() {
		stroke = fmt.Sprintf(` stroke="%s" stroke-width="2"`, r.theme.Overdue)
	}
	opacity := ""
	if li.Complete() {
		opacity = ` fill-opacity="0.5"`
	}
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s"%s%s/>`+"\n",
		x, y, w, h, fill, stroke, opacity)

	textX := x + 6
	avail := w - 12
	switch li.Variant {
	case timeline.VariantNormal:
		r.text(buf, textX, y+h/2-2, titleSize, "600", truncate(li.Item.Title, avail, titleSize))
		detail := dateRange(li.Item.Start, li.Item.End)
		if li.Item.Subtitle != "" {
			detail = li.Item.Subtitle + " · " + detail
		}
		r.text(buf, textX, y+h/2+12, detailSize, "400", truncate(detail, avail, detailSize))
	case timeline.VariantSmall:
		line := li.Item.Title + " " + dateRange(li.Item.Start, li.Item.End)
		r.text(buf, textX, y+h/2+4, detailSize, "600", truncate(line, avail, detailSize))
	case timeline.VariantMicro:
		r.text(buf, textX, y+h/2+4, detailSize, "600", truncate(li.Item.Title, avail, detailSize))
	case timeline.VariantNano:
		fmt.Fprintf(buf, `      <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
			x+w/2, y+h/2, nanoRadius, r.theme.BarText)
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) text(buf *bytes.Buffer, x, y, size float64, weight, s string) {
	if s == "" {
		return
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
		x, y, size, weight, r.theme.BarText, escapeXML(s))
}

// renderFloatingLabel places the title to the right of the bar, or to its
// left when the bar sits in the right third of the window.
func (r *svgRenderer) renderFloatingLabel(buf *bytes.Buffer, li timeline.LaidOutItem) {
	x, y, w, h := r.bar(li)
	anchor, lx := "start", x+w+4
	if li.LeftPct > 66 {
		anchor, lx = "end", x-4
	}
	fmt.Fprintf(buf, `    <text class="floating-label" data-id="%s" x="%.1f" y="%.1f" font-size="%.0f" text-anchor="%s" fill="%s">%s</text>`+"\n",
		escapeXML(li.Item.ID), lx, y+h/2+4, detailSize, anchor, r.theme.Text, escapeXML(li.Item.Title))
}

func (r *svgRenderer) renderToday(buf *bytes.Buffer, pct float64, rows int) {
	x := r.x(pct)
	fmt.Fprintf(buf, `  <g class="today"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" stroke-dasharray="4 3"/>`+
		`<text x="%.1f" y="%.1f" font-size="%.0f" font-weight="600" fill="%s">Today</text></g>`+"\n",
		x, headerHeight-6, x, r.laneY(rows), r.theme.Today, x+4, r.laneY(rows)+12, detailSize, r.theme.Today)
}

func statusClass(li timeline.LaidOutItem) string {
	switch {
	case li.Overdue():
		return "overdue"
	case li.Complete():
		return "complete"
	}
	return "normal"
}

func tooltip(li timeline.LaidOutItem) string {
	s := li.Item.Title
	if li.Item.Subtitle != "" {
		s += " - " + li.Item.Subtitle
	}
	s += " (" + dateRange(li.Item.Start, li.Item.End) + ")"
	if li.Normalized {
		s += " [end before start]"
	}
	return s
}

type tick struct {
	pct   float64
	label string
}

// ticks returns grid positions: weekly for month windows, monthly otherwise.
func ticks(w timeline.Window) []tick {
	if w.TotalDays <= 0 {
		return nil
	}
	var out []tick
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		var label string
		switch {
		case w.Granularity == timeline.Month && (d.Day()-1)%7 == 0:
			label = strconv.Itoa(d.Day())
		case w.Granularity != timeline.Month && d.Day() == 1:
			label = d.Month().String()[:3]
		default:
			continue
		}
		if pct := timeline.TodayMarker(d, w); pct != nil {
			out = append(out, tick{pct: *pct, label: label})
		}
	}
	return out
}
