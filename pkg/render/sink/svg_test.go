package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/timeline"
)

func day(s string) time.Time {
	t, err := timeline.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleResult(g timeline.Granularity) timeline.Result {
	w, err := timeline.Resolve(day("2024-03-15"), g)
	if err != nil {
		panic(err)
	}
	items := []timeline.Item{
		{ID: "bad", Title: "Müller Bad", Subtitle: "Badsanierung", Start: day("2024-03-01"), End: day("2024-03-20"), Status: timeline.StatusOverdue},
		{ID: "dach", Title: "Schmidt & Söhne <Dach>", Start: day("2024-03-05"), End: day("2024-03-08"), Color: "#43a047"},
		{ID: "abnahme", Title: "Abnahme", Start: day("2024-03-25"), End: day("2024-03-25"), Status: timeline.StatusComplete},
	}
	return timeline.Compute(items, w, timeline.Options{Today: day("2024-03-12")})
}

func TestRenderSVGWellFormed(t *testing.T) {
	for _, g := range timeline.Granularities {
		t.Run(string(g), func(t *testing.T) {
			svg := RenderSVG(sampleResult(g))
			dec := xml.NewDecoder(strings.NewReader(string(svg)))
			for {
				_, err := dec.Token()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("invalid XML: %v\n%s", err, svg)
				}
			}
		})
	}
}

func TestRenderSVGContent(t *testing.T) {
	svg := string(RenderSVG(sampleResult(timeline.Month), WithWidth(800), WithLaneHeight(40)))

	checks := []string{
		`width="800"`,
		`>March 2024</text>`,
		`data-id="bad" data-lane="0" data-variant="normal"`,
		`class="item overdue"`,
		`class="item complete"`,
		`Schmidt &amp; Söhne &lt;Dach&gt;`,
		`fill="#43a047"`,
		`class="today"`,
		`data-lane="1"`,
	}
	for _, want := range checks {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG is missing %q", want)
		}
	}
}

func TestRenderSVGFloatingLabelsDrawnLast(t *testing.T) {
	res := sampleResult(timeline.Year)
	svg := string(RenderSVG(res))

	overlay := strings.Index(svg, `<g class="overlay">`)
	items := strings.Index(svg, `<g class="items">`)
	if overlay < 0 || items < 0 || overlay < items {
		t.Fatalf("overlay group must follow the items group (items=%d overlay=%d)", items, overlay)
	}

	tiny := 0
	for _, li := range res.Items {
		if li.Variant == timeline.VariantTinyLabel {
			tiny++
		}
	}
	if tiny == 0 {
		t.Fatal("expected tinyLabel items in a year window")
	}
	if got := strings.Count(svg[overlay:], `class="floating-label"`); got != tiny {
		t.Errorf("floating labels = %d, want %d", got, tiny)
	}
}

func TestRenderSVGNoToday(t *testing.T) {
	res := sampleResult(timeline.Month)
	res.Today = nil
	if strings.Contains(string(RenderSVG(res)), `class="today"`) {
		t.Error("today line drawn without a marker")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	w, _ := timeline.Resolve(day("2024-03-15"), timeline.Quarter)
	svg := string(RenderSVG(timeline.Compute(nil, w, timeline.Options{})))
	if got := strings.Count(svg, `class="lane"`); got != 1 {
		t.Errorf("lanes = %d, want 1 for an empty timeline", got)
	}
}

func TestRenderSVGThemes(t *testing.T) {
	light := string(RenderSVG(sampleResult(timeline.Month)))
	dark := string(RenderSVG(sampleResult(timeline.Month), WithTheme(Dark)))
	if !strings.Contains(light, Light.Background) || !strings.Contains(dark, Dark.Background) {
		t.Error("theme background not applied")
	}
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "light"},
		{"Light", "light"},
		{" dark ", "dark"},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if err != nil || got.Name != tt.want {
			t.Errorf("ParseTheme(%q) = %s, %v; want %s", tt.in, got.Name, err, tt.want)
		}
	}
	if _, err := ParseTheme("neon"); !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("ParseTheme(neon) error = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width float64
		want  string
	}{
		{"Bad", 100, "Bad"},
		{"Müller Badsanierung", 60, "Müller Ba…"},
		{"Müller", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width, 10); got != tt.want {
			t.Errorf("truncate(%q, %v) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestDateRange(t *testing.T) {
	if got := dateRange(day("2024-03-05"), day("2024-03-10")); got != "05.03.-10.03." {
		t.Errorf("dateRange = %q", got)
	}
	if got := dateRange(day("2024-03-05"), day("2024-03-05")); got != "05.03." {
		t.Errorf("single-day dateRange = %q", got)
	}
}

func TestTicks(t *testing.T) {
	month, _ := timeline.Resolve(day("2024-03-15"), timeline.Month)
	var labels []string
	for _, tk := range ticks(month) {
		labels = append(labels, tk.label)
	}
	if got := strings.Join(labels, ","); got != "1,8,15,22,29" {
		t.Errorf("month ticks = %s", got)
	}

	half, _ := timeline.Resolve(day("2024-08-01"), timeline.Half)
	labels = labels[:0]
	for _, tk := range ticks(half) {
		labels = append(labels, tk.label)
	}
	if got := strings.Join(labels, ","); got != "Jul,Aug,Sep,Oct,Nov,Dec" {
		t.Errorf("half ticks = %s", got)
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleResult(timeline.Month))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"granularity": "month"`) {
		t.Errorf("unexpected JSON:\n%s", data)
	}
}
