package conflict

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/planboard/pkg/timeline"
)

func day(s string) time.Time {
	t, err := timeline.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleResult() timeline.Result {
	w, _ := timeline.Resolve(day("2024-03-15"), timeline.Month)
	items := []timeline.Item{
		{ID: "a", Title: "Bad", Start: day("2024-03-01"), End: day("2024-03-10"), Status: timeline.StatusOverdue},
		{ID: "b", Title: "Dach", Start: day("2024-03-05"), End: day("2024-03-15")},
		{ID: "c", Title: "Küche", Start: day("2024-03-10"), End: day("2024-03-12")},
		{ID: "d", Title: "Garten", Start: day("2024-03-20"), End: day("2024-03-22")},
	}
	return timeline.Compute(items, w, timeline.Options{})
}

func TestOverlaps(t *testing.T) {
	res := sampleResult()
	// Items are in packing order: a, b, c, d.
	want := []Edge{{0, 1}, {0, 2}, {1, 2}}
	if diff := cmp.Diff(want, Overlaps(res)); diff != "" {
		t.Errorf("Overlaps() mismatch (-want +got):\n%s", diff)
	}
	for _, e := range Overlaps(res) {
		if res.Items[e.From].Lane == res.Items[e.To].Lane {
			t.Errorf("overlapping items %d and %d share lane %d", e.From, e.To, res.Items[e.From].Lane)
		}
	}
}

func TestMaxDepth(t *testing.T) {
	res := sampleResult()
	if got := MaxDepth(res); got != 3 {
		t.Errorf("MaxDepth() = %d, want 3", got)
	}
	if res.Rows != 3 {
		t.Errorf("Rows = %d, want 3", res.Rows)
	}
	if got := MaxDepth(timeline.Result{}); got != 0 {
		t.Errorf("MaxDepth(empty) = %d, want 0", got)
	}
}

func TestRowsEqualMaxDepth(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	w, _ := timeline.Resolve(day("2024-05-01"), timeline.Quarter)
	for round := range 25 {
		items := make([]timeline.Item, 30)
		for i := range items {
			start := w.Start.AddDate(0, 0, r.IntN(w.TotalDays))
			items[i] = timeline.Item{
				ID:    fmt.Sprintf("%d-%d", round, i),
				Title: "x",
				Start: start,
				End:   start.AddDate(0, 0, r.IntN(20)),
			}
		}
		res := timeline.Compute(items, w, timeline.Options{})
		if depth := MaxDepth(res); res.Rows != depth {
			t.Errorf("round %d: Rows = %d, MaxDepth = %d", round, res.Rows, depth)
		}
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{})

	for _, want := range []string{
		"graph overlaps {",
		`label="March 2024: 4 items, 3 lanes"`,
		`n0 [label="Bad", fillcolor="#8ecae6", color=red, penwidth=2];`,
		`n1 [label="Dach", fillcolor="#ffb703"];`,
		"n0 -- n1;",
		"n1 -- n2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT is missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "n3 --") || strings.Contains(dot, "-- n3") {
		t.Error("Garten overlaps nothing and should have no edges")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleResult(), Options{Detailed: true})
	if !strings.Contains(dot, `Küche\nlane 2\n2024-03-10..2024-03-12`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.svg))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleResult(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "not valid DOT {{{"); err == nil {
		t.Error("RenderSVG() should fail for invalid DOT")
	}
}
