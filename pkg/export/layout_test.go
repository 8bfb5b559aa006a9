package export

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

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

func sampleResult(t *testing.T) timeline.Result {
	t.Helper()
	w, err := timeline.Resolve(day("2024-03-15"), timeline.Month)
	if err != nil {
		t.Fatal(err)
	}
	items := []timeline.Item{
		{ID: "a", Title: "Müller Bad", Subtitle: "Badsanierung", Color: "#e53935", Start: day("2024-02-20"), End: day("2024-03-10"), Status: timeline.StatusOverdue},
		{ID: "b", Title: "Schmidt Dach", Start: day("2024-03-05"), End: day("2024-03-15"), Status: timeline.StatusNormal},
		{ID: "c", Title: "Abnahme", Start: day("2024-03-20"), End: day("2024-03-01"), Status: timeline.StatusComplete},
	}
	return timeline.Compute(items, w, timeline.Options{Today: day("2024-03-05")})
}

func TestRoundTrip(t *testing.T) {
	res := sampleResult(t)

	data, err := Marshal(FromResult(res))
	if err != nil {
		t.Fatal(err)
	}
	l, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ToResult(l)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromResult(t *testing.T) {
	l := FromResult(sampleResult(t))

	want := Window{Start: "2024-03-01", End: "2024-03-31", TotalDays: 31, Granularity: "month", Label: "March 2024"}
	if diff := cmp.Diff(want, l.Window); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	if l.Rows != 2 || len(l.Items) != 3 || l.Normalized != 1 {
		t.Errorf("rows=%d items=%d normalized=%d", l.Rows, len(l.Items), l.Normalized)
	}
	first := l.Items[0]
	if first.ID != "a" || first.ClippedStart != "2024-03-01" || first.Start != "2024-02-20" || first.Variant != "normal" {
		t.Errorf("unexpected first item %+v", first)
	}
}

func TestJSONFieldNames(t *testing.T) {
	data, err := Marshal(FromResult(sampleResult(t)))
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"total_days"`, `"left_pct"`, `"width_pct"`, `"clipped_start"`, `"variant"`, `"today"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("JSON is missing %s", field)
		}
	}
}

func TestUnmarshalValidation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"window":`},
		{"empty window", `{"window":{"start":"2024-03-01","end":"2024-03-31","total_days":0,"granularity":"month"},"rows":1,"items":[]}`},
		{"no rows", `{"window":{"start":"2024-03-01","end":"2024-03-31","total_days":31,"granularity":"month"},"rows":0,"items":[]}`},
		{"lane out of range", `{"window":{"start":"2024-03-01","end":"2024-03-31","total_days":31,"granularity":"month"},"rows":1,"items":[{"id":"x","lane":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.json)); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Unmarshal() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestToResultErrors(t *testing.T) {
	l := FromResult(sampleResult(t))

	bad := l
	bad.Window.Granularity = "week"
	if _, err := ToResult(bad); !errors.Is(err, errors.ErrCodeInvalidGranularity) {
		t.Errorf("bad granularity: err = %v", err)
	}

	bad = l
	bad.Items = append([]Item(nil), l.Items...)
	bad.Items[0].ClippedEnd = "later"
	if _, err := ToResult(bad); !errors.Is(err, errors.ErrCodeInvalidItem) {
		t.Errorf("bad item date: err = %v", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	want := FromResult(sampleResult(t))

	if err := WriteFile(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
}
