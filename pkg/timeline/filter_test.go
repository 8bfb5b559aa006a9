package timeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func item(id, title, start, end string) Item {
	return Item{ID: id, Title: title, Start: date(start), End: date(end), Status: StatusNormal}
}

func ids[T any](xs []T, id func(T) string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = id(x)
	}
	return out
}

func itemIDs(items []Item) []string {
	return ids(items, func(it Item) string { return it.ID })
}

func TestVisibleOverlap(t *testing.T) {
	w, _ := Resolve(date("2024-03-15"), Month)

	items := []Item{
		item("before", "Before", "2024-02-01", "2024-02-29"),
		item("touch-start", "Touch start", "2024-02-20", "2024-03-01"),
		item("inside", "Inside", "2024-03-05", "2024-03-10"),
		item("spans", "Spans", "2024-01-01", "2024-12-31"),
		item("touch-end", "Touch end", "2024-03-31", "2024-04-15"),
		item("after", "After", "2024-04-01", "2024-04-02"),
	}

	got := itemIDs(Visible(items, w, ""))
	want := []string{"touch-start", "inside", "spans", "touch-end"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Visible() mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleExcludesItemEndingBeforeWindow(t *testing.T) {
	w, _ := Resolve(date("2024-03-15"), Month)
	items := []Item{
		item("old", "Old job", "2024-01-10", "2024-02-28"),
		item("current", "Current job", "2024-03-02", "2024-03-04"),
	}

	visible := Visible(items, w, "")
	if len(visible) != 1 || visible[0].ID != "current" {
		t.Fatalf("Visible() = %v, want only current", itemIDs(visible))
	}

	laid, rows := Pack(visible, w)
	if len(laid) != 1 || laid[0].Item.ID != "current" || rows != 1 {
		t.Errorf("Pack() got %d items, %d rows; want only current in one row", len(laid), rows)
	}
}

func TestVisibleSearch(t *testing.T) {
	w, _ := Resolve(date("2024-03-15"), Month)
	items := []Item{
		{ID: "1", Title: "Müller Bad", Subtitle: "Badsanierung", Start: date("2024-03-01"), End: date("2024-03-10")},
		{ID: "2", Title: "Schmidt Dach", Subtitle: "Dachrinne", Start: date("2024-03-01"), End: date("2024-03-10")},
		{ID: "3", Title: "Weber", Subtitle: "Küche bei Müller-Lüdenscheidt", Start: date("2024-03-01"), End: date("2024-03-10")},
		{ID: "4", Title: "Müller Garten", Start: date("2023-01-01"), End: date("2023-01-10")},
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"exact", "Müller", []string{"1", "3"}},
		{"lower", "müller", []string{"1", "3"}},
		{"upper", "MÜLLER", []string{"1", "3"}},
		{"subtitle only", "dachrinne", []string{"2"}},
		{"whitespace trimmed", "  schmidt ", []string{"2"}},
		{"blank", "   ", []string{"1", "2", "3"}},
		{"no match", "Fischer", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := itemIDs(Visible(items, w, tt.search))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Visible(%q) mismatch (-want +got):\n%s", tt.search, diff)
			}
		})
	}
}

func TestVisibleSearchSingleSurvivor(t *testing.T) {
	w, _ := Resolve(date("2024-03-15"), Month)
	items := []Item{
		item("a", "Müller Bad", "2024-03-01", "2024-03-10"),
		item("b", "Schmidt Dach", "2024-03-01", "2024-03-10"),
	}

	visible := Visible(items, w, "Müller")
	laid, rows := Pack(visible, w)
	if len(laid) != 1 || laid[0].Item.Title != "Müller Bad" {
		t.Fatalf("Pack(Visible()) = %v, want only Müller Bad", laid)
	}
	if rows != 1 || laid[0].Lane != 0 {
		t.Errorf("rows = %d, lane = %d; want 1, 0", rows, laid[0].Lane)
	}
}

func TestVisibleNormalizesReversedRange(t *testing.T) {
	w, _ := Resolve(date("2024-03-15"), Month)
	items := []Item{
		// Ends before it starts: treated as the single day 2024-03-05.
		item("reversed", "Reversed", "2024-03-05", "2024-02-01"),
		// Normalized to 2024-04-02, outside the window.
		item("reversed-outside", "Reversed outside", "2024-04-02", "2024-03-20"),
	}

	got := itemIDs(Visible(items, w, ""))
	if diff := cmp.Diff([]string{"reversed"}, got); diff != "" {
		t.Errorf("Visible() mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibleDegenerateWindow(t *testing.T) {
	items := []Item{item("a", "A", "0001-01-01", "0001-01-01")}
	if got := Visible(items, Window{}, ""); len(got) != 0 {
		t.Errorf("Visible() on zero window = %v, want none", itemIDs(got))
	}
}
