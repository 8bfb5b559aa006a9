package timeline

import (
	"testing"
	"time"

	"github.com/matzehuels/planboard/pkg/errors"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		cursor    string
		g         Granularity
		wantStart string
		wantEnd   string
		wantDays  int
	}{
		{"month march", "2024-03-15", Month, "2024-03-01", "2024-03-31", 31},
		{"month leap february", "2024-02-29", Month, "2024-02-01", "2024-02-29", 29},
		{"month february", "2023-02-10", Month, "2023-02-01", "2023-02-28", 28},
		{"month december", "2024-12-31", Month, "2024-12-01", "2024-12-31", 31},
		{"quarter from may", "2024-05-15", Quarter, "2024-04-01", "2024-06-30", 91},
		{"quarter first", "2024-01-01", Quarter, "2024-01-01", "2024-03-31", 91},
		{"quarter last", "2023-11-30", Quarter, "2023-10-01", "2023-12-31", 92},
		{"half first", "2024-06-30", Half, "2024-01-01", "2024-06-30", 182},
		{"half second", "2024-07-01", Half, "2024-07-01", "2024-12-31", 184},
		{"year leap", "2024-08-08", Year, "2024-01-01", "2024-12-31", 366},
		{"year common", "2023-08-08", Year, "2023-01-01", "2023-12-31", 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Resolve(date(tt.cursor), tt.g)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got := w.Start.Format(time.DateOnly); got != tt.wantStart {
				t.Errorf("Start = %s, want %s", got, tt.wantStart)
			}
			if got := w.End.Format(time.DateOnly); got != tt.wantEnd {
				t.Errorf("End = %s, want %s", got, tt.wantEnd)
			}
			if w.TotalDays != tt.wantDays {
				t.Errorf("TotalDays = %d, want %d", w.TotalDays, tt.wantDays)
			}
			if w.Granularity != tt.g {
				t.Errorf("Granularity = %s, want %s", w.Granularity, tt.g)
			}
		})
	}
}

func TestResolveLocalCursorUsesCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-04-01 08:00 local is still March 31 in UTC.
	cursor := time.Date(2024, 4, 1, 8, 0, 0, 0, loc)

	w, err := Resolve(cursor, Month)
	if err != nil {
		t.Fatal(err)
	}
	if w.Start.Month() != time.April {
		t.Errorf("Start month = %s, want April", w.Start.Month())
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		cursor time.Time
		g      Granularity
		code   errors.Code
	}{
		{"unknown granularity", date("2024-03-01"), "week", errors.ErrCodeInvalidGranularity},
		{"empty granularity", date("2024-03-01"), "", errors.ErrCodeInvalidGranularity},
		{"zero cursor", time.Time{}, Month, errors.ErrCodeInvalidCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.cursor, tt.g)
			if !errors.Is(err, tt.code) {
				t.Errorf("Resolve() error = %v, want code %s", err, tt.code)
			}
			if !errors.IsConfiguration(err) {
				t.Errorf("IsConfiguration(%v) = false, want true", err)
			}
		})
	}
}

func TestParseGranularity(t *testing.T) {
	tests := []struct {
		input   string
		want    Granularity
		wantErr bool
	}{
		{"month", Month, false},
		{"Quarter", Quarter, false},
		{" half ", Half, false},
		{"YEAR", Year, false},
		{"week", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseGranularity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGranularity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseGranularity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGranularityNext(t *testing.T) {
	want := map[Granularity]Granularity{
		Month:   Quarter,
		Quarter: Half,
		Half:    Year,
		Year:    Month,
		"bogus": Month,
	}
	for g, next := range want {
		if got := g.Next(); got != next {
			t.Errorf("%q.Next() = %q, want %q", g, got, next)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2024-03-15", "2024-03-15", false},
		{"2024-03-15T23:30:00Z", "2024-03-15", false},
		{"2024-03-15T23:30:00+02:00", "2024-03-15", false},
		{"2024-03-15T08:00", "2024-03-15", false},
		{"  2024-03-15 ", "2024-03-15", false},
		{"15.03.2024", "", true},
		{"2024-02-30", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.IsConfiguration(err) {
				t.Errorf("ParseDate(%q) error should be a configuration error: %v", tt.input, err)
			}
			continue
		}
		if s := got.Format(time.DateOnly); s != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.input, s, tt.want)
		}
		if got.Location() != time.UTC || got.Hour() != 0 {
			t.Errorf("ParseDate(%q) not truncated to UTC midnight: %v", tt.input, got)
		}
	}
}

func TestWindowShift(t *testing.T) {
	tests := []struct {
		name      string
		cursor    string
		g         Granularity
		n         int
		wantStart string
		wantEnd   string
	}{
		{"next month", "2024-01-31", Month, 1, "2024-02-01", "2024-02-29"},
		{"previous month across year", "2024-01-10", Month, -1, "2023-12-01", "2023-12-31"},
		{"next quarter", "2024-05-15", Quarter, 1, "2024-07-01", "2024-09-30"},
		{"previous half", "2024-03-01", Half, -1, "2023-07-01", "2023-12-31"},
		{"two years ahead", "2024-03-01", Year, 2, "2026-01-01", "2026-12-31"},
		{"zero", "2024-03-01", Quarter, 0, "2024-01-01", "2024-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Resolve(date(tt.cursor), tt.g)
			if err != nil {
				t.Fatal(err)
			}
			got, err := w.Shift(tt.n)
			if err != nil {
				t.Fatalf("Shift() error = %v", err)
			}
			if s := got.Start.Format(time.DateOnly); s != tt.wantStart {
				t.Errorf("Start = %s, want %s", s, tt.wantStart)
			}
			if s := got.End.Format(time.DateOnly); s != tt.wantEnd {
				t.Errorf("End = %s, want %s", s, tt.wantEnd)
			}
		})
	}

	if _, err := (Window{}).Shift(1); !errors.IsConfiguration(err) {
		t.Errorf("Shift on zero window error = %v, want configuration error", err)
	}
}

func TestWindowContains(t *testing.T) {
	w, _ := Resolve(date("2024-03-10"), Month)

	tests := []struct {
		day  string
		want bool
	}{
		{"2024-02-29", false},
		{"2024-03-01", true},
		{"2024-03-15", true},
		{"2024-03-31", true},
		{"2024-04-01", false},
	}
	for _, tt := range tests {
		if got := w.Contains(date(tt.day)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}

	late := time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)
	if !w.Contains(late) {
		t.Error("Contains should ignore the time of day")
	}
}

func TestWindowLabel(t *testing.T) {
	tests := []struct {
		g    Granularity
		want string
	}{
		{Month, "May 2024"},
		{Quarter, "Q2 2024"},
		{Half, "H1 2024"},
		{Year, "2024"},
	}
	for _, tt := range tests {
		w, err := Resolve(date("2024-05-15"), tt.g)
		if err != nil {
			t.Fatal(err)
		}
		if got := w.Label(); got != tt.want {
			t.Errorf("Label() for %s = %q, want %q", tt.g, got, tt.want)
		}
	}

	if got := (Window{}).Label(); got != "" {
		t.Errorf("zero window Label() = %q, want empty", got)
	}
}

func TestWindowString(t *testing.T) {
	w, _ := Resolve(date("2024-03-10"), Month)
	want := "March 2024 [2024-03-01..2024-03-31] (31 days)"
	if got := w.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
