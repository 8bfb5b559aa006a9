package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// fakeLayout records the options of every request and lays out nothing.
type fakeLayout struct {
	calls []pipeline.Options
	err   error
}

func (f *fakeLayout) layout(_ context.Context, opts pipeline.Options) (timeline.Result, error) {
	f.calls = append(f.calls, opts)
	if f.err != nil {
		return timeline.Result{}, f.err
	}
	w, err := opts.Window()
	if err != nil {
		return timeline.Result{}, err
	}
	return timeline.Compute(nil, w, opts.EngineOptions()), nil
}

func newTestViewModel(t *testing.T, f *fakeLayout) viewModel {
	t.Helper()
	today, _ := time.Parse(time.DateOnly, "2024-05-10")
	opts := pipeline.Options{Granularity: "month", Today: today}
	if err := opts.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	return newViewModel(context.Background(), opts, f.layout)
}

// press sends key to m and, unless the search prompt is open, runs the
// resulting command and feeds its message back into the model. Prompt
// commands only drive the cursor blink.
func press(t *testing.T, m viewModel, key tea.KeyMsg) viewModel {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(viewModel)
	if cmd == nil || m.searching {
		return m
	}
	msg := cmd()
	if _, ok := msg.(layoutMsg); !ok {
		return m
	}
	next, _ = m.Update(msg)
	return next.(viewModel)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func windowStart(t *testing.T, m viewModel) string {
	t.Helper()
	w, err := m.opts.Window()
	if err != nil {
		t.Fatal(err)
	}
	return w.Start.Format(time.DateOnly)
}

func TestViewModelInit(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)
	if !m.loading {
		t.Error("model should start loading")
	}
	next, _ := m.Update(m.Init()())
	m = next.(viewModel)
	if m.loading || m.err != nil {
		t.Errorf("loading=%v err=%v after first layout", m.loading, m.err)
	}
	if m.res.Window.TotalDays != 31 {
		t.Errorf("TotalDays = %d, want 31 (May)", m.res.Window.TotalDays)
	}
}

func TestViewModelNavigation(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := windowStart(t, m); got != "2024-07-01" {
		t.Errorf("after →→ window starts %s, want 2024-07-01", got)
	}

	m = press(t, m, runes("h"))
	if got := windowStart(t, m); got != "2024-06-01" {
		t.Errorf("after h window starts %s, want 2024-06-01", got)
	}

	m = press(t, m, runes("g"))
	if m.opts.Granularity != "quarter" || m.opts.Offset != 0 {
		t.Errorf("after g: granularity %q offset %d", m.opts.Granularity, m.opts.Offset)
	}
	if got := windowStart(t, m); got != "2024-04-01" {
		t.Errorf("after g window starts %s, want 2024-04-01 (contains June)", got)
	}

	m = press(t, m, runes("l"))
	m = press(t, m, runes("t"))
	if got := windowStart(t, m); got != "2024-04-01" {
		t.Errorf("after t window starts %s, want 2024-04-01", got)
	}

	if len(f.calls) != 6 {
		t.Errorf("layout calls = %d, want 6", len(f.calls))
	}
	if m.res.Window.Granularity != timeline.Quarter {
		t.Errorf("result granularity = %q", m.res.Window.Granularity)
	}
}

func TestViewModelGranularityCycle(t *testing.T) {
	m := newTestViewModel(t, &fakeLayout{})
	want := []string{"quarter", "half", "year", "month"}
	for _, g := range want {
		m = press(t, m, runes("g"))
		if m.opts.Granularity != g {
			t.Fatalf("granularity = %q, want %q", m.opts.Granularity, g)
		}
	}
}

func TestViewModelSearch(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)

	m = press(t, m, runes("/"))
	if !m.searching || !m.search.Focused() {
		t.Fatal("/ should open and focus the search prompt")
	}
	m = press(t, m, runes("mü"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = press(t, m, runes("x"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	// Keys are text while searching.
	m = press(t, m, runes("q"))
	if got := m.search.Value(); got != "mü q" {
		t.Errorf("query = %q, want %q", got, "mü q")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching || m.opts.Search != "mü q" {
		t.Errorf("searching=%v search=%q", m.searching, m.opts.Search)
	}
	if got := f.calls[len(f.calls)-1].Search; got != "mü q" {
		t.Errorf("layout search = %q", got)
	}

	m = press(t, m, runes("/"))
	if got := m.search.Value(); got != "mü q" {
		t.Errorf("reopened prompt = %q, want the applied search", got)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlW})
	m = press(t, m, runes("zzz"))
	if got := m.search.Value(); got != "mü zzz" {
		t.Errorf("after ctrl+w = %q, want %q", got, "mü zzz")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || m.opts.Search != "mü q" {
		t.Errorf("esc should keep the applied search, got %q", m.opts.Search)
	}
}

func TestViewModelSearchClear(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)
	m.opts.Search = "alpha"

	m = press(t, m, runes("/"))
	for range len("alpha") {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(t, m, runes("  "))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.opts.Search != "" {
		t.Errorf("search = %q, want cleared", m.opts.Search)
	}
}

func TestViewModelStaleLayout(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)

	stale := m.Init()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(viewModel)

	next, _ = m.Update(stale())
	m = next.(viewModel)
	if !m.loading {
		t.Error("a superseded layout must not end loading")
	}
}

func TestViewModelQuit(t *testing.T) {
	m := newTestViewModel(t, &fakeLayout{})
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command does not quit", key)
		}
	}
}

func TestViewModelView(t *testing.T) {
	f := &fakeLayout{}
	m := newTestViewModel(t, f)
	next, _ := m.Update(m.Init()())
	m = next.(viewModel)

	out := m.View()
	for _, want := range []string{"2024-05-01", "2024-05-31", "0 items", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	f.err = errors.New("source offline")
	m = press(t, m, runes("l"))
	if out := m.View(); !strings.Contains(out, "source offline") {
		t.Errorf("view should show the error:\n%s", out)
	}
}
