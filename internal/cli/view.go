package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/internal/config"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/source"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// viewCommand creates the interactive timeline browser.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		nav     navFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "view [items-file]",
		Short: "Browse the timeline interactively",
		Long: `Browse the timeline interactively in the terminal.

Keys:
  ←/h, →/l   previous / next window
  g          cycle granularity (month, quarter, half, year)
  t          jump to the window containing today
  /          search titles and subtitles (enter to apply, esc to cancel)
  q          quit

The item file is re-read on every navigation step, so edits show up
immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(nav)
			if err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runView(cmd.Context(), input, opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	nav.register(cmd, true)

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	// Log lines would tear the alternate screen apart.
	ctx = withLogger(ctx, newLogger(io.Discard, LogInfo))
	opts.Logger = loggerFromContext(ctx)

	src, closeFn, err := c.newSource(ctx, input)
	if err != nil {
		return err
	}
	defer closeFn()

	// The view recomputes on every keypress, so a file cache buys little
	// over an in-process one.
	kind := c.Config.Cache.Kind
	if kind == config.CacheFile {
		kind = config.CacheMemory
	}
	if noCache {
		kind = config.CacheNone
	}
	cc, err := c.newCache(ctx, kind)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cc, nil, loggerFromContext(ctx))
	runner.TTL = c.Config.Cache.TTL.Duration
	defer runner.Close()

	layout := func(ctx context.Context, opts pipeline.Options) (timeline.Result, error) {
		w, err := opts.Window()
		if err != nil {
			return timeline.Result{}, err
		}
		snap, err := source.LoadWindow(ctx, src, w)
		if err != nil {
			return timeline.Result{}, err
		}
		return runner.Layout(ctx, snap.Items, snap.Revision, opts)
	}

	m := newViewModel(ctx, opts, layout)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// viewModel - Interactive timeline
// =============================================================================

// layoutFunc computes the layout for the window selected by opts.
type layoutFunc func(ctx context.Context, opts pipeline.Options) (timeline.Result, error)

// layoutMsg delivers a finished layout to the model.
type layoutMsg struct {
	res timeline.Result
	err error
	seq int
}

// viewKeyMap holds the key bindings of the timeline view.
type viewKeyMap struct {
	Prev        key.Binding
	Next        key.Binding
	Granularity key.Binding
	Today       key.Binding
	Search      key.Binding
	Quit        key.Binding
}

var viewKeys = viewKeyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	),
	Granularity: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "granularity"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Granularity, k.Today, k.Search, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// viewModel is the bubbletea model behind `planboard view`.
type viewModel struct {
	ctx    context.Context
	layout layoutFunc
	opts   pipeline.Options
	keys   viewKeyMap
	help   help.Model

	res     timeline.Result
	err     error
	loading bool
	seq     int // discards layouts of superseded requests

	searching bool
	search    textinput.Model

	width  int
	height int
}

func newViewModel(ctx context.Context, opts pipeline.Options, layout layoutFunc) viewModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "title or subtitle"
	ti.CharLimit = 120

	return viewModel{
		ctx:     ctx,
		layout:  layout,
		opts:    opts,
		keys:    viewKeys,
		help:    help.New(),
		search:  ti,
		loading: true,
		width:   80,
		height:  24,
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.compute()
}

// compute returns a command that lays out the current window.
func (m viewModel) compute() tea.Cmd {
	ctx, opts, layout, seq := m.ctx, m.opts, m.layout, m.seq
	return func() tea.Msg {
		res, err := layout(ctx, opts)
		return layoutMsg{res: res, err: err, seq: seq}
	}
}

// navigate applies a change to the options and requests a new layout.
func (m viewModel) navigate(change func(o *pipeline.Options)) (tea.Model, tea.Cmd) {
	change(&m.opts)
	m.seq++
	m.loading = true
	return m, m.compute()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case layoutMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.res, m.err = msg.res, msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			return m.navigate(func(o *pipeline.Options) { o.Offset-- })
		case key.Matches(msg, m.keys.Next):
			return m.navigate(func(o *pipeline.Options) { o.Offset++ })
		case key.Matches(msg, m.keys.Granularity):
			return m.navigate(func(o *pipeline.Options) {
				// Keep the visible window's start inside the new one.
				if w, err := o.Window(); err == nil {
					o.Cursor = w.Start
				}
				o.Offset = 0
				o.Granularity = string(timeline.Granularity(o.Granularity).Next())
			})
		case key.Matches(msg, m.keys.Today):
			return m.navigate(func(o *pipeline.Options) {
				o.Cursor = o.Today
				o.Offset = 0
			})
		case key.Matches(msg, m.keys.Search):
			m.searching = true
			m.search.SetValue(m.opts.Search)
			m.search.CursorEnd()
			m.search.Focus()
			return m, textinput.Blink
		}
		return m, nil
	}

	// Cursor blink and paste messages belong to the prompt.
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateSearch handles keys while the search prompt is open. Enter applies
// the query, esc discards it and every other key edits it.
func (m viewModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		query := strings.TrimSpace(m.search.Value())
		return m.navigate(func(o *pipeline.Options) { o.Search = query })
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

var (
	viewTodayStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	viewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

func (m viewModel) View() string {
	var b strings.Builder

	w, err := m.opts.Window()
	title := "?"
	if err == nil {
		title = w.Label()
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", m.opts.Granularity)))
	if m.opts.Search != "" {
		b.WriteString(StyleDim.Render("  search: ") + StyleValue.Render(m.opts.Search))
	}
	if m.loading {
		b.WriteString(StyleDim.Render("  loading..."))
	}
	b.WriteString("\n\n")

	cols := max(m.width-2, 10)
	switch {
	case m.err != nil:
		b.WriteString(viewErrorStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	case m.res.Window.TotalDays > 0:
		b.WriteString(renderRuler(m.res, cols))
		b.WriteString(renderLanes(m.res, cols))
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d items · %d lanes", len(m.res.Items), m.res.Rows)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// renderRuler draws the window start and end dates with a marker at today.
func renderRuler(res timeline.Result, cols int) string {
	start := res.Window.Start.Format(time.DateOnly)
	end := res.Window.End.Format(time.DateOnly)
	gap := max(cols-len(start)-len(end), 1)
	line := StyleDim.Render(start + strings.Repeat(" ", gap) + end)

	marker := ""
	if res.Today != nil {
		col := min(int(math.Round(*res.Today/100*float64(cols))), cols-1)
		marker = strings.Repeat(" ", col) + viewTodayStyle.Render("▼")
	}
	return line + "\n" + marker + "\n"
}

// renderLanes draws one terminal row per lane, each item a coloured bar
// positioned by its projected percentages.
func renderLanes(res timeline.Result, cols int) string {
	lanes := make([][]timeline.LaidOutItem, res.Rows)
	for _, li := range res.Items {
		if li.Lane >= 0 && li.Lane < len(lanes) {
			lanes[li.Lane] = append(lanes[li.Lane], li)
		}
	}

	var b strings.Builder
	for _, lane := range lanes {
		pos := 0
		for _, li := range lane {
			start := int(math.Round(li.LeftPct / 100 * float64(cols)))
			width := max(int(math.Round(li.WidthPct/100*float64(cols))), 1)
			start = max(start, pos)
			if start >= cols {
				break
			}
			width = min(width, cols-start)

			b.WriteString(strings.Repeat(" ", start-pos))
			b.WriteString(barStyle(li).Width(width).MaxWidth(width).Render(barLabel(li, width)))
			pos = start + width
		}
		b.WriteString("\n")
	}
	return b.String()
}

// barLabel fits the item title into width terminal cells. Bars narrower
// than three cells and marker-only variants stay blank.
func barLabel(li timeline.LaidOutItem, width int) string {
	if width < 3 || li.Variant == timeline.VariantTinyLabel || li.Variant == timeline.VariantNano {
		return strings.Repeat(" ", width)
	}
	if ansi.StringWidth(li.Item.Title) <= width {
		return li.Item.Title
	}
	return ansi.Truncate(li.Item.Title, width, "…")
}

// barStyle colours a bar by the item colour, or by status when the item
// has none.
func barStyle(li timeline.LaidOutItem) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("0"))
	switch {
	case li.Item.Color != "":
		style = style.Background(lipgloss.Color(li.Item.Color))
	case li.Overdue():
		style = style.Background(colorRed)
	case li.Complete():
		style = style.Background(colorGreen)
	default:
		style = style.Background(colorBlue)
	}
	if li.Complete() {
		style = style.Faint(true)
	}
	return style
}
