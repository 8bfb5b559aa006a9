package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/pkg/timeline"
)

// windowCommand creates the window command, which prints the resolved date
// range and its neighbours.
func (c *CLI) windowCommand() *cobra.Command {
	var nav navFlags

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the date range of a timeline window",
		Long: `Print the date range of a timeline window.

The window is the month, quarter, half-year or year containing --cursor,
shifted by --offset periods. The previous and next windows are listed too,
so the output doubles as a navigation aid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(nav)
			if err != nil {
				return err
			}
			w, err := opts.Window()
			if err != nil {
				return err
			}
			out, err := windowTable(w)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("resolved window", "window", w.String())
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	nav.register(cmd, false)

	return cmd
}

// windowTable renders w and its neighbours as a table, current row
// highlighted.
func windowTable(w timeline.Window) (string, error) {
	prev, err := w.Shift(-1)
	if err != nil {
		return "", err
	}
	next, err := w.Shift(1)
	if err != nil {
		return "", err
	}

	windows := []timeline.Window{prev, w, next}
	names := []string{"previous", "current", "next"}
	rows := make([][]string, len(windows))
	for i, win := range windows {
		rows[i] = []string{
			names[i],
			win.Label(),
			win.Start.Format(time.DateOnly),
			win.End.Format(time.DateOnly),
			strconv.Itoa(win.TotalDays),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Window", "Start", "End", "Days").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case row == 1:
				return base.Inherit(StyleHighlight)
			case col == 0:
				return base.Inherit(StyleDim)
			}
			return base
		})

	return t.String(), nil
}
