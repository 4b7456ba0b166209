package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "stardom/internal/cli"
	"stardom/internal/game"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type playView int

const (
	viewSongs playView = iota
	viewAlbums
	viewRappers
)

var viewNames = []string{"songs", "albums", "rappers"}

type stateMsg struct{ state game.State }

type weekMsg struct {
	report game.WeekReport
	state  game.State
}

type errMsg struct{ err error }

type playModel struct {
	client *cl.Client
	gameID string
	state  game.State
	report *game.WeekReport
	view   playView
	table  table.Model
	busy   bool
	err    error
	width  int
}

func newPlayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Interactive dashboard (w advance week, tab switch view, q quit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("play needs an interactive terminal; use `star dash` instead")
			}
			sess, err := cl.LoadSession()
			if err != nil {
				return err
			}
			base := *apiBase
			if sess.APIBaseURL != "" && !cmd.Flags().Changed("api") {
				base = sess.APIBaseURL
			}
			width := 100
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
			m := newPlayModel(newClient(&base), sess.GameID, width)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newPlayModel(c *cl.Client, gameID string, width int) playModel {
	t := table.New(table.WithFocused(true), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	m := playModel{client: c, gameID: gameID, table: t, busy: true, width: width}
	m.setColumns()
	return m
}

func (m playModel) Init() tea.Cmd {
	return m.fetch()
}

func (m playModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		st, err := m.client.Game(ctx, m.gameID)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{st}
	}
}

func (m playModel) advance() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		report, err := m.client.AdvanceWeek(ctx, m.gameID)
		if err != nil {
			return errMsg{err}
		}
		st, err := m.client.Game(ctx, m.gameID)
		if err != nil {
			return errMsg{err}
		}
		return weekMsg{report: report, state: st}
	}
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.setColumns()
		return m, nil
	case stateMsg:
		m.busy, m.err = false, nil
		m.state = msg.state
		m.setRows()
		return m, nil
	case weekMsg:
		m.busy, m.err = false, nil
		m.state = msg.state
		m.report = &msg.report
		m.setRows()
		return m, nil
	case errMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "w":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.advance()
		case "r":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.fetch()
		case "tab":
			m.view = (m.view + 1) % playView(len(viewNames))
			m.setColumns()
			m.setRows()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *playModel) setColumns() {
	titleW := 24
	if m.width > 110 {
		titleW = m.width - 86
	}
	var cols []table.Column
	switch m.view {
	case viewAlbums:
		cols = []table.Column{
			{Title: "Title", Width: titleW},
			{Title: "Type", Width: 11},
			{Title: "Songs", Width: 5},
			{Title: "Streams", Width: 14},
			{Title: "Rating", Width: 6},
			{Title: "Chart", Width: 6},
		}
	case viewRappers:
		cols = []table.Column{
			{Title: "Name", Width: titleW},
			{Title: "Pop", Width: 4},
			{Title: "Listeners", Width: 14},
			{Title: "Status", Width: 8},
			{Title: "Feature", Width: 14},
		}
	default:
		cols = []table.Column{
			{Title: "Title", Width: titleW},
			{Title: "Tier", Width: 4},
			{Title: "Status", Width: 9},
			{Title: "Streams", Width: 14},
			{Title: "Last week", Width: 12},
		}
	}
	// Rows must be cleared first so they never outnumber the new columns.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
}

func (m *playModel) setRows() {
	var rows []table.Row
	switch m.view {
	case viewAlbums:
		for _, a := range m.state.Albums {
			rating, chart := "-", "-"
			if a.Released {
				rating = fmt.Sprintf("%.1f", (a.CriticalRating+a.FanRating)/2)
				if a.ChartPosition > 0 {
					chart = "#" + strconv.Itoa(a.ChartPosition)
				}
			}
			rows = append(rows, table.Row{a.Title, string(a.Type), strconv.Itoa(len(a.SongIDs)), comma(a.Streams), rating, chart})
		}
	case viewRappers:
		for _, r := range m.state.Rappers {
			rows = append(rows, table.Row{r.Name, strconv.Itoa(r.Popularity), comma(r.MonthlyListeners), string(r.Relationship), formatCents(r.FeatureCostCents)})
		}
	default:
		for _, s := range m.state.Songs {
			status := "demo"
			switch {
			case s.Released && !s.IsActive:
				status = "expired"
			case s.Released:
				status = string(s.PerformanceType)
			}
			rows = append(rows, table.Row{s.Title, strconv.Itoa(s.Tier), status, comma(s.Streams), comma(s.LastWeekStreams)})
		}
	}
	m.table.SetRows(rows)
}

func (m playModel) View() string {
	var b strings.Builder
	st := m.state
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  week %d  level %d", st.PlayerName, st.Week, st.Stats.CareerLevel)))
	b.WriteString("\n")

	var streams, followers int64
	for _, p := range st.Platforms {
		streams += p.TotalStreams
	}
	for _, p := range st.Social {
		followers += p.Followers
	}
	b.WriteString(statStyle.Render(fmt.Sprintf("cash %s   energy %d/%d   streams %s   followers %s   rep %.1f",
		formatCents(st.Stats.WealthCents), st.Stats.Energy, st.Stats.MaxEnergy, comma(streams), comma(followers), st.Stats.Reputation)))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("[" + viewNames[m.view] + "]"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.report != nil {
		b.WriteString(boxStyle.Render(strings.TrimRight(reportText(st.PlayerName, *m.report), "\n")))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	help := "w advance week  r refresh  tab switch view  q quit"
	if m.busy {
		help = "working...  " + help
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}
