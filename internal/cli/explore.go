package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/netgraph"
	"github.com/matzehuels/lanparty/pkg/pipeline"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// maxNeighborCols caps how many neighbor names a row shows.
const maxNeighborCols = 8

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "explore <file>",
		Short: "Browse the LAN map in an interactive table",
		Long: `Explore analyses the LAN map and opens a table of all computers with their
degree, neighbors and clique membership.

Keys: ↑/↓ or j/k move, pgup/pgdn page, s cycles the sort order, c shows only
clique members, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.analyze(cmd, args[0], &flags)
			if err != nil {
				return err
			}
			if err := res.Graph.RequireNodes(); err != nil {
				return lperrors.Wrap(lperrors.ErrCodeEmptyGraph, err, "nothing to explore in %s", displayPath(args[0]))
			}
			p := tea.NewProgram(newExploreModel(res),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)

	return cmd
}

// =============================================================================
// ExploreModel - Interactive node browser
// =============================================================================

type sortKey int

const (
	sortByID sortKey = iota
	sortByDegree
	sortByName
)

func (k sortKey) String() string {
	switch k {
	case sortByDegree:
		return "degree"
	case sortByName:
		return "name"
	}
	return "id"
}

type exploreRow struct {
	id        int
	name      string
	degree    int
	member    bool
	neighbors string
}

// ExploreModel is the bubbletea model behind "lanparty explore".
type ExploreModel struct {
	rows       []exploreRow
	visible    []exploreRow
	cursor     int
	offset     int
	height     int
	sortBy     sortKey
	onlyClique bool

	triangles int
	filter    string
	password  string
	strategy  string
}

func newExploreModel(res *pipeline.Result) ExploreModel {
	g := res.Graph
	members := make(map[netgraph.NodeID]bool, len(res.Clique))
	for _, n := range res.Clique {
		members[n.ID] = true
	}

	rows := make([]exploreRow, 0, g.Len())
	for _, n := range g.Nodes() {
		rows = append(rows, exploreRow{
			id:        int(n.ID),
			name:      n.Name,
			degree:    n.Degree(),
			member:    members[n.ID],
			neighbors: neighborSummary(g.Names(slices.Compact(slices.Clone(n.Neighbors())))),
		})
	}

	m := ExploreModel{
		rows:      rows,
		height:    15,
		triangles: res.Report.Triangles,
		filter:    res.Report.Filter,
		password:  res.Report.Password,
		strategy:  res.Report.Strategy,
	}
	m.refresh()
	return m
}

func neighborSummary(names []string) string {
	slices.Sort(names)
	if len(names) <= maxNeighborCols {
		return strings.Join(names, " ")
	}
	return strings.Join(names[:maxNeighborCols], " ") + fmt.Sprintf(" +%d", len(names)-maxNeighborCols)
}

// refresh recomputes the visible rows after a sort or filter change.
func (m *ExploreModel) refresh() {
	m.visible = make([]exploreRow, 0, len(m.rows))
	for _, r := range m.rows {
		if !m.onlyClique || r.member {
			m.visible = append(m.visible, r)
		}
	}
	slices.SortStableFunc(m.visible, func(a, b exploreRow) int {
		switch m.sortBy {
		case sortByDegree:
			if c := cmp.Compare(b.degree, a.degree); c != 0 {
				return c
			}
		case sortByName:
			return strings.Compare(a.name, b.name)
		}
		return cmp.Compare(a.id, b.id)
	})
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
	m.clampOffset()
}

func (m *ExploreModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *ExploreModel) move(delta int) {
	m.cursor = max(0, min(m.cursor+delta, len(m.visible)-1))
	m.clampOffset()
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-len(m.visible))
		case "end", "G":
			m.move(len(m.visible))
		case "s":
			m.sortBy = (m.sortBy + 1) % 3
			m.refresh()
		case "c":
			m.onlyClique = !m.onlyClique
			m.cursor, m.offset = 0, 0
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-9, 5)
		m.clampOffset()
	}
	return m, nil
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("LAN Map"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d computers · %d triangles", len(m.rows), m.triangles)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  s sort (%s)  c clique only  q quit", m.sortBy)))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.visible))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.visible[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		member := ""
		if r.member {
			member = "●"
		}
		rows = append(rows, []string{cursor, strconv.Itoa(r.id), r.name, strconv.Itoa(r.degree), member, r.neighbors})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Degree", "Party", "Neighbors").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(m.visible) {
				return lipgloss.NewStyle()
			}
			r := m.visible[idx]
			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorDim)
			} else if r.member {
				base = base.Foreground(colorRed)
			}
			if idx == m.cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(m.visible)), len(m.visible))))
	b.WriteString("  ")
	b.WriteString(StyleMember.Render(m.password))
	b.WriteString(StyleDim.Render(" (" + m.strategy + ")"))

	return b.String()
}
