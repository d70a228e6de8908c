package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// ArtistListModel - Interactive artist selection
// =============================================================================

// ArtistListModel is the bubbletea model for picking one search result.
type ArtistListModel struct {
	Artists  []artist.Artist
	Cursor   int
	Selected *artist.Artist
	Height   int
	Offset   int
}

// NewArtistListModel creates a new artist list model.
func NewArtistListModel(artists []artist.Artist) ArtistListModel {
	return ArtistListModel{
		Artists: artists,
		Height:  15,
	}
}

func (m ArtistListModel) Init() tea.Cmd {
	return nil
}

func (m ArtistListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Artists)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Artists) == 0 {
				return m, tea.Quit
			}
			a := m.Artists[m.Cursor]
			m.Selected = &a
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ArtistListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Artist"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Artists))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		a := m.Artists[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		tags := "—"
		if len(a.Tags) > 0 {
			tags = strings.Join(a.Tags[:min(3, len(a.Tags))], ", ")
		}
		rows = append(rows, []string{cursor, a.Name, formatCount(a.Listeners), tags})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Artist", "Listeners", "Tags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
			}
			if m.Offset+row == m.Cursor {
				if col < 2 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorGray).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Artists))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatCount abbreviates large counts: 950, 12.3K, 4.1M.
func formatCount(n int64) string {
	switch {
	case n <= 0:
		return "—"
	case n < 1_000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
}
