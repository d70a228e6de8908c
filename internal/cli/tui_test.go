package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

func press(m ArtistListModel, key string) (ArtistListModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(ArtistListModel), cmd
}

func TestArtistListModel_Select(t *testing.T) {
	m := NewArtistListModel([]artist.Artist{{Name: "Radiohead"}, {Name: "Muse"}, {Name: "Coldplay"}})

	m, _ = press(m, "down")
	m, _ = press(m, "j")
	m, _ = press(m, "down") // already at the end
	m, _ = press(m, "k")
	if m.Cursor != 1 {
		t.Fatalf("Cursor = %d, want 1", m.Cursor)
	}

	m, cmd := press(m, "enter")
	if m.Selected == nil || m.Selected.Name != "Muse" {
		t.Errorf("Selected = %+v, want Muse", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestArtistListModel_Quit(t *testing.T) {
	m := NewArtistListModel([]artist.Artist{{Name: "Radiohead"}})
	m, cmd := press(m, "q")
	if m.Selected != nil {
		t.Error("quitting should not select anything")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestArtistListModel_Scroll(t *testing.T) {
	artists := make([]artist.Artist, 20)
	for i := range artists {
		artists[i] = artist.Artist{Name: strings.Repeat("a", i+1)}
	}
	m := NewArtistListModel(artists)
	next, _ := m.Update(tea.WindowSizeMsg{Height: 11})
	m = next.(ArtistListModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}

	for range 7 {
		m, _ = press(m, "down")
	}
	if m.Offset != 3 {
		t.Errorf("Offset = %d, want 3", m.Offset)
	}
}

func TestArtistListModel_View(t *testing.T) {
	m := NewArtistListModel([]artist.Artist{
		{Name: "Radiohead", Listeners: 5_000_000, Tags: []string{"alternative", "rock", "british", "experimental"}},
	})
	view := m.View()
	for _, want := range []string{"Select Artist", "Radiohead", "5.0M", "alternative, rock, british", "[1/1]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "experimental") {
		t.Error("View() should show at most three tags")
	}
}
