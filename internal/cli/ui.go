package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/artistgraph/pkg/artist"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, selection
	colorYellow = lipgloss.Color("220") // warnings
	colorBlue   = lipgloss.Color("75")  // links and commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleLabel       = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusOut receives human-oriented status lines. Graph JSON and other
// machine-readable results go to the command's stdout instead, so piping
// `artistgraph graph X | jq` never sees these.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Status Lines
// =============================================================================

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
)

var statusIcons = map[statusKind]string{
	statusInfo:    lipgloss.NewStyle().Foreground(colorGray).Render("›"),
	statusSuccess: lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	statusWarning: lipgloss.NewStyle().Foreground(colorYellow).Render("!"),
}

func printStatus(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	fmt.Fprintln(statusOut, statusIcons[kind]+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile points at a file that was written.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints the size of g and its center on one line:
//
//	42 artists · 97 links · center Radiohead
func printStats(g *artist.GraphData) {
	parts := []string{
		StyleNumber.Render(fmt.Sprint(len(g.Nodes))) + StyleDim.Render(" artists"),
		StyleNumber.Render(fmt.Sprint(len(g.Edges))) + StyleDim.Render(" links"),
	}
	if g.Center != nil {
		parts = append(parts, StyleDim.Render("center ")+StyleHighlight.Render(g.Center.Name))
	}
	fmt.Fprintln(statusOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
