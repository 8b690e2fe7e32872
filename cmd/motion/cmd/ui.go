package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/go-drift/motion/cmd/motion/internal/scenario"
)

var (
	colorCyan   = lipgloss.Color("36")  // cycles
	colorGreen  = lipgloss.Color("35")  // measurement
	colorYellow = lipgloss.Color("220") // registration
	colorRed    = lipgloss.Color("167") // removal
	colorBlue   = lipgloss.Color("75")  // snapshots
	colorWhite  = lipgloss.Color("255") // element names
	colorDim    = lipgloss.Color("240") // details
)

var (
	styleCycle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleSnapshot = lipgloss.NewStyle().Foreground(colorBlue)
	styleMeasure  = lipgloss.NewStyle().Foreground(colorGreen)
	styleRegister = lipgloss.NewStyle().Foreground(colorYellow)
	styleRemove   = lipgloss.NewStyle().Foreground(colorRed)
	styleElement  = lipgloss.NewStyle().Foreground(colorWhite)
	styleDetail   = lipgloss.NewStyle().Foreground(colorDim)
	stylePlain    = lipgloss.NewStyle()
)

const indent = "  "

func kindStyle(k scenario.EventKind) lipgloss.Style {
	switch k {
	case scenario.EventCycle:
		return styleCycle
	case scenario.EventSnapshot, scenario.EventSync:
		return styleSnapshot
	case scenario.EventMeasure, scenario.EventReady, scenario.EventFlush:
		return styleMeasure
	case scenario.EventRegister:
		return styleRegister
	case scenario.EventRemove:
		return styleRemove
	case scenario.EventSkip, scenario.EventCommit:
		return styleDetail
	default:
		return stylePlain
	}
}

// formatEvent renders one trace line. Cycle markers start a block; every
// other event is indented beneath its cycle.
func formatEvent(e scenario.Event, color bool) string {
	if !color {
		if e.Kind == scenario.EventCycle {
			return e.String()
		}
		return indent + e.String()
	}

	parts := make([]string, 0, 4)
	if e.Group != "" {
		parts = append(parts, styleDetail.Render(e.Group))
	}
	parts = append(parts, kindStyle(e.Kind).Render(string(e.Kind)))
	if e.Element != "" {
		parts = append(parts, styleElement.Render(e.Element))
	}
	if e.Detail != "" {
		if e.Kind == scenario.EventCycle {
			parts = append(parts, styleCycle.Render(e.Detail))
		} else {
			parts = append(parts, styleDetail.Render(e.Detail))
		}
	}
	line := strings.Join(parts, " ")
	if e.Kind == scenario.EventCycle {
		return line
	}
	return indent + line
}

func printTrace(w io.Writer, trace *scenario.Trace, color bool) error {
	for _, e := range trace.Events {
		if _, err := fmt.Fprintln(w, formatEvent(e, color)); err != nil {
			return err
		}
	}
	return nil
}
