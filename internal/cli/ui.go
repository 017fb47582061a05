package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chartkit/pkg/data"
	"github.com/matzehuels/chartkit/pkg/pipeline"
)

// stdout receives all status output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// Palette. play's transition table colors entering counts green, exiting
// counts red and skipped points yellow.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders chart titles and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink renders URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "

	// maxListedPoints caps the indices shown per skipped field.
	maxListedPoints = 5
)

func printLine(icon lipgloss.Style, glyph, msg string) {
	fmt.Fprintln(stdout, icon.Render(glyph)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess, iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError, iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning, iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo, iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints one written artifact path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints what a render pass produced and which stages were served
// from cache, e.g. "42 points · 57 elements · scene cached · artifacts fresh".
func printStats(s pipeline.Stats, ci pipeline.CacheInfo) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d points", s.Points)),
		StyleDim.Render(fmt.Sprintf("%d elements", s.Elements)),
		stageStatus("scene", ci.SceneHit),
		stageStatus("artifacts", ci.RenderHit),
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(separator)))
}

func stageStatus(stage string, hit bool) string {
	if hit {
		return styleCached.Render(stage + " cached")
	}
	return styleComputed.Render(stage + " fresh")
}

// printSkipped summarizes the points the layout dropped, one line per
// missing field, instead of one warning per point.
func printSkipped(ws []data.Warning) {
	if len(ws) == 0 {
		return
	}
	byField := make(map[string][]int)
	for _, w := range ws {
		byField[w.Field] = append(byField[w.Field], w.Index)
	}
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		idx := byField[f]
		sort.Ints(idx)
		shown := make([]string, 0, maxListedPoints)
		for i, n := range idx {
			if i == maxListedPoints {
				shown = append(shown, fmt.Sprintf("+%d more", len(idx)-i))
				break
			}
			shown = append(shown, fmt.Sprint(n))
		}
		noun := "points"
		if len(idx) == 1 {
			noun = "point"
		}
		printWarning("%d %s skipped, missing %q (%s)", len(idx), noun, f, strings.Join(shown, ", "))
	}
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
