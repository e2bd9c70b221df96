package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	sidePanelWidth   = 32
	overlayWidth     = 44
	minCanvasWidth   = 40
	minCanvasHeight  = 10
	titleBarHeight   = 1
	inputBoxHeight   = 3
	addedRowHeight   = 1
	statusBarHeight  = 1
	borderSize       = 2
	neighborCount    = 5
	maxLegendEntries = 9
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeInput
)

type layoutDimensions struct {
	totalWidth   int
	canvasWidth  int
	canvasHeight int
	sideWidth    int
}

func (m Model) calculateLayout() layoutDimensions {
	marginX := 2
	marginY := 2

	totalWidth := m.width - marginX
	totalHeight := m.height - marginY

	canvasHeight := totalHeight - titleBarHeight - inputBoxHeight - addedRowHeight - statusBarHeight - borderSize
	if m.err != nil {
		canvasHeight--
	}
	if canvasHeight < minCanvasHeight {
		canvasHeight = minCanvasHeight
	}

	sideWidth := sidePanelWidth
	canvasWidth := totalWidth - sideWidth - 2*borderSize - 1
	if canvasWidth < minCanvasWidth {
		canvasWidth = minCanvasWidth
	}

	return layoutDimensions{
		totalWidth:   totalWidth,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
		sideWidth:    sideWidth,
	}
}

type styles struct {
	title     lipgloss.Style
	canvas    lipgloss.Style
	panel     lipgloss.Style
	overlay   lipgloss.Style
	input     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	dim       lipgloss.Style
	statusBar lipgloss.Style
	errorText lipgloss.Style
}

func newStyles() styles {
	accentColor := lipgloss.Color("#FF87D7")
	borderColor := lipgloss.Color("#5F5FAF")
	canvasBorderColor := lipgloss.Color("#FF8700")
	dimColor := lipgloss.Color("#6C6C6C")
	bgColor := lipgloss.Color("#303030")

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor),

		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(canvasBorderColor),

		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Background(bgColor).
			Padding(0, 1),

		input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1),

		header:    lipgloss.NewStyle().Bold(true).Foreground(accentColor),
		label:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		value:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		dim:       lipgloss.NewStyle().Foreground(dimColor),
		statusBar: lipgloss.NewStyle().Foreground(dimColor),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
	}
}

func (m Model) renderTitleBar(s styles, width int) string {
	title := s.title.Render("word2vec3d")

	stats := m.session.Stats()
	explained := stats.ExplainedVariance
	summary := s.dim.Render(fmt.Sprintf("%d words · %dd · PC1 %.1f%% PC2 %.1f%% PC3 %.1f%%",
		stats.Count, stats.Dimension, explained[0]*100, explained[1]*100, explained[2]*100))

	gap := width - lipgloss.Width(title) - lipgloss.Width(summary)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + summary
}

func (m Model) renderInput(s styles, width int) string {
	view := m.input.View()
	if m.mode != modeInput && m.input.Value() == "" {
		view = s.dim.Render("press i to add a word")
	}
	if m.pending > 0 {
		view += s.dim.Render(fmt.Sprintf("  embedding %d...", m.pending))
	}
	return s.input.Width(width - borderSize).Render(view)
}

func (m Model) renderAdded(s styles, width int) string {
	if len(m.added) == 0 {
		return s.dim.Render("added: none")
	}
	// Newest first so the latest additions survive truncation.
	words := make([]string, len(m.added))
	for i, word := range m.added {
		words[len(m.added)-1-i] = word
	}
	return s.dim.Render(truncateString("added: "+strings.Join(words, ", "), width))
}

func (m Model) renderContentArea(s styles, layout layoutDimensions, points []session.Point) string {
	canvasContent := renderCanvas(m.scene(points), layout.canvasWidth, layout.canvasHeight)
	canvasBox := s.canvas.
		Width(layout.canvasWidth).
		Height(layout.canvasHeight).
		Render(canvasContent)

	if m.showMetadata && m.validSelection(points) {
		canvasBox = m.overlayMetadataPanel(canvasBox, s, layout, points)
	}

	sidePanel := s.panel.
		Width(layout.sideWidth - borderSize).
		Height(layout.canvasHeight).
		Render(m.renderLegend(s, layout.sideWidth-2*borderSize, points))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasBox, " ", sidePanel)
}

// legendEntry is one category row in the side panel.
type legendEntry struct {
	category string
	color    string
	count    int
}

func (m Model) legendEntries(points []session.Point) []legendEntry {
	counts := make(map[string]int)
	for _, point := range points {
		counts[point.Category]++
	}

	var entries []legendEntry
	for _, category := range m.session.Categories() {
		color, ok := m.palette[category]
		if category == preload.UserCategory {
			color = preload.UserColor
		} else if !ok {
			color = preload.FallbackColor
		}
		entries = append(entries, legendEntry{category: category, color: color, count: counts[category]})
	}
	return entries
}

func (m Model) renderLegend(s styles, width int, points []session.Point) string {
	lines := []string{s.header.Render("Categories")}

	for i, entry := range m.legendEntries(points) {
		key := " "
		if i < maxLegendEntries {
			key = fmt.Sprintf("%d", i+1)
		}

		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.color)).Render("■")
		name := truncateString(entry.category, width-10)
		line := fmt.Sprintf("%s %s %s %s", s.label.Render(key), swatch, s.value.Render(name), s.dim.Render(fmt.Sprintf("(%d)", entry.count)))
		if m.hidden[entry.category] {
			line = s.dim.Render(fmt.Sprintf("%s ■ %s (%d) hidden", key, name, entry.count))
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", s.header.Render("View"))
	lines = append(lines,
		s.label.Render("yaw ")+s.value.Render(fmt.Sprintf("%4.0f°", m.camera.yaw*180/math.Pi)),
		s.label.Render("pitch ")+s.value.Render(fmt.Sprintf("%4.0f°", m.camera.pitch*180/math.Pi)),
		s.label.Render("zoom ")+s.value.Render(fmt.Sprintf("%.2fx", m.camera.zoom)),
	)
	if m.autoRotate {
		lines = append(lines, s.dim.Render("auto-rotate on"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) overlayMetadataPanel(base string, s styles, layout layoutDimensions, points []session.Point) string {
	contentWidth := overlayWidth - 2*borderSize
	contentHeight := layout.canvasHeight - 4
	if contentHeight < 4 {
		contentHeight = 4
	}

	metadataContent := m.renderMetadata(s, points[m.selectedIndex], contentWidth, contentHeight)
	panel := s.overlay.
		Width(overlayWidth - borderSize).
		Render(metadataContent)

	return overlayAt(base, panel, layout.canvasWidth+borderSize-overlayWidth-1, 1)
}

// renderMetadata generates the metadata panel content for the selected point.
func (m Model) renderMetadata(s styles, selected session.Point, panelWidth, panelHeight int) string {
	var contentLines []string

	contentLines = append(contentLines, s.header.Render("Selected"))
	contentLines = append(contentLines, s.value.Render(truncateString(selected.Label, panelWidth)))
	contentLines = append(contentLines, s.label.Render("Category: ")+s.value.Render(selected.Category))
	contentLines = append(contentLines, s.label.Render("PC: ")+s.value.Render(fmt.Sprintf("%.3f %.3f %.3f",
		selected.Projection[0], selected.Projection[1], selected.Projection[2])))
	contentLines = append(contentLines, s.label.Render("Norm: ")+s.value.Render(fmt.Sprintf("%.3f %.3f %.3f",
		selected.Normalized[0], selected.Normalized[1], selected.Normalized[2])))
	contentLines = append(contentLines, "")

	vector := m.session.Entry(selected.Index).Vector
	if len(vector) > 0 {
		contentLines = append(contentLines, s.label.Render("Dim: ")+s.value.Render(fmt.Sprintf("%d", len(vector))))
		contentLines = append(contentLines, s.label.Render("Min/Max: ")+s.value.Render(fmt.Sprintf("%.3f / %.3f", floats.Min(vector), floats.Max(vector))))
		contentLines = append(contentLines, s.label.Render("Mean: ")+s.value.Render(fmt.Sprintf("%.4f", stat.Mean(vector, nil))))
		contentLines = append(contentLines, s.label.Render("L2 norm: ")+s.value.Render(fmt.Sprintf("%.4f", floats.Norm(vector, 2))))
		contentLines = append(contentLines, "")
	}

	nearestNeighbors := m.session.Neighbors(selected.Index, neighborCount)
	if len(nearestNeighbors) > 0 {
		contentLines = append(contentLines, s.header.Render("Nearest"))
		for _, neighbor := range nearestNeighbors {
			contentLines = append(contentLines, fmt.Sprintf("%.3f %s", neighbor.Similarity, truncateString(neighbor.Label, panelWidth-7)))
		}
	}

	if len(contentLines) > panelHeight {
		contentLines = contentLines[:panelHeight]
	}
	return strings.Join(contentLines, "\n")
}

func overlayAt(base, overlay string, x, y int) string {
	bgLines, bgWidth := getLines(base)
	fgLines, fgWidth := getLines(overlay)
	bgHeight := len(bgLines)
	fgHeight := len(fgLines)

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return overlay
	}

	if x > bgWidth-fgWidth {
		x = bgWidth - fgWidth
	}
	if y > bgHeight-fgHeight {
		y = bgHeight - fgHeight
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.StringWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.StringWidth(fgLine)

		right := ansi.TruncateLeft(bgLine, pos, "")
		lineWidth := ansi.StringWidth(bgLine)
		rightWidth := ansi.StringWidth(right)
		if rightWidth <= lineWidth-pos {
			b.WriteString(strings.Repeat(" ", lineWidth-rightWidth-pos))
		}
		b.WriteString(right)
	}

	return b.String()
}

func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		w := ansi.StringWidth(l)
		if widest < w {
			widest = w
		}
	}
	return lines, widest
}

func (m Model) renderStatusBar(s styles, width int) string {
	var help string

	if m.mode == modeInput {
		help = "Enter: add │ Esc: done"
	} else {
		help = "i: input │ ←→↑↓: rotate │ +/-: zoom │ R: auto │ Tab: select │ /: info │ L: labels │ 1-9: legend │ 0: all │ q: quit"
	}

	version := m.version
	padding := width - lipgloss.Width(help) - lipgloss.Width(version)
	if padding < 1 {
		help = truncateString(help, width-lipgloss.Width(version)-1)
		padding = max(1, width-lipgloss.Width(help)-lipgloss.Width(version))
	}

	return s.statusBar.Render(help + strings.Repeat(" ", padding) + version)
}

func (m Model) renderError(s styles) string {
	if m.err == nil {
		return ""
	}
	return s.errorText.Render("Error: " + m.err.Error())
}

// truncateString shortens text to maxWidth display cells, marking the cut
// with an ellipsis.
func truncateString(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text
	}
	return truncate.StringWithTail(text, uint(maxWidth), "…")
}
