package tui

import (
	"sort"
	"strings"

	"github.com/dora-ryukyu/word2vec3d/projection"
	"github.com/dora-ryukyu/word2vec3d/session"

	"github.com/charmbracelet/lipgloss"
)

const (
	labelMaxWidth = 12
	hiddenColor   = "#3a3a3a"
	axisColor     = "#5f5f5f"
)

// canvasCell represents a single cell in the rendering grid with its character and styling.
type canvasCell struct {
	char  rune
	style lipgloss.Style
}

// canvasStyles holds all the lipgloss styles used for canvas rendering.
type canvasStyles struct {
	selectedDotStyle   lipgloss.Style
	selectedLabelStyle lipgloss.Style
	neighborLabelStyle lipgloss.Style
	lineStyle          lipgloss.Style
	axisStyle          lipgloss.Style
	axisLabelStyle     lipgloss.Style
	hiddenStyle        lipgloss.Style
}

func newCanvasStyles() canvasStyles {
	return canvasStyles{
		selectedDotStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		selectedLabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("118")).Bold(true),
		neighborLabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true),
		lineStyle:          lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		axisStyle:          lipgloss.NewStyle().Foreground(lipgloss.Color(axisColor)),
		axisLabelStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		hiddenStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color(hiddenColor)),
	}
}

// scene is everything the canvas needs for one frame.
type scene struct {
	points     []session.Point
	hidden     map[string]bool
	selected   int
	neighbors  map[int]bool
	showLabels bool
	camera     camera
}

// gridPoint represents a point positioned on the canvas grid.
type gridPoint struct {
	column, row int
	depth       float64
	point       session.Point
}

func newCanvasGrid(canvasWidth, canvasHeight int) [][]canvasCell {
	canvasGrid := make([][]canvasCell, canvasHeight)
	for rowIndex := range canvasGrid {
		canvasGrid[rowIndex] = make([]canvasCell, canvasWidth)
		for columnIndex := range canvasGrid[rowIndex] {
			canvasGrid[rowIndex][columnIndex] = canvasCell{char: ' ', style: lipgloss.NewStyle()}
		}
	}
	return canvasGrid
}

// renderCanvas draws the axes and every point of sc, far points first.
func renderCanvas(sc scene, canvasWidth, canvasHeight int) string {
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return ""
	}
	canvasGrid := newCanvasGrid(canvasWidth, canvasHeight)
	styles := newCanvasStyles()

	if len(sc.points) == 0 {
		writeText(canvasGrid, canvasHeight/2, (canvasWidth-len(emptyCanvasMessage))/2, emptyCanvasMessage, lipgloss.NewStyle())
		return canvasGridToString(canvasGrid)
	}

	drawAxes(canvasGrid, sc.camera, styles)

	gridPoints := placePoints(sc, canvasWidth, canvasHeight)

	var selectedPoint *gridPoint
	for i := range gridPoints {
		if gridPoints[i].point.Index == sc.selected {
			selectedPoint = &gridPoints[i]
		}
	}
	if selectedPoint != nil {
		for _, target := range gridPoints {
			if sc.neighbors[target.point.Index] {
				drawLineOnCanvas(canvasGrid, selectedPoint.column, selectedPoint.row, target.column, target.row, styles.lineStyle)
			}
		}
	}

	for _, point := range sortByRenderPriority(gridPoints, sc) {
		drawPoint(canvasGrid, point, sc, styles)
	}

	return canvasGridToString(canvasGrid)
}

const emptyCanvasMessage = "No embeddings yet - press i to add a word"

// drawAxes draws the three principal axes through the cube centre and labels
// their positive ends.
func drawAxes(canvasGrid [][]canvasCell, cam camera, styles canvasStyles) {
	height, width := len(canvasGrid), len(canvasGrid[0])
	originColumn, originRow, _, _ := cam.screenCell(projection.Point3D{}, width, height)

	for axis, name := range [projection.Dimensions]string{"PC1", "PC2", "PC3"} {
		var negative, positive projection.Point3D
		negative[axis], positive[axis] = -1, 1

		startColumn, startRow, _, _ := cam.screenCell(negative, width, height)
		endColumn, endRow, _, _ := cam.screenCell(positive, width, height)
		drawLineOnCanvas(canvasGrid, startColumn, startRow, endColumn, endRow, styles.axisStyle)

		labelColumn := endColumn + 1
		if endColumn < originColumn {
			labelColumn = endColumn - len(name)
		}
		labelRow := endRow
		if endRow == originRow && endColumn == originColumn {
			labelRow--
		}
		writeText(canvasGrid, labelRow, labelColumn, name, styles.axisLabelStyle)
	}
}

func placePoints(sc scene, canvasWidth, canvasHeight int) []gridPoint {
	gridPoints := make([]gridPoint, 0, len(sc.points))
	for _, point := range sc.points {
		column, row, depth, ok := sc.camera.screenCell(worldPosition(point.Normalized), canvasWidth, canvasHeight)
		if !ok {
			continue
		}
		gridPoints = append(gridPoints, gridPoint{column: column, row: row, depth: depth, point: point})
	}
	return gridPoints
}

// sortByRenderPriority orders points so that highlighted ones draw last and,
// within a priority, nearer points draw over farther ones.
func sortByRenderPriority(gridPoints []gridPoint, sc scene) []gridPoint {
	priority := func(point gridPoint) int {
		switch {
		case point.point.Index == sc.selected:
			return 3
		case sc.neighbors[point.point.Index]:
			return 2
		case sc.hidden[point.point.Category]:
			return 0
		default:
			return 1
		}
	}

	sorted := make([]gridPoint, len(gridPoints))
	copy(sorted, gridPoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := priority(sorted[i]), priority(sorted[j])
		if pi != pj {
			return pi < pj
		}
		return sorted[i].depth > sorted[j].depth
	})
	return sorted
}

func drawPoint(canvasGrid [][]canvasCell, point gridPoint, sc scene, styles canvasStyles) {
	dotStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(point.point.Color))
	labelStyle := dotStyle
	marker := "●"

	switch {
	case point.point.Index == sc.selected:
		marker = "◉"
		dotStyle = styles.selectedDotStyle
		labelStyle = styles.selectedLabelStyle
	case sc.neighbors[point.point.Index]:
		marker = "◆"
		labelStyle = styles.neighborLabelStyle
	case sc.hidden[point.point.Category]:
		marker = "·"
		dotStyle = styles.hiddenStyle
	}

	writeText(canvasGrid, point.row, point.column, marker, dotStyle)

	showLabel := point.point.Index == sc.selected || sc.neighbors[point.point.Index] ||
		(sc.showLabels && !sc.hidden[point.point.Category])
	if showLabel {
		writeText(canvasGrid, point.row, point.column+2, truncateString(point.point.Label, labelMaxWidth), labelStyle)
	}
}

// writeText places text on one row starting at column, clipping at both edges.
func writeText(canvasGrid [][]canvasCell, row, column int, text string, style lipgloss.Style) {
	if row < 0 || row >= len(canvasGrid) {
		return
	}
	offset := 0
	for _, character := range text {
		if c := column + offset; c >= 0 && c < len(canvasGrid[row]) {
			canvasGrid[row][c] = canvasCell{char: character, style: style}
		}
		offset++
	}
}

// canvasGridToString converts the 2D canvas grid into a renderable string.
func canvasGridToString(canvasGrid [][]canvasCell) string {
	var outputBuilder strings.Builder

	for rowIndex, gridRow := range canvasGrid {
		for _, cell := range gridRow {
			outputBuilder.WriteString(cell.style.Render(string(cell.char)))
		}
		if rowIndex < len(canvasGrid)-1 {
			outputBuilder.WriteString("\n")
		}
	}

	return outputBuilder.String()
}

// drawLineOnCanvas uses Bresenham's line algorithm to draw a line between two
// points. Only empty cells are painted so lines never cover markers or labels.
func drawLineOnCanvas(canvasGrid [][]canvasCell, startX, startY, endX, endY int, lineStyle lipgloss.Style) {
	deltaX := absoluteValue(endX - startX)
	deltaY := absoluteValue(endY - startY)

	stepDirectionX := 1
	if startX > endX {
		stepDirectionX = -1
	}
	stepDirectionY := 1
	if startY > endY {
		stepDirectionY = -1
	}

	errorTerm := deltaX - deltaY
	currentX, currentY := startX, startY

	for {
		if currentY >= 0 && currentY < len(canvasGrid) && currentX >= 0 && currentX < len(canvasGrid[0]) {
			if canvasGrid[currentY][currentX].char == ' ' {
				canvasGrid[currentY][currentX] = canvasCell{char: '·', style: lineStyle}
			}
		}

		if currentX == endX && currentY == endY {
			break
		}

		doubledError := 2 * errorTerm
		if doubledError > -deltaY {
			errorTerm -= deltaY
			currentX += stepDirectionX
		}
		if doubledError < deltaX {
			errorTerm += deltaX
			currentY += stepDirectionY
		}
	}
}

// absoluteValue returns the absolute value of an integer.
func absoluteValue(number int) int {
	if number < 0 {
		return -number
	}
	return number
}
