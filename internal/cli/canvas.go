package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chartkit/pkg/scene"
	"github.com/matzehuels/chartkit/pkg/surface"
)

// cell is one character of the terminal canvas.
type cell struct {
	r     rune
	color string
}

// canvas rasterizes surface items onto a grid of terminal cells. Surface
// coordinates are scaled so the whole surface fits the grid.
type canvas struct {
	cols, rows int
	sx, sy     float64
	cells      [][]cell
}

func newCanvas(cols, rows int, width, height float64) *canvas {
	cols, rows = max(cols, 1), max(rows, 1)
	cv := &canvas{cols: cols, rows: rows, sx: 1, sy: 1}
	if width > 0 {
		cv.sx = float64(cols) / width
	}
	if height > 0 {
		cv.sy = float64(rows) / height
	}
	cv.cells = make([][]cell, rows)
	for i := range cv.cells {
		cv.cells[i] = make([]cell, cols)
		for j := range cv.cells[i] {
			cv.cells[i][j] = cell{r: ' '}
		}
	}
	return cv
}

// minOpacity hides elements that are mostly faded in or out.
const minOpacity = 0.15

// draw paints every visible item in surface paint order.
func (cv *canvas) draw(items []surface.Item) {
	for _, it := range items {
		a := it.Attrs
		if a.Opacity < minOpacity {
			continue
		}
		color := a.Fill
		if color == "" || color == "none" {
			color = a.Stroke
		}
		switch it.Kind {
		case scene.KindRect:
			cv.fillRect(a.X, a.Y, a.W, a.H, color)
		case scene.KindCircle:
			cv.plot(a.X, a.Y, '●', color)
		case scene.KindNode:
			cv.plot(a.X, a.Y, '◉', color)
			cv.text(a.X+a.R, a.Y, " "+a.Text, color)
		case scene.KindPath, scene.KindPolygon, scene.KindEdge:
			for _, sub := range a.Paths {
				cv.polyline(sub, '•', a.Stroke)
			}
		case scene.KindLine:
			cv.polyline([]scene.Point{{X: a.X, Y: a.Y}, {X: a.X2, Y: a.Y2}}, '·', "#666666")
		case scene.KindText:
			x := a.X
			switch a.Anchor {
			case "middle":
				x -= float64(len([]rune(a.Text))) / 2 / cv.sx
			case "end":
				x -= float64(len([]rune(a.Text))) / cv.sx
			}
			cv.text(x, a.Y, a.Text, "")
		}
	}
}

func (cv *canvas) cellAt(x, y float64) (int, int, bool) {
	col := int(math.Floor(x * cv.sx))
	row := int(math.Floor(y * cv.sy))
	if col < 0 || row < 0 || col >= cv.cols || row >= cv.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (cv *canvas) plot(x, y float64, r rune, color string) {
	if col, row, ok := cv.cellAt(x, y); ok {
		cv.cells[row][col] = cell{r: r, color: color}
	}
}

// fillRect fills every cell whose center lies inside the rect. A rect too
// thin to cover a center still marks the cell it starts in.
func (cv *canvas) fillRect(x, y, w, h float64, color string) {
	if w <= 0 || h <= 0 {
		return
	}
	filled := false
	for row := 0; row < cv.rows; row++ {
		cy := (float64(row) + 0.5) / cv.sy
		if cy < y || cy > y+h {
			continue
		}
		for col := 0; col < cv.cols; col++ {
			cx := (float64(col) + 0.5) / cv.sx
			if cx < x || cx > x+w {
				continue
			}
			cv.cells[row][col] = cell{r: '█', color: color}
			filled = true
		}
	}
	if !filled {
		cv.plot(x, y+h-1/cv.sy/2, '▁', color)
	}
}

// polyline steps along each segment in cell-sized increments.
func (cv *canvas) polyline(pts []scene.Point, r rune, color string) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := (b.X-a.X)*cv.sx, (b.Y-a.Y)*cv.sy
		steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
		for s := 0; s <= steps; s++ {
			t := 0.0
			if steps > 0 {
				t = float64(s) / float64(steps)
			}
			cv.plot(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, r, color)
		}
	}
	if len(pts) == 1 {
		cv.plot(pts[0].X, pts[0].Y, r, color)
	}
}

func (cv *canvas) text(x, y float64, s, color string) {
	col, row, ok := cv.cellAt(x, y)
	if !ok {
		return
	}
	for _, r := range s {
		if col >= cv.cols {
			break
		}
		cv.cells[row][col] = cell{r: r, color: color}
		col++
	}
}

// String renders the grid, styling runs of same-colored cells together.
func (cv *canvas) String() string {
	var b strings.Builder
	for i, row := range cv.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].color == row[start].color {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:j] {
				run.WriteRune(c.r)
			}
			if color := row[start].color; color != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			start = j
		}
	}
	return b.String()
}
