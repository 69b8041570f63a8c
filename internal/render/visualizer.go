// Package render turns year progress into display frames. The visualizer
// is pure string logic; the Gateway implementations push frames to the
// panel (or record them, in tests).
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/mode"
)

// Frame symbols per visualization.
const (
	symbolEmpty      = " "
	symbolHourglass  = "."
	symbolLevel      = "="
	symbolPie        = "*"
	symbolSpiral     = "+"
	symbolCrossedOut = "x"
	symbolDayToCome  = "."
	crossoutPadLeft  = 3
	crossoutPadRight = 3
)

// Visualizer renders year progress into a cols x rows character grid.
// Every renderer returns exactly rows lines of cols characters.
type Visualizer struct {
	cols int
	rows int
}

// NewVisualizer creates a visualizer for the given grid geometry.
func NewVisualizer(cols, rows int) *Visualizer {
	return &Visualizer{cols: cols, rows: rows}
}

// Render draws the named mode.
func (v *Visualizer) Render(m mode.Mode, p clock.YearProgress) (string, error) {
	switch m {
	case mode.ModeHourglass:
		return v.Hourglass(p.DaysElapsed, p.DaysTotal), nil
	case mode.ModeLevel:
		return v.Level(p.DaysElapsed, p.DaysTotal), nil
	case mode.ModePieChart:
		return v.PieChart(p.DaysElapsed, p.DaysTotal), nil
	case mode.ModeSpiral:
		return v.Spiral(p.DaysElapsed, p.DaysTotal), nil
	case mode.ModeCrossout:
		return v.Crossout(p.DaysElapsed, p.DaysTotal), nil
	default:
		return "", fmt.Errorf("unknown mode %q", m)
	}
}

// Hourglass draws twin day pyramids: the days to come sift down from the
// top half into the elapsed days piling up at the bottom.
func (v *Visualizer) Hourglass(elapsed, total int) string {
	elapsed, total = v.clampDays(elapsed, total)
	remaining := total - elapsed

	top := pyramidRows(remaining, v.cols, symbolHourglass)
	reverseRows(top)
	bottom := pyramidRows(elapsed, v.cols, symbolHourglass)

	grid := make([]string, 0, v.rows)
	grid = append(grid, top...)
	for i := v.rows - len(top) - len(bottom); i > 0; i-- {
		grid = append(grid, strings.Repeat(symbolEmpty, v.cols))
	}
	grid = append(grid, bottom...)

	for i, row := range grid {
		grid[i] = v.centerRow(row)
	}
	return v.finish(grid)
}

// pyramidRows lays n symbols into rows of width 2, 4, 6, ... and then
// tucks the leftover row next to the row closest to its length, so the
// silhouette stays triangular.
func pyramidRows(n, cols int, symbol string) []string {
	var rows []string
	width := 2
	for left := n; left > 0; {
		w := width
		if w > cols {
			w = cols
		}
		if w > left {
			w = left
		}
		rows = append(rows, strings.Repeat(symbol, w))
		left -= w
		width += 2
	}
	return moveLastToClosest(rows)
}

func moveLastToClosest(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}
	last := rows[len(rows)-1]
	rest := rows[:len(rows)-1]
	target := 0
	minDiff := -1
	for i, row := range rest {
		diff := len(row) - len(last)
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			target = i
		}
		if diff == 0 {
			break
		}
	}
	out := make([]string, 0, len(rows))
	out = append(out, rest[:target+1]...)
	out = append(out, last)
	out = append(out, rest[target+1:]...)
	return out
}

func reverseRows(rows []string) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// Level draws a tank filling from the bottom, one full row per
// floor(elapsed/total * rows).
func (v *Visualizer) Level(elapsed, total int) string {
	fill := 0
	if total > 0 && elapsed > 0 {
		fill = elapsed * v.rows / total
		if fill > v.rows {
			fill = v.rows
		}
	}

	grid := make([]string, 0, v.rows)
	for i := 0; i < v.rows-fill; i++ {
		grid = append(grid, strings.Repeat(symbolEmpty, v.cols))
	}
	for i := 0; i < fill; i++ {
		grid = append(grid, strings.Repeat(symbolLevel, v.cols))
	}
	return v.finish(grid)
}

// PieChart sweeps a sector clockwise from 12 o'clock across the whole
// rectangle, proportional to elapsed/total.
func (v *Visualizer) PieChart(elapsed, total int) string {
	elapsed, total = v.clampDays(elapsed, total)
	progress := 0.0
	if total > 0 {
		progress = float64(elapsed) / float64(total)
	}
	angleFill := 2 * math.Pi * progress
	cx := float64(v.cols-1) / 2
	cy := float64(v.rows-1) / 2

	grid := make([]string, 0, v.rows)
	var row strings.Builder
	for y := 0; y < v.rows; y++ {
		row.Reset()
		for x := 0; x < v.cols; x++ {
			dx := float64(x) - cx
			dy := cy - float64(y)
			theta := math.Atan2(dx, dy)
			if theta < 0 {
				theta += 2 * math.Pi
			}
			if theta <= angleFill {
				row.WriteString(symbolPie)
			} else {
				row.WriteString(symbolEmpty)
			}
		}
		grid = append(grid, row.String())
	}
	return v.finish(grid)
}

// Spiral fills the rectangle along an inward clockwise spiral,
// elapsed/total of the way around.
func (v *Visualizer) Spiral(elapsed, total int) string {
	totalCells := v.cols * v.rows
	if total > totalCells {
		total = totalCells
	}
	fillCells := 0
	if total > 0 {
		fillCells = elapsed * totalCells / total
	}
	if fillCells > totalCells {
		fillCells = totalCells
	}

	grid := make([][]byte, v.rows)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(symbolEmpty, v.cols))
	}

	top, left := 0, 0
	bottom, right := v.rows-1, v.cols-1
	count := 0
	for top <= bottom && left <= right && count < totalCells {
		for c := left; c <= right; c++ {
			if count < fillCells {
				grid[top][c] = symbolSpiral[0]
			}
			count++
			if count >= totalCells {
				break
			}
		}
		top++
		for r := top; r <= bottom; r++ {
			if count < fillCells {
				grid[r][right] = symbolSpiral[0]
			}
			count++
			if count >= totalCells {
				break
			}
		}
		right--
		if top <= bottom {
			for c := right; c >= left; c-- {
				if count < fillCells {
					grid[bottom][c] = symbolSpiral[0]
				}
				count++
				if count >= totalCells {
					break
				}
			}
			bottom--
		}
		if left <= right {
			for r := bottom; r >= top; r-- {
				if count < fillCells {
					grid[r][left] = symbolSpiral[0]
				}
				count++
				if count >= totalCells {
					break
				}
			}
			left++
		}
	}

	rows := make([]string, v.rows)
	for y, row := range grid {
		rows[y] = string(row)
	}
	return v.finish(rows)
}

// Crossout fills a centered block left to right, top to bottom: elapsed
// days crossed out, days to come still dotted.
func (v *Visualizer) Crossout(elapsed, total int) string {
	area := v.cols - crossoutPadLeft - crossoutPadRight
	if area <= 0 {
		return v.finish(nil)
	}
	totalCells := total
	if max := v.rows * v.cols; totalCells > max {
		totalCells = max
	}
	if elapsed > totalCells {
		elapsed = totalCells
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if totalCells < 0 {
		totalCells = 0
	}

	cells := strings.Repeat(symbolCrossedOut, elapsed) + strings.Repeat(symbolDayToCome, totalCells-elapsed)
	var content []string
	for i := 0; i < len(cells) && len(content) < v.rows; i += area {
		end := i + area
		if end > len(cells) {
			end = len(cells)
		}
		chunk := cells[i:end]
		row := strings.Repeat(symbolEmpty, crossoutPadLeft) +
			chunk +
			strings.Repeat(symbolEmpty, area-len(chunk)+crossoutPadRight)
		content = append(content, row)
	}

	grid := make([]string, 0, v.rows)
	if pad := v.rows - len(content); pad > 0 {
		topPad := pad / 2
		for i := 0; i < topPad; i++ {
			grid = append(grid, strings.Repeat(symbolEmpty, v.cols))
		}
		grid = append(grid, content...)
	} else {
		grid = append(grid, content...)
	}
	return v.finish(grid)
}

// clampDays keeps totals within the cell budget and elapsed within the
// total, mirroring what the grid can physically show.
func (v *Visualizer) clampDays(elapsed, total int) (int, int) {
	if cells := v.cols * v.rows; total > cells {
		total = cells
	}
	if total < 0 {
		total = 0
	}
	if elapsed > total {
		elapsed = total
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, total
}

// centerRow pads a row's content to the full width, biased left.
func (v *Visualizer) centerRow(row string) string {
	content := strings.TrimRight(row, symbolEmpty)
	pad := v.cols - len(content)
	left := pad / 2
	return strings.Repeat(symbolEmpty, left) + content + strings.Repeat(symbolEmpty, pad-left)
}

// finish normalizes the grid to exactly rows lines of cols characters.
func (v *Visualizer) finish(grid []string) string {
	blank := strings.Repeat(symbolEmpty, v.cols)
	for len(grid) < v.rows {
		grid = append(grid, blank)
	}
	if len(grid) > v.rows {
		grid = grid[:v.rows]
	}
	return strings.Join(grid, "\n")
}
