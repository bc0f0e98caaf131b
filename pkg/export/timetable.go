package export

import (
	"fmt"
	"sort"
)

// TimetableGrid is the renderable weekly view of one class's schedule.
type TimetableGrid struct {
	Title   string
	Days    []int
	Periods int
	// Cells maps (day, period) to the rendered cell text.
	Cells map[[2]int]string
}

// NewTimetableGrid prepares an empty grid for the given week shape.
func NewTimetableGrid(title string, days []int, periods int) *TimetableGrid {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	return &TimetableGrid{
		Title:   title,
		Days:    sorted,
		Periods: periods,
		Cells:   make(map[[2]int]string),
	}
}

// Set fills one cell; later writes are appended after a " / " separator so
// shared slots remain visible instead of silently overwriting.
func (g *TimetableGrid) Set(day, period int, text string) {
	key := [2]int{day, period}
	if existing, ok := g.Cells[key]; ok && existing != "" {
		g.Cells[key] = existing + " / " + text
		return
	}
	g.Cells[key] = text
}

var dayNames = map[int]string{
	1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", 6: "周六", 7: "周日",
}

// headers renders the first row: a corner label plus one column per day.
func (g *TimetableGrid) headers() []string {
	headers := []string{"节次"}
	for _, day := range g.Days {
		name, ok := dayNames[day]
		if !ok {
			name = fmt.Sprintf("第%d天", day)
		}
		headers = append(headers, name)
	}
	return headers
}

// rows renders one row per period in period order.
func (g *TimetableGrid) rows() [][]string {
	rows := make([][]string, 0, g.Periods)
	for period := 1; period <= g.Periods; period++ {
		row := []string{fmt.Sprintf("第%d节", period)}
		for _, day := range g.Days {
			row = append(row, g.Cells[[2]int{day, period}])
		}
		rows = append(rows, row)
	}
	return rows
}
