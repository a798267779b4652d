package elevation

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var errEmptyTile = errors.New("empty tile")

// A TileGrid is a grid of raw elevation cells. Rows run north to south.
// Cells are kept as text because tiles mark missing data with non-numeric
// values.
type TileGrid struct {
	rows  [][]string
	width int
}

// ParseTileGrid parses a tile from CSV text, one row per line and cells
// separated by commas. Rows may have different lengths. Blank lines are
// rows without cells, so they keep the rows that follow them in place.
// Trailing blank lines are ignored.
func ParseTileGrid(r io.Reader) (*TileGrid, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			rows = append(rows, nil)
			continue
		}
		row, err := csv.NewReader(strings.NewReader(line)).Read()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(rows) > 0 && rows[len(rows)-1] == nil {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, errEmptyTile
	}
	g := &TileGrid{
		rows: rows,
	}
	for _, row := range rows {
		g.width = max(g.width, len(row))
	}
	return g, nil
}

// Width returns the length of g's longest row.
func (g *TileGrid) Width() int {
	return g.width
}

// Height returns the number of rows in g.
func (g *TileGrid) Height() int {
	return len(g.rows)
}

// Cell returns the raw cell at coord. It returns false if coord is outside g.
func (g *TileGrid) Cell(coord Coord) (string, bool) {
	if coord.Y < 0 || len(g.rows) <= coord.Y {
		return "", false
	}
	row := g.rows[coord.Y]
	if coord.X < 0 || len(row) <= coord.X {
		return "", false
	}
	return row[coord.X], true
}

// Sample returns the elevation at coord. Cells outside g and cells that are
// not numbers are represented by NaN.
func (g *TileGrid) Sample(coord Coord) float64 {
	cell, ok := g.Cell(coord)
	if !ok {
		return math.NaN()
	}
	sample, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return sample
}
