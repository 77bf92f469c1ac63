package template

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"mlextractor/internal"
)

type mergeRange struct {
	minCol, minRow, maxCol, maxRow int
}

func (m mergeRange) contains(row, col int) bool {
	return row >= m.minRow && row <= m.maxRow && col >= m.minCol && col <= m.maxCol
}

// Grid reads and writes worksheet cells while resolving merged ranges to
// their top-left anchor. A write floor, once set, rejects writes above it.
type Grid struct {
	file   *excelize.File
	sheet  string
	merges []mergeRange
	floor  int
}

func NewGrid(f *excelize.File, sheet string) (*Grid, error) {
	cells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged ranges: %w", err)
	}

	merges := make([]mergeRange, 0, len(cells))
	for _, mc := range cells {
		minCol, minRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		maxCol, maxRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		merges = append(merges, mergeRange{minCol: minCol, minRow: minRow, maxCol: maxCol, maxRow: maxRow})
	}

	return &Grid{file: f, sheet: sheet, merges: merges}, nil
}

// SetFloor arms the write guard: Write refuses rows above row.
func (g *Grid) SetFloor(row int) {
	g.floor = row
}

func (g *Grid) Sheet() string {
	return g.sheet
}

// anchor maps a coordinate inside a merged range to the range's top-left
// cell; coordinates outside any range map to themselves.
func (g *Grid) anchor(row, col int) (int, int) {
	for _, m := range g.merges {
		if m.contains(row, col) {
			return m.minRow, m.minCol
		}
	}
	return row, col
}

// Read returns the cell value, following merged ranges to their anchor.
func (g *Grid) Read(row, col int) (string, error) {
	aRow, aCol := g.anchor(row, col)
	axis, err := excelize.CoordinatesToCellName(aCol, aRow)
	if err != nil {
		return "", err
	}
	value, err := g.file.GetCellValue(g.sheet, axis)
	if err != nil {
		return "", fmt.Errorf("read cell %s: %w", axis, err)
	}
	return value, nil
}

// Empty reports whether the cell (or its merge anchor) holds no value.
func (g *Grid) Empty(row, col int) (bool, error) {
	value, err := g.Read(row, col)
	if err != nil {
		return false, err
	}
	return value == "", nil
}

// Write sets the cell value at the merge anchor. Callers must stay at or
// below the data start row; the floor check backs that invariant up.
func (g *Grid) Write(row, col int, value any) error {
	if g.floor > 0 && row < g.floor {
		return internal.Structural(internal.ErrWriteFailure,
			fmt.Sprintf("write at row %d refused: data region starts at row %d", row, g.floor))
	}
	aRow, aCol := g.anchor(row, col)
	axis, err := excelize.CoordinatesToCellName(aCol, aRow)
	if err != nil {
		return err
	}
	if err := g.file.SetCellValue(g.sheet, axis, value); err != nil {
		return fmt.Errorf("write cell %s: %w", axis, err)
	}
	return nil
}

// MaxRow reports the last populated row of the sheet.
func (g *Grid) MaxRow() (int, error) {
	rows, err := g.file.GetRows(g.sheet)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
