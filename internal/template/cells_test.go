package template

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"mlextractor/internal"
)

func TestGridMergedReads(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.MergeCell(sheet, "B2", "D3"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "B2", "valor ancla"); err != nil {
		t.Fatal(err)
	}

	grid, err := NewGrid(f, sheet)
	if err != nil {
		t.Fatal(err)
	}

	// Any coordinate inside the merged range resolves to the anchor value.
	for _, pos := range [][2]int{{2, 2}, {2, 4}, {3, 3}, {3, 4}} {
		got, err := grid.Read(pos[0], pos[1])
		if err != nil {
			t.Fatal(err)
		}
		if got != "valor ancla" {
			t.Fatalf("Read(%d,%d)=%q", pos[0], pos[1], got)
		}
		empty, err := grid.Empty(pos[0], pos[1])
		if err != nil || empty {
			t.Fatalf("Empty(%d,%d)=%v err=%v", pos[0], pos[1], empty, err)
		}
	}

	// Outside the range cells behave normally.
	if empty, _ := grid.Empty(5, 5); !empty {
		t.Fatal("E5 should be empty")
	}
}

func TestGridMergedWriteGoesToAnchor(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.MergeCell(sheet, "A8", "C8"); err != nil {
		t.Fatal(err)
	}

	grid, err := NewGrid(f, sheet)
	if err != nil {
		t.Fatal(err)
	}
	if err := grid.Write(8, 3, "escrito"); err != nil {
		t.Fatal(err)
	}

	got, _ := f.GetCellValue(sheet, "A8")
	if got != "escrito" {
		t.Fatalf("anchor A8=%q", got)
	}
}

func TestGridWriteFloor(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	grid, err := NewGrid(f, sheet)
	if err != nil {
		t.Fatal(err)
	}
	grid.SetFloor(8)

	err = grid.Write(5, 1, "prohibido")
	var se *internal.StructuralError
	if !errors.As(err, &se) || se.Code != internal.ErrWriteFailure {
		t.Fatalf("expected write_failure, got %v", err)
	}
	if got, _ := f.GetCellValue(sheet, "A5"); got != "" {
		t.Fatal("guarded write must not touch the sheet")
	}

	if err := grid.Write(8, 1, "permitido"); err != nil {
		t.Fatal(err)
	}
}
