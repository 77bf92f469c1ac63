package fill

import (
	"reflect"
	"testing"

	"mlextractor/internal"
)

func TestPreviewMatchesFill(t *testing.T) {
	f, geom := mkWorkbook(t)
	products := []internal.Product{
		{"nombre": "Taladro 500W", "precio": "$1.299,90", "cantidad": "10", "estado": "new", "envio": "si"},
		{"nombre": "Lijadora", "precio": "mal precio", "cantidad": "4", "estado": "used", "envio": "no"},
	}

	preview := Preview(geom, testMapping, products, nil, 0)
	if len(preview.Rows) != 2 || preview.Total != 2 {
		t.Fatalf("rows=%d total=%d", len(preview.Rows), preview.Total)
	}

	// The preview must not touch the workbook.
	if got := cellValue(t, f, "A8"); got != "" {
		t.Fatalf("preview mutated workbook: A8=%q", got)
	}

	report, err := Fill(mkGrid(t, f, geom.Sheet), geom, testMapping, products, nil, internal.ModeFillEmpty, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Same inputs, same value pipeline: preview and fill agree cell by cell.
	// Preview rows are keyed by raw header, the report by logical field.
	for i, row := range preview.Rows {
		wantValues := map[string]any{}
		for field, v := range report.PerRow[i].Filled {
			wantValues[geom.Column(field).RawHeader] = v
		}
		wantSkipped := map[string]internal.SkipReason{}
		for field, reason := range report.PerRow[i].Skipped {
			wantSkipped[geom.Column(field).RawHeader] = reason
		}
		if !reflect.DeepEqual(row.Values, wantValues) {
			t.Fatalf("row %d: preview %v vs fill %v", i, row.Values, wantValues)
		}
		if !reflect.DeepEqual(row.Skipped, wantSkipped) {
			t.Fatalf("row %d skips: preview %v vs fill %v", i, row.Skipped, wantSkipped)
		}
	}
}

func TestPreviewRowsKeyedByRawHeader(t *testing.T) {
	_, geom := mkWorkbook(t)
	products := []internal.Product{{"nombre": "Taladro", "precio": "100"}}

	preview := Preview(geom, testMapping, products, nil, 0)
	row := preview.Rows[0]
	if row.Values["Título"] != "Taladro" {
		t.Fatalf("values=%v", row.Values)
	}
	if row.Values["Precio"] != 100.0 {
		t.Fatalf("values=%v", row.Values)
	}
	// Mapped fields the product leaves empty appear as no_value skips, also
	// under the raw header.
	if row.Skipped["Stock"] != internal.SkipNoValue {
		t.Fatalf("skipped=%v", row.Skipped)
	}
}

func TestPreviewLimit(t *testing.T) {
	_, geom := mkWorkbook(t)
	products := []internal.Product{
		{"nombre": "uno"}, {"nombre": "dos"}, {"nombre": "tres"},
	}

	preview := Preview(geom, testMapping, products, nil, 2)
	if len(preview.Rows) != 2 {
		t.Fatalf("rows=%d", len(preview.Rows))
	}
	if preview.Total != 3 {
		t.Fatalf("total=%d", preview.Total)
	}
	if preview.Rows[0].Values["Título"] != "uno" {
		t.Fatalf("row0: %v", preview.Rows[0].Values)
	}
}

func TestPreviewHeaders(t *testing.T) {
	_, geom := mkWorkbook(t)
	preview := Preview(geom, testMapping, nil, nil, 0)

	want := []string{"Título", "Precio", "Stock", "Condición", "Envío gratis"}
	if !reflect.DeepEqual(preview.Headers, want) {
		t.Fatalf("headers=%v", preview.Headers)
	}
}
