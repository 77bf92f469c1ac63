package keywords

import (
	"testing"

	"mlextractor/internal"
)

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range internal.LogicalFields {
		if len(table.Synonyms(field)) == 0 {
			t.Fatalf("field %s has no synonyms", field)
		}
	}
	if len(table.Categories()) == 0 {
		t.Fatal("no categories loaded")
	}
}

func TestClassify(t *testing.T) {
	table := MustLoad()

	cases := []struct {
		header string
		want   internal.LogicalField
		ok     bool
	}{
		{header: "titulo", want: internal.FieldTitle, ok: true},
		{header: "titulo del producto", want: internal.FieldTitle, ok: true},
		{header: "precio unitario", want: internal.FieldPrice, ok: true},
		{header: "cantidad en stock", want: internal.FieldStock, ok: true},
		{header: "envio gratis", want: internal.FieldFreeShipping, ok: true},
		{header: "product_title", want: internal.FieldTitle, ok: true},
		{header: "col_sku", want: internal.FieldSKU, ok: true},
		{header: "columna rara", ok: false},
		{header: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := table.Classify(tc.header)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Classify(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := MustLoad()
	// "titulo precio" contains synonyms of two fields; field order decides.
	field, ok := table.Classify("titulo precio")
	if !ok || field != internal.FieldTitle {
		t.Fatalf("got (%q, %v), want title", field, ok)
	}
}

func TestClassifyAlias(t *testing.T) {
	table := MustLoad()

	if _, ok := table.ClassifyAlias("titulo del producto x"); ok {
		t.Fatal("partial match should not classify as alias")
	}
	field, ok := table.ClassifyAlias("titulo")
	if !ok || field != internal.FieldTitle {
		t.Fatalf("got (%q, %v), want title", field, ok)
	}
}
