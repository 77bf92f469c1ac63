package coerce

import (
	"testing"

	"mlextractor/internal"
)

func descOf(dt internal.DataType, enum ...string) internal.ColumnDescriptor {
	return internal.ColumnDescriptor{DataType: dt, EnumValues: enum}
}

func TestCoerceDecimal(t *testing.T) {
	cases := []struct {
		name   string
		input  any
		want   float64
		reason internal.SkipReason
	}{
		{name: "currency symbol", input: "$1500", want: 1500},
		{name: "european thousands", input: "$1.299,90", want: 1299.90},
		{name: "us thousands", input: "1,299.90", want: 1299.90},
		{name: "plain comma decimal", input: "15,5", want: 15.5},
		{name: "thousands dot", input: "1.000", want: 1000},
		{name: "float passthrough", input: 12.5, want: 12.5},
		{name: "int", input: 7, want: 7},
		{name: "negative", input: "-5", reason: internal.SkipInvalidType},
		{name: "garbage", input: "gratis", reason: internal.SkipInvalidType},
		{name: "empty", input: "  ", reason: internal.SkipNoValue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Coerce(tc.input, descOf(internal.TypeDecimal))
			if reason != tc.reason {
				t.Fatalf("reason=%q want %q", reason, tc.reason)
			}
			if reason == "" && got.(float64) != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestCoerceInteger(t *testing.T) {
	cases := []struct {
		input  any
		want   int
		reason internal.SkipReason
	}{
		{input: "10", want: 10},
		{input: 10, want: 10},
		{input: 10.0, want: 10},
		{input: "1.000", want: 1000},
		{input: 10.5, reason: internal.SkipInvalidType},
		{input: "10.5", reason: internal.SkipInvalidType},
		{input: "diez", reason: internal.SkipInvalidType},
	}

	for _, tc := range cases {
		got, reason := Coerce(tc.input, descOf(internal.TypeInteger))
		if reason != tc.reason {
			t.Fatalf("Coerce(%v): reason=%q want %q", tc.input, reason, tc.reason)
		}
		if reason == "" && got.(int) != tc.want {
			t.Fatalf("Coerce(%v)=%v want %v", tc.input, got, tc.want)
		}
	}
}

func TestCoerceBoolean(t *testing.T) {
	cases := []struct {
		input  any
		want   string
		reason internal.SkipReason
	}{
		{input: "yes", want: "Sí"},
		{input: "Sí", want: "Sí"},
		{input: true, want: "Sí"},
		{input: "NO", want: "No"},
		{input: false, want: "No"},
		{input: "1", want: "Sí"},
		{input: "0", want: "No"},
		{input: "quizas", reason: internal.SkipInvalidType},
	}

	for _, tc := range cases {
		got, reason := Coerce(tc.input, descOf(internal.TypeBoolean))
		if reason != tc.reason {
			t.Fatalf("Coerce(%v): reason=%q want %q", tc.input, reason, tc.reason)
		}
		if reason == "" && got.(string) != tc.want {
			t.Fatalf("Coerce(%v)=%v want %v", tc.input, got, tc.want)
		}
	}
}

func TestCoerceBooleanRoundTrip(t *testing.T) {
	// A produced value must survive a second pass unchanged.
	first, reason := Coerce("si", descOf(internal.TypeBoolean))
	if reason != "" {
		t.Fatal(reason)
	}
	second, reason := Coerce(first, descOf(internal.TypeBoolean))
	if reason != "" || second != first {
		t.Fatalf("round trip changed value: %v -> %v (%s)", first, second, reason)
	}
}

func TestCoerceEnum(t *testing.T) {
	desc := descOf(internal.TypeEnum, "Nuevo", "Usado", "Reacondicionado")

	cases := []struct {
		input  any
		want   string
		reason internal.SkipReason
	}{
		{input: "new", want: "Nuevo"},
		{input: "NUEVO", want: "Nuevo"},
		{input: "used", want: "Usado"},
		{input: "refurbished", want: "Reacondicionado"},
		{input: "roto", reason: internal.SkipInvalidType},
	}

	for _, tc := range cases {
		got, reason := Coerce(tc.input, desc)
		if reason != tc.reason {
			t.Fatalf("Coerce(%v): reason=%q want %q", tc.input, reason, tc.reason)
		}
		if reason == "" && got.(string) != tc.want {
			t.Fatalf("Coerce(%v)=%v want %v", tc.input, got, tc.want)
		}
	}
}

func TestCoerceURL(t *testing.T) {
	got, reason := Coerce("https://example.com/img.jpg", descOf(internal.TypeURL))
	if reason != "" || got != "https://example.com/img.jpg" {
		t.Fatalf("got %v (%s)", got, reason)
	}
	got, reason = Coerce("example.com/img.jpg", descOf(internal.TypeURL))
	if reason != "" || got != "https://example.com/img.jpg" {
		t.Fatalf("bare domain: got %v (%s)", got, reason)
	}
	if _, reason = Coerce("no es un link", descOf(internal.TypeURL)); reason != internal.SkipInvalidType {
		t.Fatalf("reason=%q", reason)
	}
}

func TestCoerceText(t *testing.T) {
	got, reason := Coerce("  Taladro   Percutor  ", descOf(internal.TypeText))
	if reason != "" || got != "Taladro Percutor" {
		t.Fatalf("got %v (%s)", got, reason)
	}
	if _, reason = Coerce("   ", descOf(internal.TypeText)); reason != internal.SkipNoValue {
		t.Fatalf("reason=%q", reason)
	}
}

func TestClassifyLabel(t *testing.T) {
	cases := []struct {
		label string
		want  internal.DataType
		enums int
	}{
		{label: "Texto", want: internal.TypeText},
		{label: "Número entero", want: internal.TypeInteger},
		{label: "Decimal", want: internal.TypeDecimal},
		{label: "Sí/No", want: internal.TypeBoolean},
		{label: "Fecha", want: internal.TypeDate},
		{label: "URL", want: internal.TypeURL},
		{label: "Nuevo / Usado / Reacondicionado", want: internal.TypeEnum, enums: 3},
		{label: "", want: internal.TypeText},
	}

	for _, tc := range cases {
		got, enums := ClassifyLabel(tc.label)
		if got != tc.want || len(enums) != tc.enums {
			t.Fatalf("ClassifyLabel(%q) = (%s, %d values), want (%s, %d)", tc.label, got, len(enums), tc.want, tc.enums)
		}
	}
}

func TestInferType(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		want   internal.DataType
	}{
		{name: "integers", values: []string{"1", "20", "300"}, want: internal.TypeInteger},
		{name: "decimals", values: []string{"1.5", "20", "3,25"}, want: internal.TypeDecimal},
		{name: "booleans", values: []string{"si", "no", "si"}, want: internal.TypeBoolean},
		{name: "urls", values: []string{"https://a.com/x", "https://b.com/y"}, want: internal.TypeURL},
		{name: "mixed", values: []string{"1", "hola"}, want: internal.TypeText},
		{name: "empty", values: nil, want: internal.TypeText},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferType(tc.values); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}
