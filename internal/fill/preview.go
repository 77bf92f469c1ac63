package fill

import (
	"mlextractor/internal"
	"mlextractor/internal/coerce"
)

// PreviewResult is a dry-run projection of a fill: the template headers that
// would receive values and, per product, the value each would get. Rows are
// keyed by the raw template header; cells whose value would be skipped carry
// the skip reason instead.
type PreviewResult struct {
	Headers []string     `json:"headers"`
	Rows    []PreviewRow `json:"rows"`
	Total   int          `json:"total"`
}

type PreviewRow struct {
	Values  map[string]any                 `json:"values"`
	Skipped map[string]internal.SkipReason `json:"skipped,omitempty"`
}

// Preview computes fill values without touching the workbook. It shares the
// value pipeline with Fill, so what it shows is exactly what a fill-empty run
// over a blank data region would write. limit <= 0 means no limit.
func Preview(geom internal.TemplateGeometry, resolved internal.ResolvedMapping,
	products []internal.Product, defaults map[internal.LogicalField]any, limit int) PreviewResult {

	result := PreviewResult{Total: len(products)}
	for _, desc := range geom.Columns {
		if desc.LogicalField == "" {
			continue
		}
		result.Headers = append(result.Headers, desc.RawHeader)
	}

	count := len(products)
	if limit > 0 && limit < count {
		count = limit
	}

	for _, product := range products[:count] {
		row := PreviewRow{
			Values:  map[string]any{},
			Skipped: map[string]internal.SkipReason{},
		}
		for _, desc := range geom.Columns {
			field := desc.LogicalField
			if field == "" {
				continue
			}
			raw, attempted := valueFor(product, resolved, defaults, field)
			if !attempted {
				continue
			}
			value, reason := coerce.Coerce(raw, desc)
			if reason != "" {
				row.Skipped[desc.RawHeader] = reason
				continue
			}
			row.Values[desc.RawHeader] = value
		}
		result.Rows = append(result.Rows, row)
	}

	return result
}
