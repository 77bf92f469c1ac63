package resolver

import (
	"strings"

	"mlextractor/internal"
	"mlextractor/internal/keywords"
	"mlextractor/internal/util"
)

// fuzzyCutoff is the fixed acceptance threshold for the LCS ratio rule.
const fuzzyCutoff = 0.70

// Resolve maps each declared (field, alias) pair to an actual source column.
// Rules run in order, first match wins; ties inside a rule go to the lowest
// column index. Unresolvable aliases produce an empty entry.
func Resolve(headers []string, declared map[internal.LogicalField]string, table *keywords.Table) internal.ResolvedMapping {
	src := indexHeaders(headers)
	out := internal.ResolvedMapping{}

	for _, field := range internal.LogicalFields {
		alias, ok := declared[field]
		if !ok {
			continue
		}
		resolved := resolveAlias(src, alias, table)
		if resolved == "" {
			// Last chance: the logical field name itself as the query.
			if hit := fieldClassMatch(src, field, table); hit != "" {
				resolved = hit
			} else {
				resolved = substringOrFuzzy(src, strings.ReplaceAll(string(field), "_", " "))
			}
		}
		out[field] = resolved
	}

	return out
}

func resolveAlias(src []internal.SourceHeader, alias string, table *keywords.Table) string {
	for _, h := range src {
		if h.Raw == alias {
			return h.Raw
		}
	}

	normAlias := util.Normalize(alias)
	for _, h := range src {
		if h.Normalized == normAlias {
			return h.Raw
		}
	}

	return resolveQuery(src, alias, table)
}

// resolveQuery runs the keyword-class, substring and bounded-fuzzy rules for
// an arbitrary query string.
func resolveQuery(src []internal.SourceHeader, query string, table *keywords.Table) string {
	if hit := classMatch(src, query, table); hit != "" {
		return hit
	}
	return substringOrFuzzy(src, query)
}

func substringOrFuzzy(src []internal.SourceHeader, query string) string {
	normQuery := util.Normalize(query)
	for _, h := range src {
		if h.Normalized == "" || normQuery == "" {
			continue
		}
		if strings.Contains(h.Normalized, normQuery) || strings.Contains(normQuery, h.Normalized) {
			return h.Raw
		}
	}
	return fuzzyMatch(src, normQuery)
}

// classMatch resolves via the keyword table: when the alias names a known
// field class, the first source header containing any synonym of that class
// wins.
func classMatch(src []internal.SourceHeader, alias string, table *keywords.Table) string {
	field, ok := table.ClassifyAlias(util.Normalize(alias))
	if !ok {
		return ""
	}
	return fieldClassMatch(src, field, table)
}

func fieldClassMatch(src []internal.SourceHeader, field internal.LogicalField, table *keywords.Table) string {
	for _, h := range src {
		if hdrField, ok := table.Classify(h.Normalized); ok && hdrField == field {
			return h.Raw
		}
	}
	return ""
}

func fuzzyMatch(src []internal.SourceHeader, normAlias string) string {
	if normAlias == "" {
		return ""
	}
	best := ""
	bestScore := 0.0
	for _, h := range src {
		score := util.LCSRatio(normAlias, h.Normalized)
		if score >= fuzzyCutoff && score > bestScore {
			best = h.Raw
			bestScore = score
		}
	}
	return best
}

func indexHeaders(headers []string) []internal.SourceHeader {
	out := make([]internal.SourceHeader, 0, len(headers))
	for i, h := range headers {
		out = append(out, internal.SourceHeader{
			Raw:         h,
			Normalized:  util.Normalize(h),
			ColumnIndex: i + 1,
		})
	}
	return out
}
