package coerce

import (
	"regexp"
	"strings"

	"mlextractor/internal"
	"mlextractor/internal/util"
)

var typeLabelPatterns = []struct {
	dataType internal.DataType
	tokens   []string
}{
	{internal.TypeBoolean, []string{"si/no", "sí/no", "yes/no", "true/false", "boolean", "booleano"}},
	{internal.TypeInteger, []string{"entero", "integer"}},
	{internal.TypeDecimal, []string{"decimal", "precio"}},
	{internal.TypeNumber, []string{"numero", "número", "number", "numeric", "numerico"}},
	{internal.TypeDate, []string{"fecha", "date", "datetime"}},
	{internal.TypeURL, []string{"url", "link", "enlace", "http"}},
	{internal.TypeText, []string{"texto", "text", "string", "cadena"}},
}

var reEnumSep = regexp.MustCompile(`\s*[,/|]\s*`)

// ClassifyLabel interprets a data-type-row cell. Known type tokens win; a
// cell listing several options ("Nuevo / Usado / Reacondicionado") becomes an
// enum carrying those options. Anything else is text.
func ClassifyLabel(label string) (internal.DataType, []string) {
	norm := util.Normalize(label)
	if norm == "" {
		return internal.TypeText, nil
	}

	for _, p := range typeLabelPatterns {
		for _, token := range p.tokens {
			if strings.Contains(norm, util.Normalize(token)) {
				return p.dataType, nil
			}
		}
	}

	if reEnumSep.MatchString(label) {
		parts := reEnumSep.Split(strings.TrimSpace(label), -1)
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if len(values) > 1 {
			return internal.TypeEnum, values
		}
	}

	return internal.TypeText, nil
}

// InferType guesses a column's data type from sampled body values by running
// the same conversions the coercer applies at fill time.
func InferType(values []string) internal.DataType {
	nonEmpty := 0
	integers, decimals, booleans, urls, dates := 0, 0, 0, 0, 0

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if _, reason := coerceInteger(v); reason == "" {
			integers++
		}
		if _, reason := coerceDecimal(v); reason == "" {
			decimals++
		}
		if _, reason := coerceBoolean(v); reason == "" {
			booleans++
		}
		if _, reason := coerceURL(v); reason == "" {
			urls++
		}
		if _, reason := coerceDate(v); reason == "" {
			dates++
		}
	}

	if nonEmpty == 0 {
		return internal.TypeText
	}
	switch {
	case integers == nonEmpty:
		return internal.TypeInteger
	case booleans == nonEmpty:
		return internal.TypeBoolean
	case decimals == nonEmpty:
		return internal.TypeDecimal
	case dates == nonEmpty:
		return internal.TypeDate
	case urls == nonEmpty:
		return internal.TypeURL
	default:
		return internal.TypeText
	}
}
