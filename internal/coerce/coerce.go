package coerce

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mlextractor/internal"
	"mlextractor/internal/util"
)

var (
	reCurrency    = regexp.MustCompile(`[$€¥£]`)
	reURL         = regexp.MustCompile(`^https?://\S+$`)
	reBareDomain  = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*\.[a-z]{2,}(/\S*)?$`)
	reThousandDot = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandCom = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`)
)

var enumSynonyms = map[string]string{
	"new":             "Nuevo",
	"nuevo":           "Nuevo",
	"used":            "Usado",
	"usado":           "Usado",
	"refurbished":     "Reacondicionado",
	"reacondicionado": "Reacondicionado",
}

// Coerce converts a source value to the column's data type. The returned
// reason is empty on success; otherwise the value is unusable and the reason
// says why. A value Coerce produced is accepted unchanged on a second pass.
func Coerce(value any, desc internal.ColumnDescriptor) (any, internal.SkipReason) {
	switch desc.DataType {
	case internal.TypeInteger:
		return coerceInteger(value)
	case internal.TypeNumber, internal.TypeDecimal:
		return coerceDecimal(value)
	case internal.TypeBoolean:
		return coerceBoolean(value)
	case internal.TypeEnum:
		return coerceEnum(value, desc.EnumValues)
	case internal.TypeURL:
		return coerceURL(value)
	case internal.TypeDate:
		return coerceDate(value)
	default:
		return coerceText(value)
	}
}

func coerceText(value any) (any, internal.SkipReason) {
	s := util.CollapseSpaces(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}
	return s, ""
}

func coerceInteger(value any) (any, internal.SkipReason) {
	switch v := value.(type) {
	case int:
		return v, ""
	case int64:
		return int(v), ""
	case float64:
		if v == math.Trunc(v) {
			return int(v), ""
		}
		return nil, internal.SkipInvalidType
	}

	s := strings.TrimSpace(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}
	parsed, err := strconv.ParseFloat(normalizeDecimalToken(s), 64)
	if err != nil || parsed != math.Trunc(parsed) {
		return nil, internal.SkipInvalidType
	}
	return int(parsed), ""
}

func coerceDecimal(value any) (any, internal.SkipReason) {
	switch v := value.(type) {
	case int:
		if v < 0 {
			return nil, internal.SkipInvalidType
		}
		return float64(v), ""
	case int64:
		if v < 0 {
			return nil, internal.SkipInvalidType
		}
		return float64(v), ""
	case float64:
		if v < 0 {
			return nil, internal.SkipInvalidType
		}
		return v, ""
	}

	s := strings.TrimSpace(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}
	s = reCurrency.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	parsed, err := strconv.ParseFloat(normalizeDecimalToken(s), 64)
	if err != nil || parsed < 0 {
		return nil, internal.SkipInvalidType
	}
	return parsed, ""
}

func coerceBoolean(value any) (any, internal.SkipReason) {
	if b, ok := value.(bool); ok {
		if b {
			return "Sí", ""
		}
		return "No", ""
	}

	switch util.Normalize(asString(value)) {
	case "":
		return nil, internal.SkipNoValue
	case "yes", "si", "true", "1":
		return "Sí", ""
	case "no", "false", "0":
		return "No", ""
	}
	return nil, internal.SkipInvalidType
}

func coerceEnum(value any, enumValues []string) (any, internal.SkipReason) {
	s := strings.TrimSpace(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}

	candidate := s
	if mapped, ok := enumSynonyms[util.Normalize(s)]; ok {
		candidate = mapped
	}
	if len(enumValues) == 0 {
		return candidate, ""
	}
	for _, allowed := range enumValues {
		if util.Normalize(allowed) == util.Normalize(candidate) {
			return allowed, ""
		}
	}
	return nil, internal.SkipInvalidType
}

func coerceURL(value any) (any, internal.SkipReason) {
	s := strings.TrimSpace(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}
	if reURL.MatchString(s) {
		return s, ""
	}
	if reBareDomain.MatchString(strings.ToLower(s)) {
		return "https://" + s, ""
	}
	return nil, internal.SkipInvalidType
}

func coerceDate(value any) (any, internal.SkipReason) {
	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02"), ""
	}

	s := strings.TrimSpace(asString(value))
	if s == "" {
		return nil, internal.SkipNoValue
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), ""
		}
	}
	return nil, internal.SkipInvalidType
}

// normalizeDecimalToken resolves mixed European/US separators: the last of
// '.' and ',' is taken as the decimal mark, lone separators that look like
// thousands grouping are dropped.
func normalizeDecimalToken(token string) string {
	hasDot := strings.Contains(token, ".")
	hasComma := strings.Contains(token, ",")

	switch {
	case hasDot && hasComma:
		if strings.LastIndex(token, ",") > strings.LastIndex(token, ".") {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.ReplaceAll(token, ",", ".")
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case hasDot:
		if reThousandDot.MatchString(token) {
			token = strings.ReplaceAll(token, ".", "")
		}
	case hasComma:
		if reThousandCom.MatchString(token) {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.ReplaceAll(token, ",", ".")
		}
	}
	return token
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
