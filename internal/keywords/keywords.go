package keywords

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"mlextractor/internal"
	"mlextractor/internal/util"
)

//go:embed keywords.yaml
var rawTable []byte

// Table maps logical fields to header synonyms and programmatic suffix
// variants. Everything is stored normalized; the table is immutable after
// Load and safe for concurrent use.
type Table struct {
	synonyms   map[internal.LogicalField][]string
	suffixes   map[internal.LogicalField][]string
	categories []string
}

type rawFile struct {
	Synonyms   map[string][]string `yaml:"synonyms"`
	Suffixes   map[string][]string `yaml:"suffixes"`
	Categories []string            `yaml:"categories"`
}

// Load parses the embedded synonym data.
func Load() (*Table, error) {
	var raw rawFile
	if err := yaml.Unmarshal(rawTable, &raw); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}

	t := &Table{
		synonyms: map[internal.LogicalField][]string{},
		suffixes: map[internal.LogicalField][]string{},
	}
	for name, words := range raw.Synonyms {
		if !internal.IsLogicalField(name) {
			return nil, fmt.Errorf("keyword table: unknown logical field %q", name)
		}
		t.synonyms[internal.LogicalField(name)] = normalizeAll(words)
	}
	for name, words := range raw.Suffixes {
		if !internal.IsLogicalField(name) {
			return nil, fmt.Errorf("keyword table: unknown logical field %q", name)
		}
		t.suffixes[internal.LogicalField(name)] = normalizeAll(words)
	}
	t.categories = normalizeAll(raw.Categories)
	return t, nil
}

// MustLoad is for hosts that treat a broken embedded table as fatal.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := util.Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Synonyms returns the normalized synonym list for a field.
func (t *Table) Synonyms(field internal.LogicalField) []string {
	return t.synonyms[field]
}

// Categories returns the normalized ML category markers.
func (t *Table) Categories() []string {
	return t.categories
}

// Classify maps a normalized header to a logical field. A header matches a
// field when it contains one of the field's synonyms or matches one of the
// programmatic suffix variants. Fields are tried in their fixed order so the
// result is deterministic.
func (t *Table) Classify(normalized string) (internal.LogicalField, bool) {
	if normalized == "" {
		return "", false
	}
	for _, field := range internal.LogicalFields {
		for _, syn := range t.synonyms[field] {
			if strings.Contains(normalized, syn) {
				return field, true
			}
		}
	}
	for _, field := range internal.LogicalFields {
		for _, variant := range t.suffixes[field] {
			if normalized == variant || strings.HasSuffix(normalized, "_"+variant) {
				return field, true
			}
		}
	}
	return "", false
}

// ClassifyAlias is like Classify but only accepts whole-token matches: the
// alias must equal a synonym or suffix variant, not merely contain one. Used
// when deciding whether a declared alias names a keyword class at all.
func (t *Table) ClassifyAlias(normalized string) (internal.LogicalField, bool) {
	if normalized == "" {
		return "", false
	}
	for _, field := range internal.LogicalFields {
		for _, syn := range t.synonyms[field] {
			if normalized == syn {
				return field, true
			}
		}
		for _, variant := range t.suffixes[field] {
			if normalized == variant {
				return field, true
			}
		}
	}
	return "", false
}
