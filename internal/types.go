package internal

// LogicalField identifies a semantic target column in an ML template,
// independent of the language the header happens to be written in.
type LogicalField string

const (
	FieldTitle              LogicalField = "title"
	FieldPrice              LogicalField = "price"
	FieldStock              LogicalField = "stock"
	FieldCategory           LogicalField = "category"
	FieldCondition          LogicalField = "condition"
	FieldCurrency           LogicalField = "currency"
	FieldFreeShipping       LogicalField = "free_shipping"
	FieldAcceptsMercadoPago LogicalField = "accepts_mercado_pago"
	FieldPickupAllowed      LogicalField = "pickup_allowed"
	FieldSKU                LogicalField = "sku"
	FieldDescription        LogicalField = "description"
	FieldBrand              LogicalField = "brand"
	FieldModel              LogicalField = "model"
	FieldWeight             LogicalField = "weight"
	FieldWarranty           LogicalField = "warranty"
	FieldColor              LogicalField = "color"
	FieldImageURL           LogicalField = "image_url"
)

// LogicalFields lists every known field in a fixed order.
var LogicalFields = []LogicalField{
	FieldTitle, FieldPrice, FieldStock, FieldCategory, FieldCondition,
	FieldCurrency, FieldFreeShipping, FieldAcceptsMercadoPago, FieldPickupAllowed,
	FieldSKU, FieldDescription, FieldBrand, FieldModel, FieldWeight,
	FieldWarranty, FieldColor, FieldImageURL,
}

func IsLogicalField(s string) bool {
	for _, f := range LogicalFields {
		if string(f) == s {
			return true
		}
	}
	return false
}

type DataType string

const (
	TypeText    DataType = "text"
	TypeNumber  DataType = "number"
	TypeInteger DataType = "integer"
	TypeDecimal DataType = "decimal"
	TypeBoolean DataType = "boolean"
	TypeEnum    DataType = "enum"
	TypeURL     DataType = "url"
	TypeDate    DataType = "date"
)

type SourceHeader struct {
	Raw         string `json:"raw"`
	Normalized  string `json:"normalized"`
	ColumnIndex int    `json:"columnIndex"`
}

type ColumnDescriptor struct {
	Index        int          `json:"index"`
	RawHeader    string       `json:"rawHeader"`
	LogicalField LogicalField `json:"logicalField,omitempty"`
	DataType     DataType     `json:"dataType"`
	Obligatory   bool         `json:"obligatory"`
	EnumValues   []string     `json:"enumValues,omitempty"`
}

// TemplateGeometry holds the structural facts extracted from a template.
// It is computed once by the analyzer and consumed read-only.
type TemplateGeometry struct {
	Sheet         string             `json:"sheet"`
	HeaderRow     int                `json:"headerRow"`
	ObligatoryRow int                `json:"obligatoryRow,omitempty"`
	DataTypeRow   int                `json:"dataTypeRow,omitempty"`
	DataStartRow  int                `json:"dataStartRow"`
	Columns       []ColumnDescriptor `json:"columns"`
	IsMLTemplate  bool               `json:"isMlTemplate"`
	Confidence    float64            `json:"confidence"`
	Findings      []string           `json:"findings,omitempty"`
}

// Column returns the descriptor for a logical field, or nil.
func (g TemplateGeometry) Column(field LogicalField) *ColumnDescriptor {
	for i := range g.Columns {
		if g.Columns[i].LogicalField == field {
			return &g.Columns[i]
		}
	}
	return nil
}

// ResolvedMapping maps logical fields to actual source column names.
// An empty string value means the alias stayed unresolved.
type ResolvedMapping map[LogicalField]string

// Product is one source record keyed by source header name.
type Product map[string]any

// ProductTable is an ordered product file: headers plus rows.
type ProductTable struct {
	Headers []string
	Rows    []Product
}

type WriteMode string

const (
	ModeFillEmpty   WriteMode = "fill-empty"
	ModeAppend      WriteMode = "append"
	ModeOverwrite   WriteMode = "overwrite"
	ModeInteractive WriteMode = "interactive"
)

func IsWriteMode(s string) bool {
	switch WriteMode(s) {
	case ModeFillEmpty, ModeAppend, ModeOverwrite, ModeInteractive:
		return true
	}
	return false
}

// Edit is a single cell change consumed in interactive mode.
type Edit struct {
	Row   int          `json:"row"`
	Field LogicalField `json:"field"`
	Value any          `json:"value"`
}

type SkipReason string

const (
	SkipCellNotEmpty   SkipReason = "cell_not_empty"
	SkipNoValue        SkipReason = "no_value"
	SkipInvalidType    SkipReason = "invalid_type"
	SkipUnknownField   SkipReason = "unknown_field"
	SkipRowBelowHeader SkipReason = "row_below_header"
)

type RowOutcome struct {
	Row     int                         `json:"row"`
	Filled  map[LogicalField]any        `json:"filled"`
	Skipped map[LogicalField]SkipReason `json:"skipped"`
}

type FillReport struct {
	WriteMode          WriteMode    `json:"writeMode"`
	TotalProducts      int          `json:"totalProducts"`
	TotalFieldsFilled  int          `json:"totalFieldsFilled"`
	TotalFieldsSkipped int          `json:"totalFieldsSkipped"`
	PerRow             []RowOutcome `json:"perRow"`
}

// Structural error codes surfaced to the host before any write happens.
const (
	ErrNotATemplate             = "not_a_template"
	ErrHeaderRowNotFound        = "header_row_not_found"
	ErrMappingEmpty             = "mapping_empty"
	ErrWriteModeInvalid         = "write_mode_invalid"
	ErrInteractiveRequiresEdits = "interactive_requires_edits"
	ErrReadFailure              = "read_failure"
	ErrWriteFailure             = "write_failure"
)

// StructuralError is the single error shape crossing the core boundary.
type StructuralError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *StructuralError) Error() string {
	if e.Details == "" {
		return e.Code + ": " + e.Message
	}
	return e.Code + ": " + e.Message + " (" + e.Details + ")"
}

func Structural(code, message string) *StructuralError {
	return &StructuralError{Code: code, Message: message}
}
