package schema

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/yami-cli/yami/pkg/errcode"
)

const (
	// DefaultMaxLength is applied to varchar fields declared without an
	// explicit length.
	DefaultMaxLength = 65535

	// DefaultMaxCapacity is applied to array fields declared without an
	// explicit capacity.
	DefaultMaxCapacity = 4096
)

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	typeNames = map[string]entity.FieldType{
		"bool":            entity.FieldTypeBool,
		"int8":            entity.FieldTypeInt8,
		"int16":           entity.FieldTypeInt16,
		"int32":           entity.FieldTypeInt32,
		"int64":           entity.FieldTypeInt64,
		"float":           entity.FieldTypeFloat,
		"double":          entity.FieldTypeDouble,
		"varchar":         entity.FieldTypeVarChar,
		"string":          entity.FieldTypeVarChar,
		"json":            entity.FieldTypeJSON,
		"array":           entity.FieldTypeArray,
		"float_vector":    entity.FieldTypeFloatVector,
		"binary_vector":   entity.FieldTypeBinaryVector,
		"float16_vector":  entity.FieldTypeFloat16Vector,
		"bfloat16_vector": entity.FieldTypeBFloat16Vector,
		"sparse_vector":   entity.FieldTypeSparseVector,
	}

	metricNames = map[string]entity.MetricType{
		"COSINE":  entity.COSINE,
		"L2":      entity.L2,
		"IP":      entity.IP,
		"HAMMING": entity.HAMMING,
		"JACCARD": entity.JACCARD,
	}
)

// Field is one parsed field declaration.
type Field struct {
	Name        string
	Type        entity.FieldType
	ElementType entity.FieldType
	Dim         int
	MaxLength   int
	MaxCapacity int
	PrimaryKey  bool
	AutoID      bool
	Metric      entity.MetricType
}

// IsVector reports whether the field holds vector data.
func (f *Field) IsVector() bool {
	switch f.Type {
	case entity.FieldTypeFloatVector, entity.FieldTypeBinaryVector,
		entity.FieldTypeFloat16Vector, entity.FieldTypeBFloat16Vector,
		entity.FieldTypeSparseVector:
		return true
	}

	return false
}

// ParseField parses a single name:type[:param][:modifier...] declaration.
func ParseField(spec string) (*Field, error) {
	parts := strings.Split(spec, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, errcode.Newf(errcode.ValidationError,
			"invalid field %q: expected name:type[:param][:modifier]", spec)
	}

	name := parts[0]
	if !identifier.MatchString(name) {
		return nil, errcode.Newf(errcode.ValidationError,
			"invalid field name %q: use letters, digits, and underscores, starting with a letter or underscore", name)
	}

	typeName := strings.ToLower(parts[1])
	fieldType, ok := typeNames[typeName]
	if !ok {
		return nil, errcode.Newf(errcode.ValidationError,
			"field %q: unknown type %q (valid types: %s)", name, parts[1], validTypes())
	}

	f := &Field{Name: name, Type: fieldType}
	rest := parts[2:]

	// Positional type parameters come before modifiers.
	switch fieldType {
	case entity.FieldTypeVarChar:
		f.MaxLength = DefaultMaxLength
		if n, used, err := optionalInt(rest); err != nil {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: invalid max_length %q", name, rest[0])
		} else if used {
			f.MaxLength = n
			rest = rest[1:]
		}
	case entity.FieldTypeArray:
		if len(rest) == 0 {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: array requires an element type, e.g. %s:array:varchar", name, name)
		}
		elemType, ok := typeNames[strings.ToLower(rest[0])]
		if !ok || !scalarElement(elemType) {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: invalid array element type %q", name, rest[0])
		}
		f.ElementType = elemType
		if elemType == entity.FieldTypeVarChar {
			f.MaxLength = DefaultMaxLength
		}
		rest = rest[1:]

		f.MaxCapacity = DefaultMaxCapacity
		if n, used, err := optionalInt(rest); err != nil {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: invalid max_capacity %q", name, rest[0])
		} else if used {
			f.MaxCapacity = n
			rest = rest[1:]
		}
	case entity.FieldTypeFloatVector, entity.FieldTypeBinaryVector,
		entity.FieldTypeFloat16Vector, entity.FieldTypeBFloat16Vector:
		if len(rest) == 0 {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: %s requires a dimension, e.g. %s:%s:768", name, typeName, name, typeName)
		}
		dim, err := strconv.Atoi(rest[0])
		if err != nil || dim <= 0 {
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: invalid dimension %q", name, rest[0])
		}
		f.Dim = dim
		rest = rest[1:]
	}

	for _, mod := range rest {
		switch strings.ToLower(mod) {
		case "":
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: empty modifier", name)
		case "pk":
			f.PrimaryKey = true
		case "auto":
			f.AutoID = true
		case "nullable":
			return nil, errcode.Newf(errcode.ValidationError,
				"field %q: nullable fields are not supported", name)
		default:
			metric, ok := metricNames[strings.ToUpper(mod)]
			if !ok {
				return nil, errcode.Newf(errcode.ValidationError,
					"field %q: unknown modifier %q (valid: pk, auto, %s)", name, mod, validMetrics())
			}
			if !f.IsVector() {
				return nil, errcode.Newf(errcode.ValidationError,
					"field %q: metric %s only applies to vector fields", name, metric)
			}
			f.Metric = metric
		}
	}

	if f.IsVector() && f.Metric == "" {
		f.Metric = entity.COSINE
		if f.Type == entity.FieldTypeSparseVector {
			f.Metric = entity.IP
		}
	}

	if f.AutoID && !f.PrimaryKey {
		return nil, errcode.Newf(errcode.ValidationError,
			"field %q: auto requires pk", name)
	}
	if f.PrimaryKey && fieldType != entity.FieldTypeInt64 && fieldType != entity.FieldTypeVarChar {
		return nil, errcode.Newf(errcode.ValidationError,
			"field %q: primary keys must be int64 or varchar", name)
	}

	return f, nil
}

// ParseFields parses a full schema declaration and enforces the
// cross-field rules: unique names and exactly one primary key.
func ParseFields(specs []string) ([]*Field, error) {
	if len(specs) == 0 {
		return nil, errcode.New(errcode.ValidationError, "at least one field is required")
	}

	fields := make([]*Field, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	pks := 0

	for _, spec := range specs {
		f, err := ParseField(spec)
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, errcode.Newf(errcode.ValidationError, "duplicate field name %q", f.Name)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			pks++
		}
		fields = append(fields, f)
	}

	if pks != 1 {
		return nil, errcode.Newf(errcode.ValidationError,
			"exactly one field must be marked pk (got %d)", pks)
	}

	return fields, nil
}

// ParseMetric validates a metric type name. The empty string is allowed
// and means the server resolves the metric from the index.
func ParseMetric(name string) (entity.MetricType, error) {
	if name == "" {
		return "", nil
	}

	metric, ok := metricNames[strings.ToUpper(name)]
	if !ok {
		return "", errcode.Newf(errcode.ValidationError,
			"unknown metric type %q (valid: %s)", name, validMetrics())
	}

	return metric, nil
}

// Build assembles the collection schema the server expects from parsed
// fields.
func Build(collection, description string, fields []*Field, dynamic bool) *entity.Schema {
	s := entity.NewSchema().
		WithName(collection).
		WithDescription(description).
		WithDynamicFieldEnabled(dynamic)

	for _, f := range fields {
		if f.AutoID {
			s = s.WithAutoID(true)
		}
		s = s.WithField(f.entityField())
	}

	return s
}

func (f *Field) entityField() *entity.Field {
	ef := entity.NewField().
		WithName(f.Name).
		WithDataType(f.Type).
		WithIsPrimaryKey(f.PrimaryKey).
		WithIsAutoID(f.AutoID)

	switch f.Type {
	case entity.FieldTypeVarChar:
		ef = ef.WithMaxLength(int64(f.MaxLength))
	case entity.FieldTypeArray:
		ef = ef.WithElementType(f.ElementType).WithMaxCapacity(int64(f.MaxCapacity))
		if f.ElementType == entity.FieldTypeVarChar {
			ef = ef.WithMaxLength(int64(f.MaxLength))
		}
	case entity.FieldTypeFloatVector, entity.FieldTypeBinaryVector,
		entity.FieldTypeFloat16Vector, entity.FieldTypeBFloat16Vector:
		ef = ef.WithDim(int64(f.Dim))
	}

	return ef
}

// optionalInt consumes a leading integer parameter when present.
func optionalInt(rest []string) (int, bool, error) {
	if len(rest) == 0 {
		return 0, false, nil
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil {
		// Not numeric; leave it for the modifier pass.
		if _, isModifier := metricNames[strings.ToUpper(rest[0])]; isModifier {
			return 0, false, nil
		}
		switch strings.ToLower(rest[0]) {
		case "pk", "auto", "nullable":
			return 0, false, nil
		}
		return 0, false, err
	}
	if n <= 0 {
		return 0, false, strconv.ErrRange
	}

	return n, true, nil
}

func scalarElement(t entity.FieldType) bool {
	switch t {
	case entity.FieldTypeBool, entity.FieldTypeInt8, entity.FieldTypeInt16,
		entity.FieldTypeInt32, entity.FieldTypeInt64, entity.FieldTypeFloat,
		entity.FieldTypeDouble, entity.FieldTypeVarChar:
		return true
	}

	return false
}

func validTypes() string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

func validMetrics() string {
	names := make([]string, 0, len(metricNames))
	for name := range metricNames {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}
