package archive

import (
	"github.com/apache/arrow-go/v18/arrow"

	"matchdata/internal/record"
)

// ColumnType is the storage type inferred for one column.
type ColumnType int

const (
	typeUnknown ColumnType = iota
	TypeInt64
	TypeDouble
	TypeBool
	TypeText
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "boolean"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

func (t ColumnType) arrowType() arrow.DataType {
	switch t {
	case TypeInt64:
		return arrow.PrimitiveTypes.Int64
	case TypeDouble:
		return arrow.PrimitiveTypes.Float64
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func kindType(v record.Value) ColumnType {
	switch v.Kind() {
	case record.KindInt:
		return TypeInt64
	case record.KindNumber:
		f, _ := v.Float()
		if record.IsIntegral(f) {
			return TypeInt64
		}
		return TypeDouble
	case record.KindBool:
		return TypeBool
	case record.KindString:
		return TypeText
	default:
		return typeUnknown
	}
}

// widen merges the type seen so far with the type of another value.
func widen(a, b ColumnType) ColumnType {
	switch {
	case a == typeUnknown:
		return b
	case b == typeUnknown || a == b:
		return a
	case (a == TypeInt64 && b == TypeDouble) || (a == TypeDouble && b == TypeInt64):
		return TypeDouble
	default:
		return TypeText
	}
}

// Column is one inferred output column.
type Column struct {
	Name string
	Type ColumnType
}

// InferSchema returns the union of the records' columns in first-seen order,
// each typed to hold every non-null value it contains. Columns with no
// non-null value are stored as text.
func InferSchema(records []record.Record) []Column {
	var cols []Column
	pos := make(map[string]int)
	for _, r := range records {
		for _, name := range r.Keys() {
			i, ok := pos[name]
			if !ok {
				i = len(cols)
				pos[name] = i
				cols = append(cols, Column{Name: name})
			}
			v, _ := r.Get(name)
			cols[i].Type = widen(cols[i].Type, kindType(v))
		}
	}
	for i := range cols {
		if cols[i].Type == typeUnknown {
			cols[i].Type = TypeText
		}
	}
	return cols
}

func arrowSchema(cols []Column) *arrow.Schema {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type.arrowType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}
