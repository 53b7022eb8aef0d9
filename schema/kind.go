package schema

// Kind identifies the shape category of a described type and how its
// elements are addressed.
type Kind uint8

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindChar
	KindString
	KindUnit
	KindEnum
	KindList
	KindMap
	KindStruct
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindChar:    "char",
	KindString:  "string",
	KindUnit:    "unit",
	KindEnum:    "enum",
	KindList:    "list",
	KindMap:     "map",
	KindStruct:  "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether the kind is a single scalar value with no
// addressable elements.
func (k Kind) IsPrimitive() bool {
	return k <= KindUnit
}

// IsCollection reports whether the kind repeats one element shape (lists)
// or an alternating key/value pair shape (maps).
func (k Kind) IsCollection() bool {
	return k == KindList || k == KindMap
}
