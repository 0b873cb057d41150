// Package simvar models simulator variable definitions and typed values.
package simvar

import "fmt"

// DataType identifies the wire type of a simulator variable.
// Values match the SimConnect DATATYPE enumeration.
type DataType uint32

const (
	TypeInvalid DataType = iota
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString8
	TypeString32
	TypeString64
	TypeString128
	TypeString256
	TypeString260
	TypeStringV
	TypeInitPosition
	TypeMarkerState
	TypeWaypoint
	TypeLatLonAlt
	TypeXYZ
)

// String returns the canonical name used in profiles and logs.
func (t DataType) String() string {
	switch t {
	case TypeInt32:
		return "INT32"
	case TypeInt64:
		return "INT64"
	case TypeFloat32:
		return "FLOAT32"
	case TypeFloat64:
		return "FLOAT64"
	case TypeString8:
		return "STRING8"
	case TypeString32:
		return "STRING32"
	case TypeString64:
		return "STRING64"
	case TypeString128:
		return "STRING128"
	case TypeString256:
		return "STRING256"
	case TypeString260:
		return "STRING260"
	case TypeStringV:
		return "STRINGV"
	case TypeInitPosition:
		return "INITPOSITION"
	case TypeLatLonAlt:
		return "LATLONALT"
	case TypeXYZ:
		return "XYZ"
	default:
		return fmt.Sprintf("DATATYPE(%d)", uint32(t))
	}
}

// ParseDataType maps a profile type name back to a DataType.
// Unknown names default to FLOAT64, the simulator's lingua franca.
func ParseDataType(s string) DataType {
	switch s {
	case "INT32":
		return TypeInt32
	case "INT64":
		return TypeInt64
	case "FLOAT32":
		return TypeFloat32
	case "FLOAT64":
		return TypeFloat64
	case "STRING8":
		return TypeString8
	case "STRING32":
		return TypeString32
	case "STRING64":
		return TypeString64
	case "STRING128":
		return TypeString128
	case "STRING256":
		return TypeString256
	case "STRING260":
		return TypeString260
	case "STRINGV":
		return TypeStringV
	case "INITPOSITION":
		return TypeInitPosition
	case "LATLONALT":
		return TypeLatLonAlt
	case "XYZ":
		return TypeXYZ
	default:
		return TypeFloat64
	}
}

// IsString reports whether the type is one of the fixed or variable string kinds.
func (t DataType) IsString() bool {
	return t >= TypeString8 && t <= TypeStringV
}

// Kind discriminates the payload stored in a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindTriple
)

// Value is a typed simulator value. Exactly one payload field is meaningful,
// selected by Kind; writers switch exhaustively over it.
type Value struct {
	Type   DataType
	Kind   Kind
	Int    int64
	Float  float64
	Str    string
	Triple [3]float64
}

// IntValue builds an integer Value for dt.
func IntValue(dt DataType, v int64) Value {
	return Value{Type: dt, Kind: KindInt, Int: v}
}

// FloatValue builds a floating-point Value for dt.
func FloatValue(dt DataType, v float64) Value {
	return Value{Type: dt, Kind: KindFloat, Float: v}
}

// StringValue builds a string Value for dt.
func StringValue(dt DataType, s string) Value {
	return Value{Type: dt, Kind: KindString, Str: s}
}

// TripleValue builds a three-component Value (lat/lon/alt or x/y/z) for dt.
func TripleValue(dt DataType, a, b, c float64) Value {
	return Value{Type: dt, Kind: KindTriple, Triple: [3]float64{a, b, c}}
}
