package simvar

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts the simulator-formatted (or user-entered) text into a typed
// Value for the given data type. Errors carry a human-readable message and are
// meant to surface as per-item warnings, never as panics.
func Parse(text string, dt DataType) (Value, error) {
	text = strings.TrimSpace(text)

	switch dt {
	case TypeInt32:
		// The sim reports some int32 vars as boolean tokens.
		if b, ok := parseBoolToken(text); ok {
			if b {
				return IntValue(dt, 1), nil
			}
			return IntValue(dt, 0), nil
		}
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid INT32 value %q", text)
		}
		return IntValue(dt, n), nil

	case TypeInt64:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid INT64 value %q", text)
		}
		return IntValue(dt, n), nil

	case TypeFloat32:
		f, err := ParseFloat(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid FLOAT32 value %q", text)
		}
		return FloatValue(dt, float64(float32(f))), nil

	case TypeFloat64:
		f, err := ParseFloat(text)
		if err != nil {
			return Value{}, fmt.Errorf("invalid FLOAT64 value %q", text)
		}
		return FloatValue(dt, f), nil

	case TypeLatLonAlt:
		t, err := parseTriple(text, "lat,lon,alt")
		if err != nil {
			return Value{}, err
		}
		return TripleValue(dt, t[0], t[1], t[2]), nil

	case TypeXYZ:
		t, err := parseTriple(text, "x,y,z")
		if err != nil {
			return Value{}, err
		}
		return TripleValue(dt, t[0], t[1], t[2]), nil

	default:
		if dt.IsString() {
			return StringValue(dt, text), nil
		}
		return Value{}, fmt.Errorf("unsupported data type %s", dt)
	}
}

// Format renders a Value back to its text form. It is the parse inverse for
// scalars; triples join their components with commas in declared field order.
func Format(v Value) string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindTriple:
		parts := make([]string, 3)
		for i, f := range v.Triple {
			parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// ParseFloat parses a locale-invariant float, tolerating thousands separators
// the sim UI sometimes emits ("1,234.5").
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		// Commas before the decimal point are group separators.
		s = strings.ReplaceAll(s, ",", "")
	} else if n := strings.Count(s, ","); n > 0 {
		// No decimal point: "1,234" is grouped, a lone "1,5" is ambiguous
		// but the sim never emits decimal commas, so strip them all.
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func parseBoolToken(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseTriple(s, format string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("expected three comma-separated values (%s), got %q", format, s)
	}
	var t [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("expected three comma-separated values (%s), bad segment %q", format, p)
		}
		t[i] = f
	}
	return t, nil
}
