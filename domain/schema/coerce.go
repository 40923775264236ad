package schema

import (
	"fmt"
	"strconv"
)

// CoerceValue converts a raw storage or query value into the typed
// in-memory form declared for the field. Raw values cover the shapes a
// sql driver hands back: int64, bool, string, []byte, float64 and nil.
func CoerceValue(name string, value any, typ Type) (any, error) {
	switch typ {
	case Bool:
		return toBool(value), nil
	case Int:
		return toInt(value), nil
	case String:
		return toString(value), nil
	default:
		return nil, fmt.Errorf("%w: field %q declared as %q", ErrUnsupportedType, name, typ)
	}
}

// CoerceRow applies per-field coercion across a raw row. Fields absent
// from the schema pass through untouched.
func CoerceRow(row map[string]any, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(row))
	byName := make(map[string]Type, len(fields))
	for _, f := range fields {
		byName[f.Name] = f.Type
	}
	for name, raw := range row {
		typ, ok := byName[name]
		if !ok {
			out[name] = raw
			continue
		}
		v, err := CoerceValue(name, raw, typ)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func toBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []byte:
		return truthyString(string(x))
	case string:
		return truthyString(x)
	default:
		return true
	}
}

func truthyString(s string) bool {
	switch s {
	case "", "0", "false":
		return false
	}
	return true
}

func toInt(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case int:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
