package nativeparam

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// FromInterface converts a Go value to a param.
//
// Sized Go types map to the param of the same width. A plain int becomes Int when it fits 32 bits
// and LongLong otherwise. Slices of interface{} become Structs and maps become JsonValues.
func FromInterface(v interface{}) (Param, error) {
	switch val := v.(type) {
	case nil:
		return Invalid{}, nil
	case Param:
		return val, nil
	case uint8:
		return Byte(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Double(val), nil
	case int32:
		return Int(val), nil
	case int:
		if val >= math.MinInt32 && val <= math.MaxInt32 {
			return Int(val), nil
		}
		return LongLong(val), nil
	case int64:
		return LongLong(val), nil
	case uint32:
		return UInt(val), nil
	case uint64:
		return AvatarId(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case uuid.UUID:
		return Guid(val), nil
	case value.Vector3:
		return Vector3(val), nil
	case value.JSON:
		return JsonValue(val), nil
	case []byte:
		return Buffer(val), nil
	case []int32:
		return IntArray(val), nil
	case []uuid.UUID:
		return GuidArray(val), nil
	case []string:
		return StringArray(val), nil
	case []interface{}:
		fields := make(Struct, len(val))
		for i, e := range val {
			field, err := FromInterface(e)
			if err != nil {
				return nil, errors.Wrapf(err, "field %d", i)
			}
			fields[i] = field
		}
		return fields, nil
	case map[string]interface{}:
		j, err := value.NewJSON(val)
		return JsonValue(j), err
	}
	return nil, errors.WithStack(&common.TypeMismatchError{Expected: "native param", Actual: fmt.Sprintf("%T", v)})
}

// ToInterface converts a param back to the Go value FromInterface accepts for it
func ToInterface(param Param) interface{} {
	switch v := param.(type) {
	case Invalid:
		return nil
	case Byte:
		return uint8(v)
	case Float:
		return float32(v)
	case Double:
		return float64(v)
	case Int:
		return int32(v)
	case String:
		return string(v)
	case Struct:
		fields := make([]interface{}, len(v))
		for i, field := range v {
			fields[i] = ToInterface(field)
		}
		return fields
	case Guid:
		return uuid.UUID(v)
	case AvatarId:
		return uint64(v)
	case Vector3:
		return value.Vector3(v)
	case Bool:
		return bool(v)
	case JsonValue:
		return value.JSON(v)
	case IntArray:
		return []int32(v)
	case LongLong:
		return int64(v)
	case Buffer:
		return []byte(v)
	case UInt:
		return uint32(v)
	case GuidArray:
		return []uuid.UUID(v)
	case StringArray:
		return []string(v)
	}
	return nil
}

// Render formats a param as JSON text for logs
func Render(param Param) string {
	b, err := json.Marshal(renderable(param))
	if err != nil {
		return param.Tag().String() + "(?)"
	}
	return string(b)
}

func renderable(param Param) interface{} {
	switch v := param.(type) {
	case Struct:
		fields := make([]interface{}, len(v))
		for i, field := range v {
			fields[i] = renderable(field)
		}
		return fields
	case JsonValue:
		doc, err := value.JSON(v).Document()
		if err != nil {
			return nil
		}
		return doc
	case Vector3:
		return []float32{v.X, v.Y, v.Z}
	case Guid:
		return uuid.UUID(v).String()
	case GuidArray:
		ids := make([]string, len(v))
		for i, id := range v {
			ids[i] = id.String()
		}
		return ids
	}
	return ToInterface(param)
}
