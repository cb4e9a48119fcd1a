package value

import (
	"bytes"
	"fmt"
	"math"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/pkg/errors"
	"github.com/xiaonanln/typeconv"
)

// ToJSON converts v to plain Go data (bool, numbers, string, []interface{}, map[string]interface{})
// that marshals to the JSON form of the value.
func ToJSON(v Value) (interface{}, error) {
	switch val := v.(type) {
	case Bool:
		return bool(val), nil
	case Int:
		return int32(val), nil
	case Int64:
		return int64(val), nil
	case UInt:
		return uint32(val), nil
	case Float:
		return float32(val), nil
	case Double:
		return float64(val), nil
	case String:
		return string(val), nil
	case Vector3:
		return []interface{}{val.X, val.Y, val.Z}, nil
	case GUID:
		return uuid.UUID(val).String(), nil
	case LocalizedString:
		return uuid.UUID(val).String(), nil
	case JSON:
		return val.Document()
	case ContentRef:
		return contentRefToJSON(val), nil
	case ContentRefList:
		l := make([]interface{}, len(val))
		for i, ref := range val {
			l[i] = contentRefToJSON(ref)
		}
		return l, nil
	case GUIDSet:
		ids := val.Sorted()
		l := make([]interface{}, len(ids))
		for i, id := range ids {
			l[i] = id.String()
		}
		return l, nil
	case IntArray:
		return toJSONList(val), nil
	case Int64Array:
		return toJSONList(val), nil
	case FloatArray:
		return toJSONList(val), nil
	case StringArray:
		return toJSONList(val), nil
	case Vector3Array:
		l := make([]interface{}, len(val))
		for i, vec := range val {
			l[i] = []interface{}{vec.X, vec.Y, vec.Z}
		}
		return l, nil
	}
	return nil, &common.TypeMismatchError{Expected: "attribute value", Actual: typeName(v)}
}

func toJSONList[T any](s []T) []interface{} {
	l := make([]interface{}, len(s))
	for i, e := range s {
		l[i] = e
	}
	return l
}

func contentRefToJSON(ref ContentRef) interface{} {
	return map[string]interface{}{
		"class": ref.Class,
		"id":    ref.ID.String(),
	}
}

// FromJSON builds a value of kind k from decoded data. Input may come from a JSON decoder
// (float64 or json.Number), MessagePack (any sized integer) or BSON documents, so numbers are
// converted loosely but never lossily.
func FromJSON(k Kind, data interface{}) (Value, error) {
	switch k {
	case KindBool:
		b, ok := data.(bool)
		if !ok {
			return nil, mismatch(k, data)
		}
		return Bool(b), nil
	case KindInt:
		i, err := toInt64(data, math.MinInt32, math.MaxInt32)
		return Int(int32(i)), errors.Wrap(err, k.String())
	case KindInt64:
		i, err := toInt64(data, math.MinInt64, math.MaxInt64)
		return Int64(i), errors.Wrap(err, k.String())
	case KindUInt:
		i, err := toInt64(data, 0, math.MaxUint32)
		return UInt(uint32(i)), errors.Wrap(err, k.String())
	case KindFloat:
		f, err := toFloat64(data)
		return Float(float32(f)), errors.Wrap(err, k.String())
	case KindDouble:
		f, err := toFloat64(data)
		return Double(f), errors.Wrap(err, k.String())
	case KindString:
		s, ok := data.(string)
		if !ok {
			return nil, mismatch(k, data)
		}
		return String(s), nil
	case KindVector3:
		return vector3FromJSON(data)
	case KindGUID:
		id, err := guidFromJSON(data)
		return GUID(id), err
	case KindLocalizedString:
		id, err := guidFromJSON(data)
		return LocalizedString(id), err
	case KindJSON:
		return NewJSON(data)
	case KindContentRef:
		return contentRefFromJSON(data)
	case KindContentRefList:
		return listFromJSON(k, data, func(e interface{}) (ContentRef, error) { return contentRefFromJSON(e) }, func(l []ContentRef) Value { return ContentRefList(l) })
	case KindGUIDSet:
		return listFromJSON(k, data, guidFromJSON, func(l []uuid.UUID) Value { return NewGUIDSet(l...) })
	case KindIntArray:
		return listFromJSON(k, data, func(e interface{}) (int32, error) {
			i, err := toInt64(e, math.MinInt32, math.MaxInt32)
			return int32(i), err
		}, func(l []int32) Value { return IntArray(l) })
	case KindInt64Array:
		return listFromJSON(k, data, func(e interface{}) (int64, error) {
			return toInt64(e, math.MinInt64, math.MaxInt64)
		}, func(l []int64) Value { return Int64Array(l) })
	case KindFloatArray:
		return listFromJSON(k, data, func(e interface{}) (float32, error) {
			f, err := toFloat64(e)
			return float32(f), err
		}, func(l []float32) Value { return FloatArray(l) })
	case KindStringArray:
		return listFromJSON(k, data, func(e interface{}) (string, error) {
			s, ok := e.(string)
			if !ok {
				return "", mismatch(KindString, e)
			}
			return s, nil
		}, func(l []string) Value { return StringArray(l) })
	case KindVector3Array:
		return listFromJSON(k, data, vector3FromJSON, func(l []Vector3) Value { return Vector3Array(l) })
	}
	return nil, &common.TypeMismatchError{Expected: "attribute value kind", Actual: k.String()}
}

// UnmarshalJSONValue parses JSON text into a value of kind k
func UnmarshalJSONValue(k Kind, b []byte) (Value, error) {
	if k == KindJSON {
		return NewJSONBytes(append([]byte(nil), b...)), nil
	}
	var data interface{}
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return nil, &common.InvalidDataError{Reason: err.Error()}
	}
	return FromJSON(k, data)
}

func listFromJSON[T any](k Kind, data interface{}, elem func(interface{}) (T, error), build func([]T) Value) (Value, error) {
	l, ok := asList(data)
	if !ok {
		return nil, mismatch(k, data)
	}
	out := make([]T, len(l))
	for i, e := range l {
		v, err := elem(e)
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d]", k, i)
		}
		out[i] = v
	}
	return build(out), nil
}

func asList(data interface{}) ([]interface{}, bool) {
	if l, ok := data.([]interface{}); ok {
		return l, true
	}
	if data == nil {
		return nil, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	l := make([]interface{}, rv.Len())
	for i := range l {
		l[i] = rv.Index(i).Interface()
	}
	return l, true
}

func asMap(data interface{}) (map[string]interface{}, bool) {
	switch m := data.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	return nil, false
}

func vector3FromJSON(data interface{}) (Vector3, error) {
	l, ok := asList(data)
	if !ok || len(l) != 3 {
		return Vector3{}, mismatch(KindVector3, data)
	}
	var xyz [3]float32
	for i, e := range l {
		f, err := toFloat64(e)
		if err != nil {
			return Vector3{}, err
		}
		xyz[i] = float32(f)
	}
	return Vector3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func guidFromJSON(data interface{}) (uuid.UUID, error) {
	s, ok := data.(string)
	if !ok {
		return uuid.Nil, mismatch(KindGUID, data)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &common.InvalidDataError{Reason: "guid: " + err.Error()}
	}
	return id, nil
}

func contentRefFromJSON(data interface{}) (ContentRef, error) {
	if data == nil {
		return ContentRef{}, nil
	}
	m, ok := asMap(data)
	if !ok {
		return ContentRef{}, mismatch(KindContentRef, data)
	}
	class, err := toInt64(m["class"], 0, math.MaxUint16)
	if err != nil {
		return ContentRef{}, errors.Wrap(err, "content_ref.class")
	}
	id, err := guidFromJSON(m["id"])
	if err != nil {
		return ContentRef{}, errors.Wrap(err, "content_ref.id")
	}
	return ContentRef{Class: uint16(class), ID: id}, nil
}

var float64Type = reflect.TypeOf(float64(0))

func toInt64(data interface{}, min, max int64) (i int64, err error) {
	switch n := data.(type) {
	case json.Number:
		if i, err = n.Int64(); err != nil {
			return 0, mismatch(KindInt64, data)
		}
	case float64:
		if i, err = floatToInt64(n); err != nil {
			return 0, err
		}
	case float32:
		if i, err = floatToInt64(float64(n)); err != nil {
			return 0, err
		}
	case uint64:
		if n > math.MaxInt64 {
			return 0, mismatch(KindInt64, data)
		}
		i = int64(n)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		i = typeconv.Int(n)
	default:
		return 0, mismatch(KindInt64, data)
	}
	if i < min || i > max {
		return 0, &common.InvalidDataError{Reason: fmt.Sprintf("%d out of range [%d, %d]", i, min, max)}
	}
	return i, nil
}

// floatToInt64 accepts only integral floats inside the int64 range; int64(f) is undefined outside it
func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, mismatch(KindInt64, f)
	}
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, &common.InvalidDataError{Reason: fmt.Sprintf("%g out of int64 range", f)}
	}
	return int64(f), nil
}

func toFloat64(data interface{}) (f float64, err error) {
	switch n := data.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case json.Number:
		if f, err = n.Float64(); err != nil {
			return 0, mismatch(KindDouble, data)
		}
		return f, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return typeconv.Convert(n, float64Type).Float(), nil
	}
	return 0, mismatch(KindDouble, data)
}

func mismatch(k Kind, data interface{}) error {
	return errors.WithStack(&common.TypeMismatchError{Expected: k.String(), Actual: fmt.Sprintf("%T", data)})
}
