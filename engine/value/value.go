package value

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// Value is one attribute value. The concrete type always matches Kind().
type Value interface {
	Kind() Kind
}

type (
	// Bool is a boolean value
	Bool bool
	// Int is a signed 32 bit integer
	Int int32
	// Int64 is a signed 64 bit integer
	Int64 int64
	// UInt is an unsigned 32 bit integer
	UInt uint32
	// Float is a 32 bit float
	Float float32
	// Double is a 64 bit float
	Double float64
	// String is an UTF-8 string of at most 65535 bytes
	String string
	// GUID is a 16 byte identifier
	GUID uuid.UUID
	// LocalizedString references an entry of the localization tables
	LocalizedString uuid.UUID
	// GUIDSet is an unordered set of GUIDs
	GUIDSet map[uuid.UUID]struct{}
	// ContentRefList is a list of content references
	ContentRefList []ContentRef
	// IntArray is an array of Int
	IntArray []int32
	// Int64Array is an array of Int64
	Int64Array []int64
	// FloatArray is an array of Float
	FloatArray []float32
	// StringArray is an array of String
	StringArray []string
	// Vector3Array is an array of Vector3
	Vector3Array []Vector3
)

// Vector3 is a position or direction in world space
type Vector3 struct {
	X, Y, Z float32
}

// ContentRef references static content (templates, items, ...) by content class and GUID.
// The zero ContentRef means "unset".
type ContentRef struct {
	Class uint16
	ID    uuid.UUID
}

func (Bool) Kind() Kind            { return KindBool }
func (Int) Kind() Kind             { return KindInt }
func (Int64) Kind() Kind           { return KindInt64 }
func (UInt) Kind() Kind            { return KindUInt }
func (Float) Kind() Kind           { return KindFloat }
func (Double) Kind() Kind          { return KindDouble }
func (String) Kind() Kind          { return KindString }
func (Vector3) Kind() Kind         { return KindVector3 }
func (GUID) Kind() Kind            { return KindGUID }
func (LocalizedString) Kind() Kind { return KindLocalizedString }
func (JSON) Kind() Kind            { return KindJSON }
func (ContentRef) Kind() Kind      { return KindContentRef }
func (ContentRefList) Kind() Kind  { return KindContentRefList }
func (GUIDSet) Kind() Kind         { return KindGUIDSet }
func (IntArray) Kind() Kind        { return KindIntArray }
func (Int64Array) Kind() Kind      { return KindInt64Array }
func (FloatArray) Kind() Kind      { return KindFloatArray }
func (StringArray) Kind() Kind     { return KindStringArray }
func (Vector3Array) Kind() Kind    { return KindVector3Array }

// NewGUIDSet creates a GUIDSet holding ids
func NewGUIDSet(ids ...uuid.UUID) GUIDSet {
	s := make(GUIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Sorted returns the members of the set in byte order
func (s GUIDSet) Sorted() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Zero returns the zero value of kind k, or nil for an invalid kind
func Zero(k Kind) Value {
	switch k {
	case KindBool:
		return Bool(false)
	case KindInt:
		return Int(0)
	case KindInt64:
		return Int64(0)
	case KindUInt:
		return UInt(0)
	case KindFloat:
		return Float(0)
	case KindDouble:
		return Double(0)
	case KindString:
		return String("")
	case KindVector3:
		return Vector3{}
	case KindGUID:
		return GUID{}
	case KindLocalizedString:
		return LocalizedString{}
	case KindJSON:
		return JSON{}
	case KindContentRef:
		return ContentRef{}
	case KindContentRefList:
		return ContentRefList{}
	case KindGUIDSet:
		return GUIDSet{}
	case KindIntArray:
		return IntArray{}
	case KindInt64Array:
		return Int64Array{}
	case KindFloatArray:
		return FloatArray{}
	case KindStringArray:
		return StringArray{}
	case KindVector3Array:
		return Vector3Array{}
	}
	return nil
}

// ShouldSkip reports values that writers leave out of every envelope:
// an unset content reference and a null JSON payload.
func ShouldSkip(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case ContentRef:
		return val.ID == uuid.Nil
	case JSON:
		return val.IsNull()
	}
	return false
}

// Equal compares two values. Values of different kinds are never equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case JSON:
		return av.Equal(b.(JSON))
	case ContentRefList:
		bv := b.(ContentRefList)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case GUIDSet:
		bv := b.(GUIDSet)
		if len(av) != len(bv) {
			return false
		}
		for id := range av {
			if _, ok := bv[id]; !ok {
				return false
			}
		}
		return true
	case IntArray:
		return equalSlices(av, b.(IntArray))
	case Int64Array:
		return equalSlices(av, b.(Int64Array))
	case FloatArray:
		return equalSlicesFunc(av, b.(FloatArray), func(x, y float32) bool { return sameFloat(float64(x), float64(y)) })
	case StringArray:
		return equalSlices(av, b.(StringArray))
	case Vector3Array:
		return equalSlicesFunc(av, b.(Vector3Array), sameVector3)
	case Float:
		return sameFloat(float64(av), float64(b.(Float)))
	case Double:
		return sameFloat(float64(av), float64(b.(Double)))
	case Vector3:
		return sameVector3(av, b.(Vector3))
	}
	// all remaining kinds are comparable
	return a == b
}

// sameFloat is == except that NaN equals NaN, so storing NaN twice is not a change
func sameFloat(a, b float64) bool {
	return a == b || (a != a && b != b)
}

func sameVector3(a, b Vector3) bool {
	return sameFloat(float64(a.X), float64(b.X)) && sameFloat(float64(a.Y), float64(b.Y)) && sameFloat(float64(a.Z), float64(b.Z))
}

func equalSlicesFunc[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone deep copies aggregate values so that the copy can be mutated independently
func Clone(v Value) Value {
	switch val := v.(type) {
	case ContentRefList:
		return append(ContentRefList(nil), val...)
	case GUIDSet:
		return NewGUIDSet(val.Sorted()...)
	case IntArray:
		return append(IntArray(nil), val...)
	case Int64Array:
		return append(Int64Array(nil), val...)
	case FloatArray:
		return append(FloatArray(nil), val...)
	case StringArray:
		return append(StringArray(nil), val...)
	case Vector3Array:
		return append(Vector3Array(nil), val...)
	}
	// scalars are copied by value, JSON cells are immutable once published
	return v
}
