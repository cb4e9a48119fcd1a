package value

import (
	"math"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/pkg/errors"
)

func TestKindNames(t *testing.T) {
	for k := KindBool; k < numKinds; k++ {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%s): %v", k, err)
		}
		assert.Equal(t, k, parsed)
		if Zero(k) == nil || Zero(k).Kind() != k {
			t.Errorf("Zero(%s) has wrong kind", k)
		}
	}
	if _, err := ParseKind("quaternion"); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("unknown kind should be a type mismatch, got %v", err)
	}
	if KindInvalid.Valid() || !KindVector3Array.Valid() {
		t.Errorf("wrong Valid()")
	}
}

func TestEqual(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		a, b  Value
		equal bool
	}{
		{Int(5), Int(5), true},
		{Int(5), Int64(5), false},
		{String("a"), String("b"), false},
		{Vector3{1, 2, 3}, Vector3{1, 2, 3}, true},
		{GUID(id), GUID(id), true},
		{IntArray{1, 2}, IntArray{1, 2}, true},
		{IntArray{1, 2}, IntArray{2, 1}, false},
		{StringArray{}, StringArray(nil), true},
		{NewGUIDSet(id, uuid.Nil), NewGUIDSet(uuid.Nil, id), true},
		{NewGUIDSet(id), NewGUIDSet(uuid.Nil), false},
		{ContentRefList{{Class: 1, ID: id}}, ContentRefList{{Class: 1, ID: id}}, true},
		{MustJSON(map[string]interface{}{"a": 1}), NewJSONBytes([]byte(`{ "a" : 1 }`)), true},
		{MustJSON([]int{1}), MustJSON([]int{2}), false},
		{nil, nil, true},
		{nil, Int(0), false},
		{Double(math.NaN()), Double(math.NaN()), true},
		{Float(float32(math.NaN())), Float(float32(math.NaN())), true},
		{Double(math.NaN()), Double(0), false},
		{Double(0), Double(math.Copysign(0, -1)), true},
		{Vector3{float32(math.NaN()), 1, 2}, Vector3{float32(math.NaN()), 1, 2}, true},
		{FloatArray{float32(math.NaN())}, FloatArray{float32(math.NaN())}, true},
		{Vector3Array{{X: 1}}, Vector3Array{{X: 2}}, false},
	}
	for i, c := range cases {
		if Equal(c.a, c.b) != c.equal {
			t.Errorf("case %d: Equal(%v, %v) should be %v", i, c.a, c.b, c.equal)
		}
	}
}

func TestShouldSkip(t *testing.T) {
	assert.T(t, ShouldSkip(ContentRef{}), "unset content ref should be skipped")
	assert.T(t, !ShouldSkip(ContentRef{ID: uuid.New()}), "set content ref should not be skipped")
	assert.T(t, ShouldSkip(JSON{}), "empty json should be skipped")
	assert.T(t, ShouldSkip(NewJSONBytes([]byte("null"))), "null json should be skipped")
	assert.T(t, !ShouldSkip(MustJSON(0)), "json 0 should not be skipped")
	assert.T(t, !ShouldSkip(Bool(false)), "scalars are never skipped")
	assert.T(t, !ShouldSkip(Bool(true)), "scalars are never skipped")
}

func TestClone(t *testing.T) {
	arr := IntArray{1, 2, 3}
	cp := Clone(arr).(IntArray)
	cp[0] = 100
	assert.Equal(t, int32(1), arr[0])

	set := NewGUIDSet(uuid.New())
	cpSet := Clone(set).(GUIDSet)
	cpSet[uuid.New()] = struct{}{}
	assert.Equal(t, 1, len(set))
}

func TestAs(t *testing.T) {
	var v Value = String("Zone1")
	s, err := As[String](v)
	if err != nil || s != "Zone1" {
		t.Fatalf("As[String] failed: %v", err)
	}

	_, err = As[Int](v)
	if !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("As[Int] on a string should fail with type mismatch, got %v", err)
	}
	var tm *common.TypeMismatchError
	if !errors.As(err, &tm) || tm.Expected != "int" || tm.Actual != "string" {
		t.Errorf("wrong mismatch detail: %+v", tm)
	}

	if err := Check(KindString, v); err != nil {
		t.Error(err)
	}
	if err := Check(KindInt, nil); !errors.Is(err, common.ErrTypeMismatch) {
		t.Errorf("nil value should not pass Check")
	}
}
