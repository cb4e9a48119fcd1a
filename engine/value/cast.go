package value

import (
	"fmt"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/pkg/errors"
)

// As converts v to the concrete value type T, failing with a TypeMismatchError instead of panicking
func As[T Value](v Value) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.WithStack(&common.TypeMismatchError{Expected: typeName(zero), Actual: typeName(v)})
	}
	return t, nil
}

// Check verifies that v is of kind k
func Check(k Kind, v Value) error {
	if v == nil || v.Kind() != k {
		return errors.WithStack(&common.TypeMismatchError{Expected: k.String(), Actual: typeName(v)})
	}
	return nil
}

func typeName(v interface{}) string {
	if val, ok := v.(Value); ok && val != nil {
		return val.Kind().String()
	}
	return fmt.Sprintf("%T", v)
}
