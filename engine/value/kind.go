package value

import (
	"fmt"
	"strings"

	"github.com/gwparam/paramstore/engine/common"
)

// Kind is the declared type of an attribute value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt64
	KindUInt
	KindFloat
	KindDouble
	KindString
	KindVector3
	KindGUID
	KindLocalizedString
	KindJSON
	KindContentRef
	KindContentRefList
	KindGUIDSet
	KindIntArray
	KindInt64Array
	KindFloatArray
	KindStringArray
	KindVector3Array
	numKinds
)

var kindNames = [numKinds]string{
	KindInvalid:         "invalid",
	KindBool:            "bool",
	KindInt:             "int",
	KindInt64:           "int64",
	KindUInt:            "uint",
	KindFloat:           "float",
	KindDouble:          "double",
	KindString:          "string",
	KindVector3:         "vector3",
	KindGUID:            "guid",
	KindLocalizedString: "localized_string",
	KindJSON:            "json",
	KindContentRef:      "content_ref",
	KindContentRefList:  "content_ref_list",
	KindGUIDSet:         "guid_set",
	KindIntArray:        "int_array",
	KindInt64Array:      "int64_array",
	KindFloatArray:      "float_array",
	KindStringArray:     "string_array",
	KindVector3Array:    "vector3_array",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid returns if k names a storable kind
func (k Kind) Valid() bool {
	return k > KindInvalid && k < numKinds
}

// ParseKind parses the kind names used by schema files
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := KindBool; k < numKinds; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindInvalid, &common.TypeMismatchError{Expected: "value kind", Actual: s}
}
