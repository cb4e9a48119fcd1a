package storagecommon

import "github.com/gwparam/paramstore/engine/common"

// ObjectStorage defines the interface of object storage backends.
//
// Documents map attribute names to plain data as produced by GameObjectData.AsJSON. Backends may
// return numbers in any width their decoder produces.
type ObjectStorage interface {
	List(className string) ([]common.ObjectID, error)
	Write(className string, id common.ObjectID, doc map[string]interface{}) error
	// Read returns a nil document when the object does not exist
	Read(className string, id common.ObjectID) (map[string]interface{}, error)
	Exists(className string, id common.ObjectID) (bool, error)
	Close()
	IsEOF(err error) bool
}
