package gameobject

import (
	"sync"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/gwparam/paramstore/engine/paramset"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

// Object is the class agnostic surface of a game object, for code that only knows the class at runtime
type Object interface {
	Class() *attr.ClassDesc
	GetNamed(name string) (value.Value, error)
	SetNamed(name string, v value.Value) (value.Value, error)
	// Diff returns the attributes whose resolved value differs from other
	Diff(other Object) (*paramset.ParamSet, error)
	Apply(delta *paramset.ParamSet) error
	CloneObject() Object
	AsJSON() (map[string]interface{}, error)
	FromJSON(doc map[string]interface{}) error
	// Build constructs the runtime representation registered for the class
	Build() (interface{}, error)
}

var _ Object = (*GameObjectData)(nil)

// Diff compares the resolved values of o and other. Both must be of the same class.
func (o *GameObjectData) Diff(other Object) (*paramset.ParamSet, error) {
	if od, ok := other.(*GameObjectData); ok {
		return o.DiffData(od)
	}
	if other.Class() != o.class {
		return nil, o.classMismatch(other.Class())
	}
	delta := paramset.New(o.class)
	for _, d := range o.class.Attributes() {
		ov, err := other.GetNamed(d.Name)
		if err != nil {
			return nil, err
		}
		v := o.resolve(d)
		if value.Equal(v, ov) {
			continue
		}
		if _, err := delta.Insert(d.ID, v); err != nil {
			return nil, err
		}
	}
	return delta, nil
}

// CloneObject is Clone behind the Object interface
func (o *GameObjectData) CloneObject() Object {
	return o.Clone()
}

// GetAs returns the resolved value of name as the concrete value type T
func GetAs[T value.Value](o Object, name string) (T, error) {
	v, err := o.GetNamed(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return value.As[T](v)
}

// GetBool returns a bool attribute
func (o *GameObjectData) GetBool(name string) (bool, error) {
	v, err := GetAs[value.Bool](o, name)
	return bool(v), err
}

// GetInt returns an int attribute
func (o *GameObjectData) GetInt(name string) (int32, error) {
	v, err := GetAs[value.Int](o, name)
	return int32(v), err
}

// GetInt64 returns an int64 attribute
func (o *GameObjectData) GetInt64(name string) (int64, error) {
	v, err := GetAs[value.Int64](o, name)
	return int64(v), err
}

// GetFloat returns a float attribute
func (o *GameObjectData) GetFloat(name string) (float32, error) {
	v, err := GetAs[value.Float](o, name)
	return float32(v), err
}

// GetDouble returns a double attribute
func (o *GameObjectData) GetDouble(name string) (float64, error) {
	v, err := GetAs[value.Double](o, name)
	return float64(v), err
}

// GetStr returns a string attribute
func (o *GameObjectData) GetStr(name string) (string, error) {
	v, err := GetAs[value.String](o, name)
	return string(v), err
}

// GetVector3 returns a vector3 attribute
func (o *GameObjectData) GetVector3(name string) (value.Vector3, error) {
	return GetAs[value.Vector3](o, name)
}

// SetBool sets a bool attribute
func (o *GameObjectData) SetBool(name string, b bool) error {
	_, err := o.SetNamed(name, value.Bool(b))
	return err
}

// SetInt sets an int attribute
func (o *GameObjectData) SetInt(name string, i int32) error {
	_, err := o.SetNamed(name, value.Int(i))
	return err
}

// SetInt64 sets an int64 attribute
func (o *GameObjectData) SetInt64(name string, i int64) error {
	_, err := o.SetNamed(name, value.Int64(i))
	return err
}

// SetFloat sets a float attribute
func (o *GameObjectData) SetFloat(name string, f float32) error {
	_, err := o.SetNamed(name, value.Float(f))
	return err
}

// SetDouble sets a double attribute
func (o *GameObjectData) SetDouble(name string, f float64) error {
	_, err := o.SetNamed(name, value.Double(f))
	return err
}

// SetStr sets a string attribute
func (o *GameObjectData) SetStr(name string, s string) error {
	_, err := o.SetNamed(name, value.String(s))
	return err
}

// SetVector3 sets a vector3 attribute
func (o *GameObjectData) SetVector3(name string, v value.Vector3) error {
	_, err := o.SetNamed(name, v)
	return err
}

// Builder constructs the runtime representation of an object, e.g. an ECS entity bundle
type Builder func(o *GameObjectData) (interface{}, error)

var (
	buildersLock sync.RWMutex
	builders     = map[string]Builder{}
)

// RegisterBuilder registers the builder of a class name. Registering twice replaces the builder.
func RegisterBuilder(className string, b Builder) {
	buildersLock.Lock()
	defer buildersLock.Unlock()
	if _, ok := builders[className]; ok {
		gwlog.Warnf("RegisterBuilder: replacing builder of %s", className)
	}
	builders[className] = b
}

// Build runs the builder registered for the class of o
func (o *GameObjectData) Build() (interface{}, error) {
	buildersLock.RLock()
	b, ok := builders[o.class.Name]
	buildersLock.RUnlock()
	if !ok {
		return nil, errors.Errorf("no builder registered for class %s", o.class.Name)
	}
	return b(o)
}
