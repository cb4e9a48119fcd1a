package attr

import (
	"sort"
	"sync"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/gwparam/paramstore/engine/gwlog"
	"github.com/pkg/errors"
)

// Registry maps class names and class ids to schemas
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*ClassDesc
	byID   map[uint16]*ClassDesc
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byName: map[string]*ClassDesc{},
		byID:   map[uint16]*ClassDesc{},
	}
}

// Default returns the process wide registry
func Default() *Registry {
	return defaultRegistry
}

// AddClass registers a new empty class schema
func (r *Registry) AddClass(name string, id uint16) (*ClassDesc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return nil, errors.Errorf("class %s already registered", name)
	}
	if other, ok := r.byID[id]; ok {
		return nil, errors.Errorf("class %s: id %d already used by %s", name, id, other.Name)
	}
	c := newClassDesc(name, id)
	r.byName[name] = c
	r.byID[id] = c
	gwlog.Debugf(">>> RegisterClass %s (%d) <<<", name, id)
	return c, nil
}

// RegisterClass registers a class and panics if it is already registered
func (r *Registry) RegisterClass(name string, id uint16) *ClassDesc {
	c, err := r.AddClass(name, id)
	if err != nil {
		gwlog.Panicf("RegisterClass: %s", err)
	}
	return c
}

// Class returns the class of the given name
func (r *Registry) Class(name string) (*ClassDesc, error) {
	r.mu.RLock()
	c, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(common.ErrInvalidData, "unknown class %q", name)
	}
	return c, nil
}

// ClassByID returns the class of the given id
func (r *Registry) ClassByID(id uint16) (*ClassDesc, error) {
	r.mu.RLock()
	c, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(common.ErrInvalidData, "unknown class id %d", id)
	}
	return c, nil
}

// Classes returns all registered classes ordered by id
func (r *Registry) Classes() []*ClassDesc {
	r.mu.RLock()
	classes := make([]*ClassDesc, 0, len(r.byID))
	for _, c := range r.byID {
		classes = append(classes, c)
	}
	r.mu.RUnlock()
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

// RegisterClass registers a class in the default registry
func RegisterClass(name string, id uint16) *ClassDesc {
	return defaultRegistry.RegisterClass(name, id)
}

// GetClass returns a class of the default registry
func GetClass(name string) (*ClassDesc, error) {
	return defaultRegistry.Class(name)
}

// GetClassByID returns a class of the default registry by id
func GetClassByID(id uint16) (*ClassDesc, error) {
	return defaultRegistry.ClassByID(id)
}
