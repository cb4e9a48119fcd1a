package attr

import (
	"io"
	"os"

	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// schemaFile is the document layout written by the schema generator
type schemaFile struct {
	Classes []struct {
		Name       string `yaml:"name"`
		ID         uint16 `yaml:"id"`
		Attributes []struct {
			ID      uint16      `yaml:"id"`
			Name    string      `yaml:"name"`
			Type    string      `yaml:"type"`
			Default interface{} `yaml:"default"`
			Flags   []string    `yaml:"flags"`
		} `yaml:"attributes"`
	} `yaml:"classes"`
}

// LoadYAML reads generated class schemas and registers them. Nothing is registered on error.
func (r *Registry) LoadYAML(in io.Reader) ([]*ClassDesc, error) {
	var sf schemaFile
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, errors.Wrap(err, "decode schema")
	}

	// build everything first, then publish
	staged := make([]*ClassDesc, 0, len(sf.Classes))
	for _, sc := range sf.Classes {
		c := newClassDesc(sc.Name, sc.ID)
		for _, sa := range sc.Attributes {
			kind, err := value.ParseKind(sa.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "%s::%s", sc.Name, sa.Name)
			}
			flags, err := ParseFlags(sa.Flags...)
			if err != nil {
				return nil, errors.Wrapf(err, "%s::%s", sc.Name, sa.Name)
			}
			var def value.Value
			if sa.Default != nil {
				if def, err = value.FromJSON(kind, sa.Default); err != nil {
					return nil, errors.Wrapf(err, "%s::%s default", sc.Name, sa.Name)
				}
			}
			if _, err := c.AddAttr(Descriptor{ID: sa.ID, Name: sa.Name, Kind: kind, Default: def, Flags: flags}); err != nil {
				return nil, err
			}
		}
		staged = append(staged, c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	seenNames := map[string]bool{}
	seenIDs := map[uint16]bool{}
	for _, c := range staged {
		if _, ok := r.byName[c.Name]; ok || seenNames[c.Name] {
			return nil, errors.Errorf("class %s already registered", c.Name)
		}
		if _, ok := r.byID[c.ID]; ok || seenIDs[c.ID] {
			return nil, errors.Errorf("class %s: id %d already used", c.Name, c.ID)
		}
		seenNames[c.Name] = true
		seenIDs[c.ID] = true
	}
	for _, c := range staged {
		r.byName[c.Name] = c
		r.byID[c.ID] = c
	}
	return staged, nil
}

// LoadYAMLFile reads a schema file into the registry
func (r *Registry) LoadYAMLFile(path string) ([]*ClassDesc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	classes, err := r.LoadYAML(f)
	return classes, errors.Wrapf(err, "schema file %s", path)
}
