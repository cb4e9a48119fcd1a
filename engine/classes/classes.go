// Package classes holds the generated class schemas of the sample game
package classes

import (
	"bytes"
	_ "embed"

	"github.com/gwparam/paramstore/engine/attr"
	"github.com/pkg/errors"
)

// class names
const (
	Player = "Player"
	Npc    = "Npc"
	Item   = "Item"
)

//go:embed schema.yaml
var schema []byte

// Register loads the sample game schema into r
func Register(r *attr.Registry) error {
	_, err := r.LoadYAML(bytes.NewReader(schema))
	return errors.Wrap(err, "register sample classes")
}

// MustRegister registers the sample classes into a fresh registry
func MustRegister() *attr.Registry {
	r := attr.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
