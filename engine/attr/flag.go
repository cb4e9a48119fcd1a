package attr

import (
	"strings"

	"github.com/gwparam/paramstore/engine/common"
	"github.com/pkg/errors"
)

// Flag is the set of static properties attached to an attribute descriptor
type Flag uint16

const (
	// Persistent attributes are stored in the database and in JSON documents
	Persistent Flag = 1 << iota
	// Content attributes originate from static template data
	Content
	// ExcludeFromClient attributes are never sent to any client
	ExcludeFromClient
	// ClientUnknown attributes are left out of ordinary client sync
	ClientUnknown
	// ClientPrivileged attributes are only sent to the owning client
	ClientPrivileged
	// PerInstanceSetting attributes may differ per instance under a shared template
	PerInstanceSetting
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{Persistent, "Persistent"},
	{Content, "Content"},
	{ExcludeFromClient, "ExcludeFromClient"},
	{ClientUnknown, "ClientUnknown"},
	{ClientPrivileged, "ClientPrivileged"},
	{PerInstanceSetting, "PerInstanceSetting"},
}

// Has returns if all flags of o are set in f
func (f Flag) Has(o Flag) bool {
	return f&o == o
}

func (f Flag) String() string {
	if f == 0 {
		return "None"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseFlag parses one flag name, case insensitive
func ParseFlag(s string) (Flag, error) {
	s = strings.TrimSpace(s)
	for _, fn := range flagNames {
		if strings.EqualFold(fn.name, s) {
			return fn.flag, nil
		}
	}
	return 0, errors.Wrapf(common.ErrInvalidData, "invalid attribute flag %q", s)
}

// ParseFlags combines flag names into one Flag
func ParseFlags(defs ...string) (Flag, error) {
	var f Flag
	for _, def := range defs {
		flag, err := ParseFlag(def)
		if err != nil {
			return 0, err
		}
		f |= flag
	}
	return f, nil
}
