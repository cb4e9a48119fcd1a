package common

import (
	"github.com/google/uuid"
	"github.com/gwparam/paramstore/engine/gwlog"
)

// OBJECTID_LENGTH is the length of Object IDs in canonical text form
const OBJECTID_LENGTH = 36

// ObjectID identifies a persisted game object
type ObjectID string

// IsNil returns if ObjectID is nil
func (id ObjectID) IsNil() bool {
	return id == ""
}

// GenObjectID generates a new ObjectID
func GenObjectID() ObjectID {
	return ObjectID(uuid.NewString())
}

// MustObjectID assures a string to be ObjectID
func MustObjectID(id string) ObjectID {
	if _, err := uuid.Parse(id); err != nil || len(id) != OBJECTID_LENGTH {
		gwlog.Panicf("%s of len %d is not a valid object ID (len=%d)", id, len(id), OBJECTID_LENGTH)
	}
	return ObjectID(id)
}

// ParseObjectID is the non-panicking form of MustObjectID
func ParseObjectID(id string) (ObjectID, error) {
	if _, err := uuid.Parse(id); err != nil || len(id) != OBJECTID_LENGTH {
		return "", InvalidDataf("not a valid object ID: %q", id)
	}
	return ObjectID(id), nil
}
