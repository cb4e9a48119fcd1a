package value

import (
	"bytes"
	"reflect"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gwparam/paramstore/engine/common"
	"github.com/pkg/errors"
)

type cellState uint8

const (
	cellBuffer cellState = iota
	cellDocument
	cellTyped
)

// jsonCell holds a JSON payload in exactly one of three forms: raw bytes, a parsed document, or a
// typed Go struct. Conversions replace the held form under the lock. Typed forms are remembered per
// type, so each consumer type pays for its conversion once.
type jsonCell struct {
	mu    sync.Mutex
	state cellState
	raw   []byte
	doc   interface{}
	typed interface{}                  // held typed form, always a pointer
	forms map[reflect.Type]interface{} // every typed form produced so far
}

// JSON is a free-form JSON value. Copies share the same cell.
type JSON struct {
	cell *jsonCell
}

// NewJSONBytes wraps raw JSON text. The text is parsed lazily.
func NewJSONBytes(b []byte) JSON {
	return JSON{cell: &jsonCell{state: cellBuffer, raw: b}}
}

// NewJSON builds a JSON value from any marshalable Go value
func NewJSON(v interface{}) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSON{}, errors.Wrap(err, "marshal json value")
	}
	return NewJSONBytes(b), nil
}

// MustJSON is NewJSON for literals known to be valid
func MustJSON(v interface{}) JSON {
	j, err := NewJSON(v)
	if err != nil {
		panic(err)
	}
	return j
}

func parseDocument(b []byte) (interface{}, error) {
	var doc interface{}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &common.InvalidDataError{Reason: "json payload: " + err.Error()}
	}
	return doc, nil
}

// Bytes returns the JSON text of the value
func (j JSON) Bytes() ([]byte, error) {
	if j.cell == nil {
		return []byte("null"), nil
	}
	c := j.cell
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case cellBuffer:
		if len(c.raw) == 0 {
			return []byte("null"), nil
		}
		return c.raw, nil
	case cellDocument:
		return json.Marshal(c.doc)
	default:
		return json.Marshal(c.typed)
	}
}

// Document returns the parsed form (maps, slices, float64, string, bool, nil)
func (j JSON) Document() (interface{}, error) {
	if j.cell == nil {
		return nil, nil
	}
	c := j.cell
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case cellDocument:
		return c.doc, nil
	case cellTyped:
		b, err := json.Marshal(c.typed)
		if err != nil {
			return nil, err
		}
		return parseDocument(b)
	}

	doc, err := parseDocument(c.raw)
	if err != nil {
		return nil, err
	}
	c.state, c.doc, c.raw = cellDocument, doc, nil
	return doc, nil
}

// DecodeJSON converts the payload to *T. The typed form replaces the held form and is remembered, so
// every call with the same T returns the same pointer without decoding again, even when other
// types were decoded in between. The result is shared: treat it as read only.
func DecodeJSON[T any](j JSON) (*T, error) {
	if j.cell == nil {
		return new(T), nil
	}
	c := j.cell
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil))
	if t, ok := c.forms[typ]; ok {
		c.state, c.typed, c.doc, c.raw = cellTyped, t, nil, nil
		return t.(*T), nil
	}

	var b []byte
	var err error
	switch c.state {
	case cellBuffer:
		b = c.raw
	case cellDocument:
		b, err = json.Marshal(c.doc)
	default:
		b, err = json.Marshal(c.typed)
	}
	if err != nil {
		return nil, err
	}

	t := new(T)
	if len(b) > 0 {
		if err := json.Unmarshal(b, t); err != nil {
			return nil, errors.WithStack(&common.TypeMismatchError{Expected: typ.String(), Actual: "json payload: " + err.Error()})
		}
	}
	if c.forms == nil {
		c.forms = map[reflect.Type]interface{}{}
	}
	c.forms[typ] = t
	c.state, c.typed, c.doc, c.raw = cellTyped, t, nil, nil
	return t, nil
}

// IsNull reports an absent or null payload
func (j JSON) IsNull() bool {
	doc, err := j.Document()
	return err == nil && doc == nil
}

// Equal compares the parsed documents of two JSON values
func (j JSON) Equal(other JSON) bool {
	if j.cell == other.cell {
		return true
	}
	a, errA := j.Document()
	b, errB := other.Document()
	if errA != nil || errB != nil {
		ba, _ := j.Bytes()
		bb, _ := other.Bytes()
		return bytes.Equal(ba, bb)
	}
	return reflect.DeepEqual(a, b)
}
