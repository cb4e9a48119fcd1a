package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/gwparam/paramstore/engine/attr"
	"github.com/gwparam/paramstore/engine/gameobject"
	"github.com/gwparam/paramstore/engine/netutil"
	"github.com/gwparam/paramstore/engine/paramset"
	"github.com/gwparam/paramstore/engine/value"
	"github.com/pkg/errors"
)

var jsonPacker = netutil.JSONMsgPacker{Indent: "  "}

// readDoc parses a JSON object of attribute values keyed by name. Every attribute of the class
// is accepted, not only Persistent ones.
func readDoc(in io.Reader, class *attr.ClassDesc) (*gameobject.GameObjectData, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := jsonPacker.UnpackMsg(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse json")
	}

	obj := gameobject.New(class)
	for name, data := range doc {
		d, err := class.ByName(name)
		if err != nil {
			return nil, err
		}
		v, err := value.FromJSON(d.Kind, data)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %s", name)
		}
		if _, err := obj.Set(d.ID, v); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func encode(in io.Reader, out io.Writer, class *attr.ClassDesc, filter string, hexOutput bool) error {
	obj, err := readDoc(in, class)
	if err != nil {
		return err
	}

	p := netutil.NewPacket()
	defer p.Release()
	switch filter {
	case "all":
		err = obj.Write(p)
	case "client":
		err = obj.WriteToClient(p)
	case "privileged":
		err = obj.WriteToPrivilegedClient(p)
	default:
		err = errors.Errorf("unknown filter: %s", filter)
	}
	if err != nil {
		return err
	}

	if hexOutput {
		_, err = io.WriteString(out, hex.EncodeToString(p.Payload())+"\n")
		return err
	}
	_, err = out.Write(p.Payload())
	return err
}

func decode(in io.Reader, out io.Writer, class *attr.ClassDesc, hexInput bool) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	if hexInput {
		if data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), "")); err != nil {
			return errors.Wrap(err, "parse hex")
		}
	}

	p := netutil.NewPacketWithPayload(data)
	ps, err := paramset.Read(p, class)
	if err != nil {
		return err
	}
	if p.HasUnreadPayload() {
		return errors.Errorf("%d trailing bytes after envelope", len(p.UnreadPayload()))
	}
	return writeDoc(out, ps)
}

// writeDoc renders every entry of ps as JSON keyed by name
func writeDoc(out io.Writer, ps *paramset.ParamSet) error {
	doc := map[string]interface{}{}
	for _, e := range ps.Entries() {
		v, err := value.ToJSON(e.Value)
		if err != nil {
			return err
		}
		doc[e.Desc.Name] = v
	}
	b, err := jsonPacker.PackMsg(doc, nil)
	if err != nil {
		return err
	}
	_, err = out.Write(append(b, '\n'))
	return err
}

func listClasses(out io.Writer, registry *attr.Registry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, class := range registry.Classes() {
		fmt.Fprintf(w, "%s (%d)\n", class.Name, class.ID)
		for _, d := range class.Attributes() {
			def, _ := value.ToJSON(d.Default)
			defText, _ := json.Marshal(def)
			fmt.Fprintf(w, "\t%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Kind, bytes.TrimSpace(defText), d.Flags)
		}
	}
	w.Flush()
}
