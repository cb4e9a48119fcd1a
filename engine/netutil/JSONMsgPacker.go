package netutil

import (
	"bytes"

	"github.com/goccy/go-json"
)

// JSONMsgPacker packs and unpacks messages in JSON format
type JSONMsgPacker struct {
	// Indent is used for human readable output, e.g. filesystem storage
	Indent string
}

// PackMsg packs message to bytes of JSON format
func (mp JSONMsgPacker) PackMsg(msg interface{}, buf []byte) ([]byte, error) {
	buffer := bytes.NewBuffer(buf)
	jsonEncoder := json.NewEncoder(buffer)
	if mp.Indent != "" {
		jsonEncoder.SetIndent("", mp.Indent)
	}
	err := jsonEncoder.Encode(msg)
	if err != nil {
		return buf, err
	}
	buf = buffer.Bytes()
	return buf[:len(buf)-1], nil // encoder always put '\n' at the end, we trim it
}

// UnpackMsg unpacks bytes of JSON format to message. Numbers are kept as json.Number.
func (mp JSONMsgPacker) UnpackMsg(data []byte, msg interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	return decoder.Decode(msg)
}
