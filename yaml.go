package xstream

import (
	"bytes"

	"github.com/j2eeguys/xstream/yamlio"
)

// MarshalYAML serializes v as a YAML document.
func (x *XStream) MarshalYAML(v any) ([]byte, error) {
	root, err := x.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := yamlio.Encode(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML parses a YAML document and reconstructs it into out.
func (x *XStream) UnmarshalYAML(data []byte, out any) error {
	root, err := yamlio.Decode(bytes.NewReader(data), "root")
	if err != nil {
		return err
	}
	return x.Unmarshal(root, out)
}
