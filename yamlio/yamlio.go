// Package yamlio maps the element tree to YAML documents using the
// same conventions as the simple JSON form: a single-key root mapping,
// "@" prefixed keys for attributes and "$" for the value of an element
// that also carries attributes. Mappings are handled in document order
// throughout.
package yamlio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/j2eeguys/xstream/ir"
)

// Encode writes the subtree rooted at n as one YAML document.
func Encode(w io.Writer, n *ir.Node) error {
	doc := yaml.MapSlice{{Key: n.Name, Value: nodeValue(n)}}
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	defer enc.Close()
	return enc.Encode(doc)
}

// Decode reads one YAML document from r into an element tree. rootName
// names the root element when the document top level is not a
// single-key mapping.
func Decode(r io.Reader, rootName string) (*ir.Node, error) {
	var v any
	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if m, ok := v.(yaml.MapSlice); ok && len(m) == 1 {
		if key, ok := m[0].Key.(string); ok && !strings.HasPrefix(key, "@") && key != "$" {
			return valueNode(key, m[0].Value), nil
		}
	}
	return valueNode(rootName, v), nil
}

func nodeValue(n *ir.Node) any {
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		if !n.HasValue {
			return nil
		}
		return typedScalar(n.Value)
	}
	var out yaml.MapSlice
	for _, a := range n.Attrs {
		out = append(out, yaml.MapItem{Key: "@" + a.Name, Value: a.Value})
	}
	if n.HasValue {
		out = append(out, yaml.MapItem{Key: "$", Value: typedScalar(n.Value)})
	}
	if len(n.Children) > 1 && sameName(n.Children) {
		items := make([]any, len(n.Children))
		for i, c := range n.Children {
			items[i] = nodeValue(c)
		}
		if len(out) == 0 {
			return items
		}
		out = append(out, yaml.MapItem{Key: n.Children[0].Name, Value: items})
		return out
	}
	for _, c := range n.Children {
		out = append(out, yaml.MapItem{Key: c.Name, Value: nodeValue(c)})
	}
	return out
}

func sameName(nodes []*ir.Node) bool {
	for _, n := range nodes[1:] {
		if n.Name != nodes[0].Name {
			return false
		}
	}
	return true
}

// typedScalar lets YAML render numbers and booleans natively instead
// of quoting everything.
func typedScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func valueNode(name string, v any) *ir.Node {
	n := ir.New(name)
	switch t := v.(type) {
	case yaml.MapSlice:
		for _, item := range t {
			key := fmt.Sprint(item.Key)
			switch {
			case strings.HasPrefix(key, "@"):
				n.SetAttr(key[1:], scalarString(item.Value))
			case key == "$":
				n.SetValue(scalarString(item.Value))
			default:
				n.Append(valueNode(key, item.Value))
			}
		}
	case []any:
		for _, e := range t {
			n.Append(itemNode(e))
		}
	case nil:
	default:
		n.SetValue(scalarString(t))
	}
	return n
}

// itemNode names an anonymous sequence member by its scalar type, the
// way the JSON side does.
func itemNode(v any) *ir.Node {
	switch t := v.(type) {
	case yaml.MapSlice:
		return valueNode("item", t)
	case []any:
		return valueNode("entry", t)
	case nil:
		return ir.New("null")
	case bool:
		n := ir.New("boolean")
		n.SetValue(scalarString(t))
		return n
	case int64, int, uint64:
		n := ir.New("int")
		n.SetValue(scalarString(t))
		return n
	case float64:
		n := ir.New("double")
		n.SetValue(scalarString(t))
		return n
	default:
		n := ir.New("string")
		n.SetValue(scalarString(t))
		return n
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
