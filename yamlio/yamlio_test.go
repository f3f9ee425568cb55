package yamlio

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/j2eeguys/xstream/ir"
)

var ignoreLinks = cmpopts.IgnoreFields(ir.Node{}, "Parent", "ParentIndex")

func sampleTree() *ir.Node {
	root := ir.New("oss")
	root.SetAttr("license", "BSD")
	vendor := ir.New("vendor")
	vendor.SetValue("Codehaus")
	root.Append(vendor)
	name := ir.New("name")
	name.SetValue("XStream")
	root.Append(name)
	return root
}

func TestEncode(t *testing.T) {
	var sb strings.Builder
	if err := Encode(&sb, sampleTree()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "oss:\n  \"@license\": BSD\n  vendor: Codehaus\n  name: XStream\n"
	if got := sb.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDecode(t *testing.T) {
	doc := "x:\n  aStr: X\n  anInt: 42\n  innerObj:\n    \"@class\": ys\n    $: Y\n"
	n, err := Decode(strings.NewReader(doc), "root")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := ir.New("x")
	aStr := ir.New("aStr")
	aStr.SetValue("X")
	want.Append(aStr)
	anInt := ir.New("anInt")
	anInt.SetValue("42")
	want.Append(anInt)
	inner := ir.New("innerObj")
	inner.SetAttr("class", "ys")
	inner.SetValue("Y")
	want.Append(inner)

	if diff := cmp.Diff(want, n, ignoreLinks); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSequenceItems(t *testing.T) {
	doc := "mixed:\n  - text\n  - 42\n  - true\n  - null\n"
	n, err := Decode(strings.NewReader(doc), "root")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}
	want := []string{"string", "int", "boolean", "null"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("item names (-want +got):\n%s", diff)
	}
}

func TestDecodeNamedSequence(t *testing.T) {
	doc := "person:\n  Name: Joe\n  Tags:\n  - a\n  - b\n"
	n, err := Decode(strings.NewReader(doc), "root")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// A sequence under a named key keeps its wrapper element, items
	// named by scalar type, matching the JSON reader's shape.
	want := ir.New("person")
	name := ir.New("Name")
	name.SetValue("Joe")
	want.Append(name)
	tags := ir.New("Tags")
	for _, v := range []string{"a", "b"} {
		s := ir.New("string")
		s.SetValue(v)
		tags.Append(s)
	}
	want.Append(tags)

	if diff := cmp.Diff(want, n, ignoreLinks); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripSequence(t *testing.T) {
	in := ir.New("person")
	tags := ir.New("Tags")
	for _, v := range []string{"a", "b"} {
		s := ir.New("string")
		s.SetValue(v)
		tags.Append(s)
	}
	in.Append(tags)

	var sb strings.Builder
	if err := Encode(&sb, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(strings.NewReader(sb.String()), "root")
	if err != nil {
		t.Fatalf("decode:\n%s\n%v", sb.String(), err)
	}
	if diff := cmp.Diff(in, out, ignoreLinks); diff != "" {
		t.Errorf("round trip changed tree (-want +got):\n%s", diff)
	}
}

func TestDecodeRootless(t *testing.T) {
	doc := "name: Joe\nage: 33\n"
	n, err := Decode(strings.NewReader(doc), "person")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.Name != "person" || len(n.Children) != 2 {
		t.Fatalf("got %+v", n)
	}
	if n.Children[1].Value != "33" {
		t.Errorf("scalar not normalized: %+v", n.Children[1])
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleTree()
	var sb strings.Builder
	if err := Encode(&sb, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(strings.NewReader(sb.String()), "root")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, out, ignoreLinks); diff != "" {
		t.Errorf("round trip changed tree (-want +got):\n%s", diff)
	}
}
