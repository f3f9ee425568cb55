package xstream

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/j2eeguys/xstream/converter"
	"github.com/j2eeguys/xstream/hio"
	"github.com/j2eeguys/xstream/ir"
	"github.com/j2eeguys/xstream/jsonr"
	"github.com/j2eeguys/xstream/jsonw"
)

type software struct {
	Vendor string
	Name   string
}

type person struct {
	Name string
	Age  int
	Tags []string
	Meta map[string]string
}

func marshalJSON(t *testing.T, x *XStream, v any, opts ...jsonw.Option) string {
	t.Helper()
	data, err := x.MarshalJSON(v, opts...)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestMarshalJSONShapes(t *testing.T) {
	x := New()
	x.Alias("software", software{})

	for _, tc := range []struct {
		name string
		in   any
		want string
	}{
		{"string", "text", `{"string":"text"}`},
		{"int", 42, `{"int":42}`},
		{"bool", true, `{"boolean":true}`},
		{"nil", nil, `{"null":null}`},
		{"struct", software{Vendor: "Codehaus", Name: "XStream"}, `{"software":{"Vendor":"Codehaus","Name":"XStream"}}`},
		{"slice", []string{"a", "b"}, `{"string-array":["a","b"]}`},
		{"slice with nil", []any{"a", nil}, `{"object-array":["a",null]}`},
		{"map", map[string]int{"one": 1}, `{"map":[["one",1]]}`},
		{"bytes", []byte("ping"), `{"byte-array":"cGluZw=="}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := marshalJSON(t, x, tc.in); got != tc.want {
				t.Errorf("got  %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestRoundTripStruct(t *testing.T) {
	x := New()
	x.Alias("person", person{})

	in := person{
		Name: "Joe",
		Age:  33,
		Tags: []string{"a", "b"},
		Meta: map[string]string{"city": "Hamburg"},
	}
	data, err := x.MarshalJSON(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out person
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestRoundTripTree(t *testing.T) {
	x := New()
	x.Alias("person", person{})
	in := person{Name: "Joe", Age: 33}

	root, err := x.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if root.Name != "person" {
		t.Errorf("root name %q", root.Name)
	}
	var out person
	if err := x.Unmarshal(root, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

type pair struct {
	A *software
	B *software
}

func TestSharedReference(t *testing.T) {
	x := New()
	x.Alias("pair", pair{})
	x.Alias("software", software{})

	shared := &software{Vendor: "Codehaus", Name: "XStream"}
	in := pair{A: shared, B: shared}

	data, err := x.MarshalJSON(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"pair":{"A":{"Vendor":"Codehaus","Name":"XStream"},"B":{"@reference":"../A"}}}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	var out pair
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.A != out.B {
		t.Errorf("shared identity lost: %p != %p", out.A, out.B)
	}
	if out.A == nil || out.A.Name != "XStream" {
		t.Errorf("content lost: %+v", out.A)
	}
}

type bag struct {
	Items []*software
}

func TestSharedReferenceInsideSequence(t *testing.T) {
	x := New()
	x.Alias("bag", bag{})
	x.Alias("software", software{})

	s := &software{Vendor: "Codehaus", Name: "XStream"}
	o := &software{Vendor: "Acme", Name: "Other"}
	in := bag{Items: []*software{s, o, s}}

	data, err := x.MarshalJSON(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out bag
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if len(out.Items) != 3 {
		t.Fatalf("items lost: %s", data)
	}
	if out.Items[0] != out.Items[2] {
		t.Errorf("shared identity lost: %s", data)
	}
	if out.Items[0] == out.Items[1] {
		t.Errorf("distinct items merged: %s", data)
	}
	if out.Items[2].Name != "XStream" {
		t.Errorf("content lost: %+v", out.Items[2])
	}
}

type ring struct {
	Label string
	Next  *ring
}

func TestCyclicGraph(t *testing.T) {
	x := New()
	x.Alias("ring", ring{})

	a := &ring{Label: "a"}
	b := &ring{Label: "b", Next: a}
	a.Next = b

	data, err := x.MarshalJSON(a)
	if err != nil {
		t.Fatalf("marshal must terminate on cycles: %v", err)
	}

	var out *ring
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	if out.Label != "a" || out.Next.Label != "b" {
		t.Fatalf("content lost: %s", data)
	}
	if out.Next.Next != out {
		t.Errorf("cycle not restored")
	}
}

func TestSelfCycle(t *testing.T) {
	x := New()
	x.Alias("ring", ring{})

	a := &ring{Label: "a"}
	a.Next = a

	data, err := x.MarshalJSON(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ring":{"Label":"a","Next":{"@reference":".."}}}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	var out *ring
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Next != out {
		t.Errorf("self cycle not restored")
	}
}

type wrapper struct {
	Inner any
}

func TestInterfaceFieldCarriesClass(t *testing.T) {
	x := New()
	x.Alias("wrapper", wrapper{})
	x.Alias("software", software{})

	in := wrapper{Inner: software{Vendor: "Codehaus", Name: "XStream"}}
	data, err := x.MarshalJSON(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"wrapper":{"Inner":{"@class":"software","Vendor":"Codehaus","Name":"XStream"}}}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	var out wrapper
	if err := x.UnmarshalJSON(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestExplicitModeRoundTrip(t *testing.T) {
	x := New()
	x.Alias("software", software{})

	in := software{Vendor: "Codehaus", Name: "XStream"}
	data, err := x.MarshalJSON(in, jsonw.WithMode(jsonw.ModeExplicit))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"software":[[],[{"Vendor":[[],["Codehaus"]]},{"Name":[[],["XStream"]]}]]}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}

	var out software
	if err := x.UnmarshalJSON(data, &out, jsonr.WithExplicit()); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestIEEE754Boundary(t *testing.T) {
	x := New()
	for _, tc := range []struct {
		in   int64
		want string
	}{
		{9007199254740992, `{"long":9007199254740992}`},
		{9007199254740993, `{"long":"9007199254740993"}`},
	} {
		got := marshalJSON(t, x, tc.in, jsonw.WithMode(jsonw.ModeIEEE754))
		if got != tc.want {
			t.Errorf("%d: got %s, want %s", tc.in, got, tc.want)
		}

		var out int64
		if err := x.UnmarshalJSON([]byte(got), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out != tc.in {
			t.Errorf("precision lost: %d != %d", out, tc.in)
		}
	}
}

func TestUnknownFieldFails(t *testing.T) {
	x := New()
	x.Alias("software", software{})
	err := x.UnmarshalJSON([]byte(`{"software":{"Nope":"x"}}`), &software{})
	var ce *converter.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConversionError", err)
	}
	if ce.Get("field") != "Nope" {
		t.Errorf("error should name the field: %v", ce)
	}
}

func TestInvalidReferenceFails(t *testing.T) {
	x := New()
	x.Alias("pair", pair{})
	x.Alias("software", software{})
	doc := `{"pair":{"B":{"@reference":"../A"}}}`
	var out pair
	err := x.UnmarshalJSON([]byte(doc), &out)
	var re *ReferenceError
	if !errors.As(err, &re) {
		t.Fatalf("got %v, want ReferenceError", err)
	}
	if re.Marker != "../A" {
		t.Errorf("marker %q", re.Marker)
	}
}

type numericRef struct {
	A *software
	N int
}

func TestMarkerOnScalarFieldFails(t *testing.T) {
	x := New()
	x.Alias("numericRef", numericRef{})
	x.Alias("software", software{})

	doc := `{"numericRef":{"A":{"Vendor":"Codehaus","Name":"XStream"},"N":{"@reference":"../A"}}}`
	var out numericRef
	err := x.UnmarshalJSON([]byte(doc), &out)
	var re *ReferenceError
	if !errors.As(err, &re) {
		t.Fatalf("got %v, want ReferenceError", err)
	}
	if re.Marker != "../A" {
		t.Errorf("marker %q", re.Marker)
	}
}

type tolPair struct {
	First  *int
	Second *int
}

// tolPairConverter swallows a failed first child, the way a lenient
// custom converter might, so the element stays in the document flow.
type tolPairConverter struct{}

func (tolPairConverter) CanConvert(t reflect.Type) bool {
	return t == reflect.TypeOf(tolPair{})
}

func (tolPairConverter) Marshal(v reflect.Value, w hio.Writer, ctx converter.MarshalContext) error {
	return nil
}

func (tolPairConverter) Unmarshal(r hio.Reader, ctx converter.UnmarshalContext) (reflect.Value, error) {
	out := reflect.New(reflect.TypeOf(tolPair{})).Elem()
	ptrT := reflect.TypeOf((*int)(nil))

	r.MoveDown()
	if v, err := ctx.ConvertAnother(out, ptrT); err == nil && v.IsValid() {
		out.FieldByName("First").Set(v)
	}
	r.MoveUp()

	r.MoveDown()
	v, err := ctx.ConvertAnother(out, ptrT)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.IsValid() {
		out.FieldByName("Second").Set(v)
	}
	r.MoveUp()
	return out, nil
}

func TestMarkerToFailedElementYieldsNil(t *testing.T) {
	x := New()
	x.RegisterConverter(tolPairConverter{}, converter.PriorityNormal)

	root := ir.New("tolPair")
	first := ir.New("First")
	first.SetValue("not-a-number")
	second := ir.New("Second")
	second.SetAttr(ReferenceAttribute, "../First")
	root.Append(first)
	root.Append(second)

	var out tolPair
	if err := x.Unmarshal(root, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.First != nil || out.Second != nil {
		t.Errorf("marker to a failed element should yield nil: %+v", out)
	}
}

func TestValueErrorPreservesRawText(t *testing.T) {
	x := New()
	var out int
	err := x.UnmarshalJSON([]byte(`{"int":"not-a-number"}`), &out)
	var ve *converter.ValueError
	if !errors.As(err, &ve) {
		t.Fatalf("got %v, want ValueError", err)
	}
	if ve.Raw != "not-a-number" {
		t.Errorf("raw %q", ve.Raw)
	}
}

type softwareAsString struct{}

func (softwareAsString) CanConvert(t reflect.Type) bool {
	return t == reflect.TypeOf(software{})
}

func (softwareAsString) ToString(v reflect.Value) (string, error) {
	s := v.Interface().(software)
	return s.Vendor + "/" + s.Name, nil
}

func (softwareAsString) FromString(s string, t reflect.Type) (reflect.Value, error) {
	vendor, name, _ := strings.Cut(s, "/")
	return reflect.ValueOf(software{Vendor: vendor, Name: name}), nil
}

func TestCustomConverterTakesPriority(t *testing.T) {
	x := New()
	x.Alias("software", software{})
	x.RegisterSingleValueConverter(softwareAsString{}, converter.PriorityNormal)

	got := marshalJSON(t, x, software{Vendor: "Codehaus", Name: "XStream"})
	if want := `{"software":"Codehaus/XStream"}`; got != want {
		t.Errorf("custom converter not used: %s", got)
	}

	var out software
	if err := x.UnmarshalJSON([]byte(got), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Vendor != "Codehaus" || out.Name != "XStream" {
		t.Errorf("got %+v", out)
	}
}
