package vmodel

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type base struct {
	ID     string
	hidden int
}

type outer struct {
	base
	Name string
	ID   string // shadows base.ID
}

func TestFieldsFlattenEmbedded(t *testing.T) {
	fields := Fields(reflect.TypeOf(outer{}))
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	// The outer type's own fields win; unexported fields are invisible.
	if diff := cmp.Diff([]string{"Name", "ID"}, names); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestFieldByNameReachesPromoted(t *testing.T) {
	type inner struct{ Depth int }
	type wrap struct {
		inner
		Name string
	}
	f, ok := FieldByName(reflect.TypeOf(wrap{}), "Depth")
	if !ok {
		t.Fatal("promoted field not found")
	}
	v := reflect.ValueOf(wrap{inner: inner{Depth: 7}})
	if got := Value(v, f).Interface(); got != 7 {
		t.Errorf("promoted value %v", got)
	}
	if _, ok := FieldByName(reflect.TypeOf(wrap{}), "Nope"); ok {
		t.Errorf("found a field that does not exist")
	}
}

func TestNewIsAddressable(t *testing.T) {
	v := New(reflect.TypeOf(outer{}))
	if !v.CanSet() {
		t.Fatal("not settable")
	}
	f, _ := FieldByName(v.Type(), "Name")
	v.FieldByIndex(f.Index).SetString("x")
	if v.Interface().(outer).Name != "x" {
		t.Errorf("write lost")
	}
}

func TestIsSequence(t *testing.T) {
	for _, tc := range []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeOf([]int(nil)), true},
		{reflect.TypeOf([2]string{}), true},
		{reflect.TypeOf(map[string]int(nil)), true},
		{reflect.TypeOf(""), false},
		{reflect.TypeOf(outer{}), false},
		{nil, false},
	} {
		if got := IsSequence(tc.typ); got != tc.want {
			t.Errorf("IsSequence(%v) = %v", tc.typ, got)
		}
	}

	type ordered struct{ Items []int }
	RegisterSequenceType(reflect.TypeOf(ordered{}))
	if !IsSequence(reflect.TypeOf(ordered{})) {
		t.Errorf("registered type not treated as sequence")
	}
}

func TestFlushCacheDropsStaleEntries(t *testing.T) {
	typ := reflect.TypeOf(outer{})
	Fields(typ)
	if _, ok := fieldCache.Load(typ); !ok {
		t.Fatal("cache miss after Fields")
	}
	FlushCache()
	if _, ok := fieldCache.Load(typ); ok {
		t.Errorf("cache survived flush")
	}
}
