package ream_test

import (
	"slices"
	"testing"

	"deedles.dev/ream"
)

func values(vals ...int) []ream.Value {
	s := make([]ream.Value, 0, len(vals))
	for _, v := range vals {
		s = append(s, ream.Int(v))
	}
	return s
}

func TestList(t *testing.T) {
	var list *ream.List
	list = list.Push(ream.Int(5))
	list = list.Push(ream.Int(2))
	list = list.Push(ream.Int(3))
	if list.Len() != 3 {
		t.Fatal(list.Len())
	}
	if s := slices.Collect(list.All()); !slices.Equal(s, values(3, 2, 5)) {
		t.Fatal(s)
	}
	if list.String() != "(3 2 5)" {
		t.Fatal(list)
	}
}

func TestCollectList(t *testing.T) {
	list := ream.CollectList(slices.Values(values(3, 2, 5)))
	if list.Len() != 3 {
		t.Fatal(list.Len())
	}
	if s := slices.Collect(list.All()); !slices.Equal(s, values(3, 2, 5)) {
		t.Fatal(s)
	}
}

func TestListAppend(t *testing.T) {
	a := ream.ListOf(values(1, 2)...)
	b := ream.ListOf(values(3)...)
	c := a.Append(b)
	if s := slices.Collect(c.All()); !slices.Equal(s, values(1, 2, 3)) {
		t.Fatal(s)
	}
	if a.Len() != 2 {
		t.Fatal(a)
	}
	if c.Tail().Tail() != b {
		t.Fatal("tail not shared")
	}

	var empty *ream.List
	if empty.Append(b) != b {
		t.Fatal("empty append")
	}
	if empty.Head() != nil || empty.Tail() != nil {
		t.Fatal("empty list")
	}
}
