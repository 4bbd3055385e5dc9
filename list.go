package ream

import (
	"iter"
	"slices"
	"strings"
	"sync"
)

// List is an immutable singly-linked list. A nil *List is the empty
// list.
type List struct {
	head Value
	tail *List
	len  int
}

// ListOf returns a list containing the values provided in the same
// order.
func ListOf(vals ...Value) (list *List) {
	for _, v := range slices.Backward(vals) {
		list = list.Push(v)
	}
	return list
}

var listPool sync.Pool

// CollectList creates a new list from the elements of seq in the same
// order that they are yielded.
func CollectList(seq iter.Seq[Value]) *List {
	s, _ := listPool.Get().(*[]Value)
	if s == nil {
		s = new([]Value)
	}
	defer func() {
		clear(*s)
		*s = (*s)[:0]
		listPool.Put(s)
	}()

	*s = slices.AppendSeq(*s, seq)
	return ListOf((*s)...)
}

// Head returns the first element of the list, or nil if the list is
// empty.
func (list *List) Head() Value {
	if list == nil {
		return nil
	}
	return list.head
}

// Push returns a new list with val in front of list. list itself is
// unmodified.
func (list *List) Push(val Value) *List {
	return &List{
		head: val,
		tail: list,
		len:  list.Len() + 1,
	}
}

// Tail returns all but the first element of the list.
func (list *List) Tail() *List {
	if list == nil {
		return nil
	}
	return list.tail
}

// Len returns the length of the list. Each node caches the length, so
// this operation is O(1) despite the linked list nature of the
// implementation.
func (list *List) Len() int {
	if list == nil {
		return 0
	}
	return list.len
}

// All returns an iterator over the values stored in the list.
func (list *List) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for cur := list; cur.Len() > 0; cur = cur.tail {
			if !yield(cur.head) {
				return
			}
		}
	}
}

// Append returns a list of the elements of list followed by the
// elements of other. other is shared with the result.
func (list *List) Append(other *List) *List {
	if list.Len() == 0 {
		return other
	}

	s := slices.Collect(list.All())
	for _, v := range slices.Backward(s) {
		other = other.Push(v)
	}
	return other
}

func (*List) value() {}

func (list *List) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for v := range list.All() {
		if buf.Len() > 1 {
			buf.WriteByte(' ')
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte(')')
	return buf.String()
}
