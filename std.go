package ream

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// std contains the string, conversion, and output functions.
var std = []*Builtin{
	binary("string-append", "(Function String String String)", func(a, b Str) (Value, error) {
		return a + b, nil
	}),
	unary("string-length", "(Function String Integer)", func(s Str) (Value, error) {
		return Int(utf8.RuneCountInString(string(s))), nil
	}),
	unary("string-upcase", "(Function String String)", func(s Str) (Value, error) {
		return Str(strings.ToUpper(string(s))), nil
	}),
	unary("string-downcase", "(Function String String)", func(s Str) (Value, error) {
		return Str(strings.ToLower(string(s))), nil
	}),
	unary("string->list", "(Function String (List Character))", func(s Str) (Value, error) {
		return CollectList(s.chars()), nil
	}),
	unary("list->string", "(Function (List Character) String)", func(list *List) (Value, error) {
		var buf strings.Builder
		for v := range list.All() {
			c, ok := v.(Char)
			if !ok {
				return nil, NewTypeError(v, reflect.TypeFor[Char]())
			}
			buf.WriteRune(rune(c))
		}
		return Str(buf.String()), nil
	}),

	unary("int->string", "(Function Integer String)", func(i Int) (Value, error) {
		return Str(strconv.FormatInt(int64(i), 10)), nil
	}),
	unary("float->string", "(Function Float String)", func(f Float) (Value, error) {
		return Str(f.String()), nil
	}),
	unary("int->float", "(Function Integer Float)", func(i Int) (Value, error) {
		return Float(i), nil
	}),

	{
		Name:  "print",
		Arity: 1,
		Type:  "(Function A A)",
		Func:  stdPrint,
	},
}

func stdPrint(ctx context.Context, args []Value) (Value, error) {
	rt := GetRuntime(ctx)
	if rt == nil {
		return nil, fmt.Errorf("print called outside of a runtime")
	}

	_, err := fmt.Fprintln(rt.out, Display(args[0]))
	if err != nil {
		return nil, err
	}
	return args[0], nil
}

func (s Str) chars() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, c := range string(s) {
			if !yield(Char(c)) {
				return
			}
		}
	}
}
