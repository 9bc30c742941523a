package enum

import (
	"fmt"
	"reflect"
	"strings"
)

// registry holds the values of every enum type, keyed by the full type path so
// two packages can declare a Phase type each.
var registry = map[string]any{}

type values[T ~string] struct {
	byName map[string]T
	order  []T
}

func typeKey[T ~string]() string {
	var t T
	rt := reflect.TypeOf(t)
	return rt.PkgPath() + "." + rt.Name()
}

// New registers value as a member of its enum type and returns it. It is meant
// to be called from package level var blocks.
func New[T ~string](value T) T {
	key := typeKey[T]()
	e, ok := registry[key].(*values[T])
	if !ok {
		e = &values[T]{byName: make(map[string]T)}
		registry[key] = e
	}

	name := strings.ToLower(string(value))
	if _, ok := e.byName[name]; !ok {
		e.order = append(e.order, value)
	}
	e.byName[name] = value
	return value
}

// Parse returns the registered value matching s, ignoring case and the
// surrounding spaces.
func Parse[T ~string](s string) (T, error) {
	var zero T
	e, ok := registry[typeKey[T]()].(*values[T])
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	v, ok := e.byName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return zero, fmt.Errorf("not found value %q in enum %T", s, zero)
	}

	return v, nil
}

// Values returns the registered values in registration order.
func Values[T ~string]() []T {
	e, ok := registry[typeKey[T]()].(*values[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.order...)
}
