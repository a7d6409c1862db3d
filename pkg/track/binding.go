package track

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBinding = errors.New("invalid state binding")

// Binding ties each non-empty state to the resource field that stores its
// bucket, e.g. "-:max,/:superficial,x:aggravated".
type Binding struct {
	States []State
	Fields map[State]string
}

// ParseBinding parses a comma separated list of state:field pairs. Order is
// preserved and becomes the cycle order.
func ParseBinding(s string) (Binding, error) {
	b := Binding{Fields: make(map[State]string)}
	if strings.TrimSpace(s) == "" {
		return b, fmt.Errorf("%w: empty", ErrInvalidBinding)
	}

	for _, pair := range strings.Split(s, ",") {
		state, field, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || field == "" {
			return Binding{}, fmt.Errorf("%w: %q", ErrInvalidBinding, pair)
		}
		st := State(state)
		switch st {
		case Full, Half, Crossed:
		default:
			return Binding{}, fmt.Errorf("%w: unknown state %q", ErrInvalidBinding, state)
		}
		if _, dup := b.Fields[st]; dup {
			return Binding{}, fmt.Errorf("%w: duplicate state %q", ErrInvalidBinding, state)
		}
		b.States = append(b.States, st)
		b.Fields[st] = field
	}
	return b, nil
}

// Variant builds a Variant of the given kind cycling through the bound states.
func (b Binding) Variant(kind Kind) Variant {
	return Variant{Kind: kind, States: append([]State(nil), b.States...)}
}

// String renders the binding back to its textual form.
func (b Binding) String() string {
	parts := make([]string, 0, len(b.States))
	for _, s := range b.States {
		parts = append(parts, string(s)+":"+b.Fields[s])
	}
	return strings.Join(parts, ",")
}
