// Package customid encodes the correlation ids attached to message
// components, so an interaction can be routed back to the row it belongs to
// without reading the rendered message.
package customid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const separator = ":"

var ErrInvalid = errors.New("invalid custom id")

type ID struct {
	Kind   string
	Action string
	Target int64
}

func New(kind, action string, target int64) ID {
	return ID{Kind: kind, Action: action, Target: target}
}

func (id ID) String() string {
	return fmt.Sprintf("%s%s%s%s%d", id.Kind, separator, id.Action, separator, id.Target)
}

func Parse(s string) (ID, error) {
	parts := strings.Split(s, separator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	target, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	return ID{Kind: parts[0], Action: parts[1], Target: target}, nil
}
