package command

import (
	"context"
	"errors"
	"strings"

	"runners-bot/pkg/cmd"
)

// Outcome tells apart the three ways a prefixed message can end.
type Outcome int

const (
	// Unrecognized means no command has that name. Nothing is sent.
	Unrecognized Outcome = iota
	// Executed means the command ran, whether or not it failed.
	Executed
	// Denied means middleware refused the invoker. Nothing is sent.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Executed:
		return "executed"
	case Denied:
		return "denied"
	}
	return "unrecognized"
}

// Parse splits a message into a lower-cased command name and its arguments.
// Arguments are separated by runs of spaces only, so other whitespace inside
// text is kept. ok is false when content lacks the prefix.
func Parse(prefix, content string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.FieldsFunc(strings.TrimSpace(content[len(prefix):]), func(r rune) bool {
		return r == ' '
	})
	if len(fields) == 0 {
		return "", nil, true
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// Dispatch runs the command called name. Denials are folded into the
// outcome; any other error is returned alongside Executed.
func Dispatch(ctx context.Context, reg *cmd.Registry, name string, mc *MessageContext) (Outcome, error) {
	if name == "" {
		return Unrecognized, nil
	}
	c, ok := reg.Lookup(name)
	if !ok {
		return Unrecognized, nil
	}

	err := c.Run(ctx, &cmd.Invocation{Args: mc.Args, Data: mc})
	if errors.Is(err, cmd.ErrDenied) {
		return Denied, nil
	}
	return Executed, err
}
