package command

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/google/shlex"
)

// ErrEmptyCommand is returned when a command line contains no words
var ErrEmptyCommand = errors.New("command is empty")

// Command is a tokenised command line for a handler's child process
type Command struct {
	argv []string
}

// Parse tokenises a command line using POSIX shell word rules.
// Quotes and backslash escapes are honoured; an unterminated quote is
// a syntax error, and an empty token list is rejected.
func Parse(s string) (*Command, error) {
	argv, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("bad command syntax: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return &Command{argv: argv}, nil
}

// Program returns the executable name, the first word of the command line
func (c *Command) Program() string {
	return c.argv[0]
}

// Argv returns a copy of the full argument vector
func (c *Command) Argv() []string {
	return append([]string(nil), c.argv...)
}

// Cmd builds a child-process invocation with the overlay merged over
// the parent environment. Overlay keys are applied in sorted order so
// the environment is deterministic.
func (c *Command) Cmd(overlay map[string]string) *exec.Cmd {
	cmd := exec.Command(c.argv[0], c.argv[1:]...)
	cmd.Env = mergeEnv(os.Environ(), overlay)
	return cmd
}

// UnmarshalYAML parses a command line from a YAML scalar
func (c *Command) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

func mergeEnv(parent []string, overlay map[string]string) []string {
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(parent)+len(keys))
	env = append(env, parent...)
	for _, k := range keys {
		env = append(env, k+"="+overlay[k])
	}
	return env
}
