package execs

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// ErrEmptyCommand is returned when a command is empty.
var ErrEmptyCommand = errors.New("empty command")

// essentialEnv lists the caller variables every child inherits. Capture
// tools need the display and session variables to reach devices.
var essentialEnv = []string{"PATH", "HOME", "USER", "DISPLAY", "WAYLAND_DISPLAY", "XDG_RUNTIME_DIR"}

// CallerRef selects variables from the caller's environment.
type CallerRef struct {
	compiled *regexp.Regexp

	// Pattern is a regex pattern for matching environment variable names.
	Pattern string `json:"pattern,omitempty" jsonschema:"title=Pattern,format=regex"`
	// Name is the specific environment variable name to inherit.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
}

// EnvVar sets one variable, either to a literal value or to the value of a
// caller variable.
type EnvVar struct {
	// ValueFrom takes the value from the caller's environment.
	ValueFrom *CallerRef `json:"valueFrom,omitempty" jsonschema:"title=Value From"`
	// Name is the environment variable name.
	Name string `json:"name" jsonschema:"title=Name"`
	// Value is the environment variable value.
	Value string `json:"value,omitempty" jsonschema:"title=Value"`
}

// Command describes a program and the environment it runs with.
type Command struct {
	baseEnv map[string]string

	// Command is the program to execute.
	Command string `json:"command" jsonschema:"title=Command,pattern=^\\S+$"`
	// Args contains the command line arguments.
	Args []string `json:"args,omitempty" jsonschema:"title=Arguments" yaml:"args,flow,omitempty"`
	// Env contains environment variable definitions.
	Env []EnvVar `json:"env,omitempty" jsonschema:"title=Environment Variables"`
	// EnvFrom passes caller variables through unchanged.
	EnvFrom []CallerRef `json:"envFrom,omitempty" jsonschema:"title=Environment Variables From"`
}

// NewCommand creates a [Command] for program. The base environment usually
// comes from [os.Environ].
func NewCommand(baseEnv []string, program string, args ...string) Command {
	c := Command{
		Command: program,
		Args:    args,
	}
	c.SetBaseEnv(baseEnv)

	return c
}

// SetBaseEnv replaces the caller environment the child's variables are
// taken from.
func (c *Command) SetBaseEnv(baseEnv []string) {
	c.baseEnv = make(map[string]string, len(baseEnv))
	for _, kv := range baseEnv {
		if k, v, ok := strings.Cut(kv, "="); ok {
			c.baseEnv[k] = v
		}
	}
}

// Compile compiles all name patterns. It is safe to call more than once.
func (c *Command) Compile() error {
	for i := range c.EnvFrom {
		ref := &c.EnvFrom[i]
		if ref.compiled != nil || ref.Pattern == "" {
			continue
		}

		re, err := regexp.Compile(ref.Pattern)
		if err != nil {
			return fmt.Errorf("envFrom[%d]: compile pattern %q: %w", i, ref.Pattern, err)
		}

		ref.compiled = re
	}

	return nil
}

// GetEnv returns the child's environment in "KEY=value" form, sorted by key.
// Essential variables come first, then EnvFrom, then Env; later sources win.
func (c *Command) GetEnv() []string {
	env := make(map[string]string)

	for _, k := range essentialEnv {
		if v, ok := c.baseEnv[k]; ok {
			env[k] = v
		}
	}

	for _, ref := range c.EnvFrom {
		if ref.compiled != nil {
			for k, v := range c.baseEnv {
				if ref.compiled.MatchString(k) {
					env[k] = v
				}
			}
		}

		if v, ok := c.baseEnv[ref.Name]; ok && ref.Name != "" {
			env[ref.Name] = v
		}
	}

	for _, ev := range c.Env {
		switch {
		case ev.Name == "":
			continue
		case ev.Value != "":
			env[ev.Name] = ev.Value
		case ev.ValueFrom != nil && ev.ValueFrom.Name != "":
			if v, ok := c.baseEnv[ev.ValueFrom.Name]; ok {
				env[ev.Name] = v
			}
		}
	}

	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}

	return out
}

func (c *Command) String() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}
