package yaml

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// Error is a YAML decode or validation error. Token is set for decode errors,
// Path for schema validation errors.
type Error struct {
	Err   error
	Path  *yaml.Path
	Token *token.Token
}

func (e *Error) Error() string {
	switch {
	case e.Token != nil && e.Token.Position != nil:
		return fmt.Sprintf("line %d, column %d: %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
	case e.Path != nil:
		return fmt.Sprintf("at %s: %v", e.Path.String(), e.Err)
	}

	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Locate sets Token from the node at Path in source, so that validation
// errors report a line and column. It does nothing if the path cannot be
// resolved.
func (e *Error) Locate(source []byte) {
	if e.Path == nil || e.Token != nil {
		return
	}

	f, err := parser.ParseBytes(source, 0)
	if err != nil {
		return
	}

	node, err := e.Path.FilterFile(f)
	if err != nil || node == nil {
		return
	}

	e.Token = node.GetToken()
}
