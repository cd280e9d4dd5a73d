// Package tools defines the tool catalog: descriptors, the registry,
// and argument validation. Descriptors are created once at startup and
// are read-only for the process lifetime.
package tools

import "context"

// Param types accepted in a descriptor schema.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
)

// Handler executes a tool with validated, normalized arguments.
// It returns a result value that the gateway wraps unchanged in a
// success envelope, or an error the gateway classifies.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Param describes one argument in a tool's schema.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// Descriptor describes a registered tool: its name, argument schema,
// and the handler that executes it.
type Descriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	Handler     Handler `json:"-"`
}
