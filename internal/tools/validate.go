package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidationError aggregates every schema violation found in a request's
// arguments, so the caller gets the complete picture in one round trip.
type ValidationError struct {
	Tool       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Violations, "; "))
}

// Validate checks args against the descriptor's schema and returns a
// normalized copy: defaults applied, JSON numbers coerced to int where the
// schema asks for one. Arguments not named in the schema are rejected.
// All violations are collected before returning.
func Validate(d *Descriptor, args map[string]any) (map[string]any, error) {
	var violations []string
	normalized := make(map[string]any, len(d.Params))

	known := make(map[string]*Param, len(d.Params))
	for i := range d.Params {
		known[d.Params[i].Name] = &d.Params[i]
	}

	// Unknown arguments fail closed rather than passing through to upstream.
	var unknown []string
	for name := range args {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		violations = append(violations, fmt.Sprintf("unknown argument %q", name))
	}

	for _, p := range d.Params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				violations = append(violations, fmt.Sprintf("missing required argument %q", p.Name))
				continue
			}
			if p.Default != nil {
				normalized[p.Name] = p.Default
			}
			continue
		}

		val, err := coerce(&p, raw)
		if err != nil {
			violations = append(violations, err.Error())
			continue
		}
		normalized[p.Name] = val
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Tool: d.Name, Violations: violations}
	}
	return normalized, nil
}

// coerce converts a decoded JSON value to the param's declared type.
// JSON numbers arrive as float64; integral values are accepted for int params.
func coerce(p *Param, raw any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a string (got %T)", p.Name, raw)
		}
		return s, nil

	case TypeInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("argument %q must be an integer (got %v)", p.Name, v)
			}
			return int(v), nil
		default:
			return nil, fmt.Errorf("argument %q must be an integer (got %T)", p.Name, raw)
		}

	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a boolean (got %T)", p.Name, raw)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("argument %q has unsupported schema type %q", p.Name, p.Type)
	}
}
