package tools

import (
	"errors"
	"fmt"
)

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type RegistryBuilder struct {
	tools []Tool
	errs  []error
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// WithTool adds a tool and returns the builder, enabling chaining.
func (b *RegistryBuilder) WithTool(tool Tool) *RegistryBuilder {
	if tool.Definition.Name == "" {
		b.errs = append(b.errs, errors.New("tool name cannot be empty"))
		return b
	}
	if tool.Handler == nil {
		b.errs = append(b.errs, fmt.Errorf("tool %q: handler cannot be nil", tool.Definition.Name))
		return b
	}
	b.tools = append(b.tools, tool)

	return b
}

// WithTools adds several tools in order.
func (b *RegistryBuilder) WithTools(tools ...Tool) *RegistryBuilder {
	for _, t := range tools {
		b.WithTool(t)
	}
	return b
}

// Build compiles every input schema and produces an immutable Registry.
// Duplicate names and schemas that fail to compile are reported together.
func (b *RegistryBuilder) Build() (*Registry, error) {
	errs := append([]error(nil), b.errs...)
	reg := &Registry{tools: make(map[string]*Tool, len(b.tools))}

	for _, t := range b.tools {
		name := t.Definition.Name
		if _, dup := reg.tools[name]; dup {
			errs = append(errs, fmt.Errorf("tool %q registered twice", name))
			continue
		}
		validator, err := compileSchema(t.Definition)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tool := t
		tool.validator = validator
		reg.tools[name] = &tool
		reg.defs = append(reg.defs, t.Definition)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}
