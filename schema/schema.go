// Package schema describes the input of a remote operation as a static tree.
// Each operation declares a flat parameter table (caller-facing name, aliases,
// dotted path into the SDK input struct, value kind) plus the union fields it
// reaches through. Build validates that table against the SDK input type once,
// so every later stage can trust the tree's shape.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the caller-facing value kind of a parameter.
type Kind int

const (
	String     Kind = iota // scalar string or string enum
	Int                    // integer, any width
	Bool                   // boolean switch
	StringList             // list of strings or string enums
	StringMap              // string to string mapping
	JSON                   // structured value decoded into the field's Go type
	Blob                   // binary payload loaded from a source reference
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case StringList:
		return "list"
	case StringMap:
		return "map"
	case JSON:
		return "json"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param is one entry of an operation's flat parameter table.
type Param struct {
	Name     string   // canonical flat name, e.g. "HorizontalGap_Value"
	Aliases  []string // alternative names accepted by the binder
	Path     string   // dotted path into the input, e.g. "FormToCreate.Style.HorizontalGap.Value"
	Kind     Kind
	Required bool
	Help     string
}

// Names returns the canonical name followed by the aliases.
func (p Param) Names() []string {
	names := make([]string, 0, 1+len(p.Aliases))
	names = append(names, p.Name)
	return append(names, p.Aliases...)
}

func (p Param) segments() []string {
	return strings.Split(p.Path, ".")
}
