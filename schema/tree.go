package schema

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// ErrInvalidSchema is returned when a parameter table does not match the
// input type it is declared against.
var ErrInvalidSchema = errors.New("invalid schema")

// NodeKind classifies a node of the request tree.
type NodeKind int

const (
	NodeLeaf   NodeKind = iota // scalar, list, map, JSON or blob field
	NodeStruct                 // nested structure
	NodeUnion                  // interface-typed field holding one member
	NodeMember                 // one member wrapper of a union
)

// Node is one field of the request tree.
type Node struct {
	Kind    NodeKind
	Field   string       // Go field name on the parent; member name for NodeMember
	Type    reflect.Type // field type; struct type (dereferenced) for NodeStruct; wrapper type for NodeMember
	Pointer bool         // NodeStruct only: the parent field is a pointer
	Param   *Param       // NodeLeaf only

	Children []*Node
}

func (n *Node) child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ParamNames returns the canonical names of all leaf parameters under n.
func (n *Node) ParamNames() []string {
	var names []string
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == NodeLeaf {
			names = append(names, n.Param.Name)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return names
}

// Member declares one implementation of a union interface. Proto is a pointer
// to the SDK wrapper struct, e.g. &types.FormStyleConfigMemberValue{}.
type Member struct {
	Name  string
	Proto any
}

// Union declares the members reachable through an interface-typed field.
type Union struct {
	Path    string
	Members []Member
}

// Tree is the validated request schema of one operation.
type Tree struct {
	Root *Node

	params []Param
	index  map[string]int // lower-cased name or alias -> params index
	leaves map[string]*Node
	unions []*Node
}

// Build validates params and unions against input, a pointer to (or value of)
// the SDK input struct, and returns the request tree.
func Build(input any, params []Param, unions ...Union) (*Tree, error) {
	rt := reflect.TypeOf(input)
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: input must be a struct, got %v", ErrInvalidSchema, reflect.TypeOf(input))
	}

	t := &Tree{
		Root:   &Node{Kind: NodeStruct, Type: rt, Pointer: true},
		params: make([]Param, len(params)),
		index:  make(map[string]int, len(params)),
		leaves: make(map[string]*Node, len(params)),
	}
	copy(t.params, params)

	declared := make(map[string]Union, len(unions))
	for _, u := range unions {
		declared[u.Path] = u
	}

	for i := range t.params {
		p := &t.params[i]
		if p.Name == "" || p.Path == "" {
			return nil, fmt.Errorf("%w: parameter %d needs a name and a path", ErrInvalidSchema, i)
		}
		for _, name := range p.Names() {
			key := strings.ToLower(name)
			if _, dup := t.index[key]; dup {
				return nil, fmt.Errorf("%w: parameter name %q declared twice", ErrInvalidSchema, name)
			}
			t.index[key] = i
		}
		leaf, err := t.insert(p, declared)
		if err != nil {
			return nil, err
		}
		t.leaves[p.Name] = leaf
	}
	return t, nil
}

// MustBuild is Build for package-level operation tables; it panics on error.
func MustBuild(input any, params []Param, unions ...Union) *Tree {
	t, err := Build(input, params, unions...)
	if err != nil {
		panic(err)
	}
	return t
}

// Params returns the parameter table in declaration order.
func (t *Tree) Params() []Param {
	out := make([]Param, len(t.params))
	copy(out, t.params)
	return out
}

// Lookup resolves a canonical name or alias, ignoring case.
func (t *Tree) Lookup(name string) (Param, bool) {
	i, ok := t.index[strings.ToLower(name)]
	if !ok {
		return Param{}, false
	}
	return t.params[i], true
}

// Leaf returns the leaf node bound to the canonical parameter name.
func (t *Tree) Leaf(name string) *Node {
	return t.leaves[name]
}

// Unions returns every union node in the tree.
func (t *Tree) Unions() []*Node {
	return t.unions
}

func (t *Tree) insert(p *Param, declared map[string]Union) (*Node, error) {
	segs := p.segments()
	cur := t.Root
	for i := 0; i < len(segs); i++ {
		seg := segs[i]
		last := i == len(segs)-1

		if cur.Kind == NodeUnion {
			member := cur.child(seg)
			if member == nil {
				return nil, fmt.Errorf("%w: %s: %q is not a declared member of union %s", ErrInvalidSchema, p.Name, seg, cur.Field)
			}
			// Members wrap their payload in a Value field.
			value, err := t.memberValue(member, p, last)
			if err != nil {
				return nil, err
			}
			if last {
				return value, nil
			}
			cur = value
			continue
		}

		sf, ok := cur.Type.FieldByName(seg)
		if !ok || !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s: %s has no field %q", ErrInvalidSchema, p.Name, cur.Type, seg)
		}

		if last {
			if existing := cur.child(seg); existing != nil {
				return nil, fmt.Errorf("%w: %s: path %q already bound", ErrInvalidSchema, p.Name, p.Path)
			}
			if err := compatible(p.Kind, sf.Type); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, p.Name, err)
			}
			leaf := &Node{Kind: NodeLeaf, Field: seg, Type: sf.Type, Param: p}
			cur.Children = append(cur.Children, leaf)
			return leaf, nil
		}

		next := cur.child(seg)
		if next != nil {
			if next.Kind == NodeLeaf {
				return nil, fmt.Errorf("%w: %s: %q is already a leaf", ErrInvalidSchema, p.Name, seg)
			}
			cur = next
			continue
		}

		prefix := strings.Join(segs[:i+1], ".")
		switch {
		case sf.Type.Kind() == reflect.Interface:
			u, ok := declared[prefix]
			if !ok {
				return nil, fmt.Errorf("%w: %s: %s is a union but no members are declared", ErrInvalidSchema, p.Name, prefix)
			}
			var err error
			next, err = unionNode(seg, sf.Type, u)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, p.Name, err)
			}
			t.unions = append(t.unions, next)
		case sf.Type.Kind() == reflect.Struct:
			next = &Node{Kind: NodeStruct, Field: seg, Type: sf.Type}
		case sf.Type.Kind() == reflect.Pointer && sf.Type.Elem().Kind() == reflect.Struct:
			next = &Node{Kind: NodeStruct, Field: seg, Type: sf.Type.Elem(), Pointer: true}
		default:
			return nil, fmt.Errorf("%w: %s: %s is not a structure", ErrInvalidSchema, p.Name, prefix)
		}
		cur.Children = append(cur.Children, next)
		cur = next
	}
	return nil, fmt.Errorf("%w: %s: empty path", ErrInvalidSchema, p.Name)
}

// memberValue returns the node for a member's Value field, creating it as a
// leaf when the path ends at the member and as a struct otherwise.
func (t *Tree) memberValue(member *Node, p *Param, leaf bool) (*Node, error) {
	sf, _ := member.Type.FieldByName("Value")
	existing := member.child("Value")
	if leaf {
		if existing != nil {
			return nil, fmt.Errorf("%w: %s: member %s already bound", ErrInvalidSchema, p.Name, member.Field)
		}
		if err := compatible(p.Kind, sf.Type); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, p.Name, err)
		}
		n := &Node{Kind: NodeLeaf, Field: "Value", Type: sf.Type, Param: p}
		member.Children = append(member.Children, n)
		return n, nil
	}
	if existing != nil {
		if existing.Kind == NodeLeaf {
			return nil, fmt.Errorf("%w: %s: member %s is a scalar", ErrInvalidSchema, p.Name, member.Field)
		}
		return existing, nil
	}
	vt, ptr := sf.Type, false
	if vt.Kind() == reflect.Pointer {
		vt, ptr = vt.Elem(), true
	}
	if vt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s: member %s is a scalar", ErrInvalidSchema, p.Name, member.Field)
	}
	n := &Node{Kind: NodeStruct, Field: "Value", Type: vt, Pointer: ptr}
	member.Children = append(member.Children, n)
	return n, nil
}

func unionNode(field string, iface reflect.Type, u Union) (*Node, error) {
	n := &Node{Kind: NodeUnion, Field: field, Type: iface}
	for _, m := range u.Members {
		pt := reflect.TypeOf(m.Proto)
		if pt == nil || pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("union %s: member %s must be a pointer to a struct", u.Path, m.Name)
		}
		if !pt.Implements(iface) {
			return nil, fmt.Errorf("union %s: %s does not implement %s", u.Path, pt, iface)
		}
		if _, ok := pt.Elem().FieldByName("Value"); !ok {
			return nil, fmt.Errorf("union %s: %s has no Value field", u.Path, pt.Elem())
		}
		n.Children = append(n.Children, &Node{Kind: NodeMember, Field: m.Name, Type: pt.Elem()})
	}
	return n, nil
}

var (
	byteSlice  = reflect.TypeOf([]byte(nil))
	readerType = reflect.TypeOf((*io.Reader)(nil)).Elem()
)

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func compatible(k Kind, t reflect.Type) error {
	ok := false
	switch k {
	case String:
		ok = deref(t).Kind() == reflect.String
	case Int:
		switch deref(t).Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			ok = true
		}
	case Bool:
		ok = deref(t).Kind() == reflect.Bool
	case StringList:
		ok = t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String
	case StringMap:
		ok = t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.String
	case JSON:
		ok = t.Kind() != reflect.Interface
	case Blob:
		ok = t == byteSlice || t == readerType
	}
	if !ok {
		return fmt.Errorf("%s parameter cannot populate a field of type %s", k, t)
	}
	return nil
}
