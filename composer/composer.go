// Package composer populates an SDK request struct from a ParameterSet by
// folding the request schema bottom-up. A nested structure or union is only
// assigned to its parent when at least one leaf beneath it was populated, so
// untouched sub-structures stay nil instead of being sent as empty objects.
package composer

import (
	"fmt"
	"reflect"

	"github.com/gurre/awscmdlet/binder"
	"github.com/gurre/awscmdlet/schema"
)

// Compose fills dst, a pointer to the tree's input struct, from set. It
// reports whether any field was populated.
//
// Leaves are present when the set holds a non-nil typed value for them. Lists
// and maps count as present even when empty.
func Compose(tree *schema.Tree, set binder.ParameterSet, dst any) (bool, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != tree.Root.Type {
		return false, fmt.Errorf("compose: destination must be a non-nil *%s, got %T", tree.Root.Type, dst)
	}
	return fold(tree.Root, set, v.Elem()), nil
}

// fold populates the struct value sv from the children of n and reports
// whether anything beneath n was set.
func fold(n *schema.Node, set binder.ParameterSet, sv reflect.Value) bool {
	dirty := false
	for _, c := range n.Children {
		fv := sv.FieldByName(c.Field)
		switch c.Kind {
		case schema.NodeLeaf:
			if assignLeaf(c, set, fv) {
				dirty = true
			}

		case schema.NodeStruct:
			tmp := reflect.New(c.Type)
			if !fold(c, set, tmp.Elem()) {
				// Collapse: leave the field absent.
				continue
			}
			if c.Pointer {
				fv.Set(tmp)
			} else {
				fv.Set(tmp.Elem())
			}
			dirty = true

		case schema.NodeUnion:
			for _, member := range c.Children {
				wrapper := reflect.New(member.Type)
				if !fold(member, set, wrapper.Elem()) {
					continue
				}
				// The binder rejects sets with two populated members.
				fv.Set(wrapper)
				dirty = true
				break
			}
		}
	}
	return dirty
}

func assignLeaf(n *schema.Node, set binder.ParameterSet, fv reflect.Value) bool {
	v, ok := set.Get(n.Param.Name)
	if !ok || v.Typed == nil {
		return false
	}
	tv := reflect.ValueOf(v.Typed)
	if !tv.Type().AssignableTo(fv.Type()) {
		return false
	}
	fv.Set(tv)
	return true
}
