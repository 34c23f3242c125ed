package main

import (
	"fmt"

	"adeptc/internal/aast"
	"adeptc/internal/types"
)

// builtins maps the primitive Adept type names this demo driver recognises
// to their resolved types.Type. Struct, alias, and generic type names are
// not recognised; resolveTypeRef reports them as unsupported.
var builtins = map[string]types.Type{
	"void":   {Kind: types.KVoid},
	"bool":   {Kind: types.KBool},
	"int8":   {Kind: types.KInt, IntWidth: types.Int8},
	"int16":  {Kind: types.KInt, IntWidth: types.Int16},
	"int32":  {Kind: types.KInt, IntWidth: types.Int32},
	"int":    {Kind: types.KInt, IntWidth: types.Int32},
	"int64":  {Kind: types.KInt, IntWidth: types.Int64},
	"uint8":  {Kind: types.KInt, IntWidth: types.Int8, IntUnsigned: true},
	"uint16": {Kind: types.KInt, IntWidth: types.Int16, IntUnsigned: true},
	"uint32": {Kind: types.KInt, IntWidth: types.Int32, IntUnsigned: true},
	"uint":   {Kind: types.KInt, IntWidth: types.Int32, IntUnsigned: true},
	"uint64": {Kind: types.KInt, IntWidth: types.Int64, IntUnsigned: true},
	"float":  {Kind: types.KFloat, FloatWidth: types.Float32},
	"double": {Kind: types.KFloat, FloatWidth: types.Float64},
}

// resolveTypeRef turns a parsed aast.TypeRef node into a types.Type. "*"
// data wraps the resolved pointee in a KPointer, mirroring parseTypeRef's
// own pointer-prefix recursion (internal/aparse/parser.go).
func resolveTypeRef(n *aast.Node) (types.Type, error) {
	if n == nil {
		return types.Type{Kind: types.KVoid}, nil
	}
	if n.Type != aast.TypeRef {
		return types.Type{}, fmt.Errorf("expected TypeRef node, got %s", n.Type)
	}
	name, _ := n.Data.(string)
	if name == "*" {
		if len(n.Children) != 1 {
			return types.Type{}, fmt.Errorf("pointer TypeRef missing pointee")
		}
		pointee, err := resolveTypeRef(n.Children[0])
		if err != nil {
			return types.Type{}, err
		}
		return types.Type{Kind: types.KPointer, Pointee: &pointee}, nil
	}
	t, ok := builtins[name]
	if !ok {
		return types.Type{}, fmt.Errorf("unsupported type name %q (only primitive Adept types are supported by this demo driver)", name)
	}
	return t, nil
}
