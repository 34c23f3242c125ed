package main

import (
	"fmt"

	"adeptc/internal/aast"
	"adeptc/internal/resolve"
	"adeptc/internal/types"
)

// funcDecl is one top-level function's parsed node plus its signature,
// extracted once up front so every function body can be resolved against
// a complete call table without needing a second parse pass.
type funcDecl struct {
	node   *aast.Node
	name   string
	params []resolve.Param
	ret    types.Type
}

// returnTypeRef reports fn's declared return TypeRef node, or nil for an
// implicit void return (parseFuncDecl only appends a TypeRef child when
// the source has a "-> T" clause; see internal/aparse/parser.go).
func returnTypeRef(fn *aast.Node) *aast.Node {
	if len(fn.Children) == 3 {
		return fn.Children[1]
	}
	return nil
}

// extractSignature reads a FuncDecl's parameter list and return type
// without walking its body.
func extractSignature(fn *aast.Node) (funcDecl, error) {
	name, _ := fn.Data.(string)
	fd := funcDecl{node: fn, name: name}

	paramList := fn.Children[0]
	for _, pn := range paramList.Children {
		pname, _ := pn.Data.(string)
		t, err := resolveTypeRef(pn.Children[0])
		if err != nil {
			return fd, fmt.Errorf("func %s: parameter %s: %w", name, pname, err)
		}
		fd.params = append(fd.params, resolve.Param{Name: pname, Type: t})
	}

	ret, err := resolveTypeRef(returnTypeRef(fn))
	if err != nil {
		return fd, fmt.Errorf("func %s: return type: %w", name, err)
	}
	fd.ret = ret
	return fd, nil
}

// funcHead converts fd to the types.FuncHead call-resolution shape
// internal/resolve.Resolve consumes for every function it doesn't itself
// own the body of.
func (fd funcDecl) funcHead() *types.FuncHead {
	fields := make([]types.Field, len(fd.params))
	for i, p := range fd.params {
		fields[i] = types.Field{Name: p.Name, Type: p.Type}
	}
	return &types.FuncHead{Name: fd.name, Params: fields, Return: fd.ret}
}

// collectFuncDecls extracts every FuncDecl under prog, in source order.
func collectFuncDecls(prog *aast.Node) ([]funcDecl, error) {
	var decls []funcDecl
	for _, child := range prog.Children {
		if child.Type != aast.FuncDecl {
			continue
		}
		fd, err := extractSignature(child)
		if err != nil {
			return nil, err
		}
		decls = append(decls, fd)
	}
	return decls, nil
}
