// Package aast implements the Adept abstract syntax tree (spec.md §4.4
// "Adept Parser"). Nodes follow a generic tagged-tree representation
// (NodeType + Data + Children) rather than one Go type per production, so
// that a single CFG flattener can walk the whole tree by switching on
// NodeType.
package aast

import (
	"fmt"

	"adeptc/internal/sourcemap"
)

// NodeType tags every Adept syntax tree node.
type NodeType int

const (
	Program NodeType = iota
	FileIdentifierLocal
	FileIdentifierRemote

	FuncDecl
	StructDecl
	AliasDecl
	GlobalDecl
	TraitDecl
	ImplDecl
	HelperExprDecl

	ParamList
	Param
	FieldList
	Field
	TypeRef // Data: string name; Children: 0 or 1 (pointee for pointer types, elem for array).

	Block
	StmtLet
	StmtAssign
	StmtReturn
	StmtIf
	StmtWhile
	StmtBreak
	StmtContinue
	StmtGoto
	StmtLabel
	StmtExpr

	ExprBoolLit
	ExprIntLit
	ExprFloatLit
	ExprCharLit
	ExprStringLit
	ExprNullLit
	ExprName
	ExprCall
	ExprMember
	ExprIndex
	ExprUnary
	ExprBinary // Data: BinOp; Children: [lhs, rhs]. ConformBehavior set for && and ||.
	ExprAs
	ExprIs
	ExprSizeofExpr
	ExprSizeofType
	ExprStructLit
)

var names = [...]string{
	"Program", "FileIdentifierLocal", "FileIdentifierRemote",
	"FuncDecl", "StructDecl", "AliasDecl", "GlobalDecl", "TraitDecl", "ImplDecl", "HelperExprDecl",
	"ParamList", "Param", "FieldList", "Field", "TypeRef",
	"Block", "StmtLet", "StmtAssign", "StmtReturn", "StmtIf", "StmtWhile",
	"StmtBreak", "StmtContinue", "StmtGoto", "StmtLabel", "StmtExpr",
	"ExprBoolLit", "ExprIntLit", "ExprFloatLit", "ExprCharLit", "ExprStringLit", "ExprNullLit",
	"ExprName", "ExprCall", "ExprMember", "ExprIndex", "ExprUnary", "ExprBinary",
	"ExprAs", "ExprIs", "ExprSizeofExpr", "ExprSizeofType", "ExprStructLit",
}

func (t NodeType) String() string {
	if int(t) < 0 || int(t) >= len(names) {
		return fmt.Sprintf("NodeType(%d)", t)
	}
	return names[t]
}

// BinOp mirrors cfg.BinOp for the operator carried by an ExprBinary node,
// kept as its own type so aast has no import-time dependency on cfg.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLShift
	OpRShift
	OpLogicalAnd
	OpLogicalOr
)

// UnaryOp mirrors cfg.UnaryOp.
type UnaryOp int

const (
	UnaryNegate UnaryOp = iota
	UnaryNot
	UnaryBitComplement
	UnaryAddressOf
	UnaryDereference
)

// Node is one Adept AST node.
type Node struct {
	Type     NodeType
	Source   sourcemap.Source
	Data     any // string name, BinOp, UnaryOp, literal value, etc. -- see NodeType doc.
	Children []*Node
}

// New builds a Node with the given children, a small convenience
// constructor over the struct literal.
func New(typ NodeType, src sourcemap.Source, data any, children ...*Node) *Node {
	return &Node{Type: typ, Source: src, Data: data, Children: children}
}

// Print recursively dumps the tree, mirroring ir.Node.Print for debugging
// and golden-file tests.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*c---> NIL\n", depth<<1, ' ')
		return
	}
	if n.Data == nil {
		fmt.Printf("%*c%s\n", depth<<1, ' ', n.Type)
	} else {
		fmt.Printf("%*c%s [%v]\n", depth<<1, ' ', n.Type, n.Data)
	}
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}
