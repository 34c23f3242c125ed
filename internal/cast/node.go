// Package cast implements the C23 abstract syntax tree (spec.md §4.2 "C
// Parser"), using the same generic tagged-tree representation as aast: a
// NodeType discriminant plus Data and Children fields.
// Declarator algebra (pointer/array/function wrapping) is represented as
// nested DeclaratorPointer/DeclaratorArray/DeclaratorFunction nodes around
// a DeclaratorName leaf, mirroring how a C declaration reads "inside out".
package cast

import (
	"fmt"

	"adeptc/internal/sourcemap"
)

// NodeType tags every C syntax tree node.
type NodeType int

const (
	TranslationUnit NodeType = iota

	FuncDef
	Declaration // one or more InitDeclarators sharing a DeclSpec.
	DeclSpec    // Data: the parser's specifier record (text such as "static const int" plus a typedef flag); Children: none or StructOrUnionSpec/EnumSpec.
	StructOrUnionSpec
	EnumSpec
	StaticAssert

	InitDeclarator // Children: [Declarator] or [Declarator, Initializer].
	DeclaratorName // Data: identifier.
	DeclaratorPointer
	DeclaratorArray // Data: has-size bool; Children: [inner] or [inner, sizeExpr].
	DeclaratorFunction // Children: [inner, ParamList].
	ParamList
	Param // Data: DeclSpec text ("..." for a variadic marker); Children: [DeclSpec] or [DeclSpec, Declarator], none for "...".

	Block
	StmtDecl
	StmtExpr
	StmtReturn
	StmtIf
	StmtWhile
	StmtFor
	StmtBreak
	StmtContinue
	StmtGoto
	StmtLabel
	StmtCase
	StmtDefault
	StmtSwitch

	ExprIntLit
	ExprFloatLit
	ExprCharLit
	ExprStringLit
	ExprIdent
	ExprCall
	ExprMember    // Data: field name; "->" vs "." recorded in Data with a leading '>' marker.
	ExprIndex
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCast     // Children: [TypeName, expr].
	ExprSizeofExpr
	ExprSizeofType
	ExprComma
	ExprTernary

	TypeName // abstract declarator for casts/sizeof; Children: [DeclSpec, AbstractDeclarator?].
)

var names = [...]string{
	"TranslationUnit", "FuncDef", "Declaration", "DeclSpec", "StructOrUnionSpec", "EnumSpec", "StaticAssert",
	"InitDeclarator", "DeclaratorName", "DeclaratorPointer", "DeclaratorArray", "DeclaratorFunction",
	"ParamList", "Param",
	"Block", "StmtDecl", "StmtExpr", "StmtReturn", "StmtIf", "StmtWhile", "StmtFor",
	"StmtBreak", "StmtContinue", "StmtGoto", "StmtLabel", "StmtCase", "StmtDefault", "StmtSwitch",
	"ExprIntLit", "ExprFloatLit", "ExprCharLit", "ExprStringLit", "ExprIdent", "ExprCall", "ExprMember",
	"ExprIndex", "ExprUnary", "ExprBinary", "ExprAssign", "ExprCast", "ExprSizeofExpr", "ExprSizeofType",
	"ExprComma", "ExprTernary", "TypeName",
}

func (t NodeType) String() string {
	if int(t) < 0 || int(t) >= len(names) {
		return fmt.Sprintf("NodeType(%d)", t)
	}
	return names[t]
}

// BinOp mirrors cfg.BinOp.
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

// UnaryOp mirrors cfg.UnaryOp, plus C's prefix ++/--.
type UnaryOp int

const (
	UnaryNegate UnaryOp = iota
	UnaryNot
	UnaryBitComplement
	UnaryAddressOf
	UnaryDereference
	UnaryPreIncr
	UnaryPreDecr
	UnaryPostIncr
	UnaryPostDecr
)

// Node is one C AST node.
type Node struct {
	Type     NodeType
	Source   sourcemap.Source
	Data     any
	Children []*Node
}

func New(typ NodeType, src sourcemap.Source, data any, children ...*Node) *Node {
	return &Node{Type: typ, Source: src, Data: data, Children: children}
}

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

// DeclaratorIdentifier walks a (possibly pointer/array/function-wrapped)
// declarator tree down to its DeclaratorName leaf and returns the name
// being declared (spec.md §4.2 "declarator algebra").
func DeclaratorIdentifier(d *Node) string {
	for d != nil {
		switch d.Type {
		case DeclaratorName:
			name, _ := d.Data.(string)
			return name
		case DeclaratorPointer, DeclaratorArray, DeclaratorFunction:
			if len(d.Children) == 0 {
				return ""
			}
			d = d.Children[0]
		default:
			return ""
		}
	}
	return ""
}
