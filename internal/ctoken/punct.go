package ctoken

// Punct enumerates C punctuators, recognized longest-match-first (spec.md
// §4.1 "all C23 punctuators (multi-char longest match)").
type Punct int

const (
	PLBracket Punct = iota
	PRBracket
	PLParen
	PRParen
	PLBrace
	PRBrace
	PDot
	PArrow
	PPlusPlus
	PMinusMinus
	PAmp
	PStar
	PPlus
	PMinus
	PTilde
	PBang
	PSlash
	PPercent
	PLShift
	PRShift
	PLt
	PGt
	PLe
	PGe
	PEqEq
	PNotEq
	PCaret
	PPipe
	PAmpAmp
	PPipePipe
	PQuestion
	PColon
	PSemicolon
	PEllipsis
	PAssign
	PStarAssign
	PSlashAssign
	PPercentAssign
	PPlusAssign
	PMinusAssign
	PLShiftAssign
	PRShiftAssign
	PAmpAssign
	PCaretAssign
	PPipeAssign
	PComma
	PHash
	PHashHash
	PColonColon // C23 attribute-adjacent usage, e.g. [[vendor::name]].
	PLBracketLBracket
	PRBracketRBracket
)

// punctsByLength lists multi-character punctuators grouped by length,
// longest first except that "[[" and "]]" lead the list (no longer
// punctuator starts with either), so the first prefix match MatchPunct
// finds is the longest one.
var punctsByLength = [][2]string{
	{"[[", "lbracketlbracket"}, {"]]", "rbracketrbracket"},
	{"<<=", "lshiftassign"}, {">>=", "rshiftassign"}, {"...", "ellipsis"},
	{"<<", "lshift"}, {">>", "rshift"}, {"<=", "le"}, {">=", "ge"},
	{"==", "eqeq"}, {"!=", "noteq"}, {"&&", "ampamp"}, {"||", "pipepipe"},
	{"++", "plusplus"}, {"--", "minusminus"}, {"->", "arrow"},
	{"::", "coloncolon"},
	{"*=", "starassign"}, {"/=", "slashassign"}, {"%=", "percentassign"},
	{"+=", "plusassign"}, {"-=", "minusassign"}, {"&=", "ampassign"},
	{"^=", "caretassign"}, {"|=", "pipeassign"}, {"##", "hashhash"},
}

var singleChar = map[byte]Punct{
	'[': PLBracket, ']': PRBracket, '(': PLParen, ')': PRParen,
	'{': PLBrace, '}': PRBrace, '.': PDot, '&': PAmp, '*': PStar,
	'+': PPlus, '-': PMinus, '~': PTilde, '!': PBang, '/': PSlash,
	'%': PPercent, '<': PLt, '>': PGt, '^': PCaret, '|': PPipe,
	'?': PQuestion, ':': PColon, ';': PSemicolon, '=': PAssign,
	',': PComma, '#': PHash,
}

var multiName = map[string]Punct{
	"lbracketlbracket": PLBracketLBracket, "rbracketrbracket": PRBracketRBracket,
	"lshiftassign": PLShiftAssign, "rshiftassign": PRShiftAssign, "ellipsis": PEllipsis,
	"lshift": PLShift, "rshift": PRShift, "le": PLe, "ge": PGe,
	"eqeq": PEqEq, "noteq": PNotEq, "ampamp": PAmpAmp, "pipepipe": PPipePipe,
	"plusplus": PPlusPlus, "minusminus": PMinusMinus, "arrow": PArrow,
	"coloncolon": PColonColon,
	"starassign": PStarAssign, "slashassign": PSlashAssign, "percentassign": PPercentAssign,
	"plusassign": PPlusAssign, "minusassign": PMinusAssign, "ampassign": PAmpAssign,
	"caretassign": PCaretAssign, "pipeassign": PPipeAssign, "hashhash": PHashHash,
}

// MatchPunct attempts the longest punctuator match at the start of s,
// returning the matched Punct and the number of bytes consumed. ok is false
// if no punctuator starts at s[0].
func MatchPunct(s string) (p Punct, n int, ok bool) {
	for _, cand := range punctsByLength {
		lit := cand[0]
		if len(s) >= len(lit) && s[:len(lit)] == lit {
			return multiName[cand[1]], len(lit), true
		}
	}
	if len(s) >= 1 {
		if p, ok := singleChar[s[0]]; ok {
			return p, 1, true
		}
	}
	return 0, 0, false
}
