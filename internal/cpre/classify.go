package cpre

import (
	"math/big"
	"strconv"
	"strings"

	"adeptc/internal/ctoken"
)

// LexError is returned by Lex on a classification failure distinct from
// the scanning failures already caught by Preprocess (spec.md §4.1
// "lex(pretokens) -> Result<[CToken], LexError>").
type LexError struct {
	Message string
}

func (e *LexError) Error() string { return e.Message }

// Lex classifies a PreToken stream into CTokens: identifier-vs-keyword
// lookup against the C23 table, numeric pp-token parsing into
// Integer(BigInt, Suffix) or Float(f64, Suffix), and passthrough of
// already-decoded char/string encodings (spec.md §4.1 "lex").
func Lex(pre []ctoken.PreToken) ([]ctoken.CToken, error) {
	out := make([]ctoken.CToken, 0, len(pre))
	for _, p := range pre {
		switch p.Kind {
		case ctoken.PTIdentifier:
			if kw, ok := ctoken.LookupKeyword(p.Text); ok {
				out = append(out, ctoken.CToken{Kind: ctoken.CTKeyword, Text: p.Text, Source: p.Source, Keyword: kw})
			} else {
				out = append(out, ctoken.CToken{Kind: ctoken.CTIdentifier, Text: p.Text, Source: p.Source, Ident: p.Text})
			}
		case ctoken.PTNumber:
			tok, err := parseNumber(p)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
		case ctoken.PTCharacterConstant:
			out = append(out, ctoken.CToken{Kind: ctoken.CTCharLiteral, Text: p.Text, Source: p.Source, Encoding: p.Encoding, Chars: p.Chars})
		case ctoken.PTStringLiteral:
			out = append(out, ctoken.CToken{Kind: ctoken.CTStringLiteral, Text: p.Text, Source: p.Source, Encoding: p.Encoding, Chars: p.Chars})
		case ctoken.PTPunctuator:
			punct, _, ok := ctoken.MatchPunct(p.Text)
			if !ok {
				return nil, &LexError{Message: "unrecognized punctuator " + p.Text}
			}
			out = append(out, ctoken.CToken{Kind: ctoken.CTPunctuator, Text: p.Text, Source: p.Source, Punct: punct})
		case ctoken.PTHeaderName, ctoken.PTUniversalCharacterName, ctoken.PTPlaceholder, ctoken.PTOther:
			// Directive/pragma scaffolding: not classified further since
			// macro/directive expansion is out of scope (spec.md §1); the C
			// parser never consumes these kinds directly.
			continue
		}
	}
	out = append(out, ctoken.CToken{Kind: ctoken.CTEOF})
	return out, nil
}

// parseNumber parses a pp-number string into an Integer or Float CToken,
// splitting off the trailing type suffix (u/U, l/L, ll/LL, f/F) and
// stripping digit-separator apostrophes.
//
// The digits/suffix boundary cannot be found by scanning backward for
// suffix letters, because hex digits overlap the suffix alphabet (0xFF's
// trailing "FF" must stay digits, not be mistaken for an "F" float
// suffix). Instead the literal's body is walked forward according to its
// base, consuming exactly the digits/'.'/exponent it owns; whatever is
// left is the suffix.
func parseNumber(p ctoken.PreToken) (ctoken.CToken, error) {
	text := strings.ReplaceAll(p.Text, "'", "")

	isHex := len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')
	isBin := len(text) >= 2 && text[0] == '0' && (text[1] == 'b' || text[1] == 'B')

	i := 0
	if isHex || isBin {
		i = 2
	}
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }
	isHexDigit := func(c byte) bool {
		return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	digitOK := isDigit
	if isHex {
		digitOK = isHexDigit
	} else if isBin {
		digitOK = func(c byte) bool { return c == '0' || c == '1' }
	}

	isFloat := false
	for i < len(text) && digitOK(text[i]) {
		i++
	}
	if i < len(text) && text[i] == '.' {
		isFloat = true
		i++
		for i < len(text) && digitOK(text[i]) {
			i++
		}
	}
	expChars := "eE"
	if isHex {
		expChars = "pP"
	}
	if i < len(text) && strings.IndexByte(expChars, text[i]) >= 0 {
		isFloat = true
		i++
		if i < len(text) && (text[i] == '+' || text[i] == '-') {
			i++
		}
		for i < len(text) && isDigit(text[i]) {
			i++
		}
	}

	digits := text[:i]
	suffixText := text[i:]
	suffix := parseSuffix(suffixText)

	if isFloat {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return ctoken.CToken{}, &LexError{Message: "bad floating literal " + p.Text}
		}
		suffix.Float = true
		if strings.ContainsAny(suffixText, "fF") {
			suffix.ExplicitF32 = true
		}
		return ctoken.CToken{Kind: ctoken.CTFloatLiteral, Text: p.Text, Source: p.Source, Float: f, Suffix: suffix}, nil
	}

	base := 10
	digitsForParse := digits
	switch {
	case isHex:
		base = 16
		digitsForParse = digits[2:]
	case isBin:
		base = 2
		digitsForParse = digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base = 8
		digitsForParse = digits[1:]
	}
	if digitsForParse == "" {
		digitsForParse = "0"
	}
	n := new(big.Int)
	if _, ok := n.SetString(digitsForParse, base); !ok {
		return ctoken.CToken{}, &LexError{Message: "bad integer literal " + p.Text}
	}
	return ctoken.CToken{Kind: ctoken.CTIntegerLiteral, Text: p.Text, Source: p.Source, Int: n, Suffix: suffix}, nil
}

func parseSuffix(s string) ctoken.Suffix {
	var suf ctoken.Suffix
	for _, c := range s {
		switch c {
		case 'u', 'U':
			suf.Unsigned = true
		case 'l', 'L':
			suf.LongCount++
		}
	}
	if suf.LongCount > 2 {
		suf.LongCount = 2
	}
	return suf
}
