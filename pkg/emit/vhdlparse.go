package emit

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/oisee/shiftaddc/pkg/hir"
)

// ExternalEntity is the result of parsing an external VHDL source file's
// entity declaration (spec §6 External HDL Inclusion), replacing the
// original's fragile comment-stripping/paren-balancing string scanner
// with a real tokenizer over text/scanner.
type ExternalEntity struct {
	Name     string
	Generics []ExternalGeneric
	Ports    []ExternalPort
}

// ExternalGeneric is one generic constant declaration, with its default
// value if the source provides one.
type ExternalGeneric struct {
	Name    string
	Default int
}

// ExternalPort is one port declaration; WidthExpr is the raw
// "<expr> downto 0" bound text for std_logic_vector ports, empty for
// plain std_logic ports.
type ExternalPort struct {
	Name      string
	Dir       hir.PortDirection
	WidthExpr string
}

// ParseEntity tokenizes src (the contents of an external .vhd file) and
// extracts its first entity declaration's name, generics, and ports.
func ParseEntity(src string) (*ExternalEntity, error) {
	var sc scanner.Scanner
	sc.Init(strings.NewReader(src))
	sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	sc.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '

	toks := tokenize(&sc)
	return parseEntityTokens(toks)
}

// tokenize drains sc into a flat token list, stripping VHDL "--" line
// comments and merging the ":=" default-value operator back into one
// token, so the parser below never has to special-case either.
func tokenize(sc *scanner.Scanner) []string {
	var toks []string
	for tok := sc.Scan(); tok != scanner.EOF; tok = sc.Scan() {
		text := sc.TokenText()
		if text == "-" {
			// text/scanner emits '-' as its own rune; detect "--" by
			// peeking the next rune directly off the scanner's reader
			// position is awkward, so instead collapse a run of two
			// consecutive "-" tokens into a comment-to-end-of-line skip.
			if len(toks) > 0 && toks[len(toks)-1] == "-" {
				toks = toks[:len(toks)-1]
				for sc.Peek() != '\n' && sc.Peek() != scanner.EOF {
					sc.Next()
				}
				continue
			}
		}
		if text == "=" && len(toks) > 0 && toks[len(toks)-1] == ":" {
			toks[len(toks)-1] = ":="
			continue
		}
		toks = append(toks, text)
	}
	return toks
}

func parseEntityTokens(toks []string) (*ExternalEntity, error) {
	i := 0
	find := func(word string) bool {
		for i < len(toks) {
			if strings.EqualFold(toks[i], word) {
				return true
			}
			i++
		}
		return false
	}

	if !find("entity") {
		return nil, fmt.Errorf("emit: no entity declaration found")
	}
	i++
	if i >= len(toks) {
		return nil, fmt.Errorf("emit: truncated entity declaration")
	}
	ent := &ExternalEntity{Name: toks[i]}
	i++
	if !(i < len(toks) && strings.EqualFold(toks[i], "is")) {
		return nil, fmt.Errorf("emit: expected 'is' after entity name")
	}
	i++

	for i < len(toks) && !strings.EqualFold(toks[i], "end") {
		switch {
		case strings.EqualFold(toks[i], "generic"):
			clause, next := readParenClause(toks, i+1)
			gs, err := parseGenerics(clause)
			if err != nil {
				return nil, err
			}
			ent.Generics = append(ent.Generics, gs...)
			i = next
		case strings.EqualFold(toks[i], "port"):
			clause, next := readParenClause(toks, i+1)
			ps, err := parsePorts(clause)
			if err != nil {
				return nil, err
			}
			ent.Ports = append(ent.Ports, ps...)
			i = next
		default:
			i++
		}
	}
	return ent, nil
}

// readParenClause returns the flat token slice between the first "("
// found at or after start and its matching ")", plus the index just past
// the closing ")" and its terminating ";".
func readParenClause(toks []string, start int) ([]string, int) {
	i := start
	for i < len(toks) && toks[i] != "(" {
		i++
	}
	depth := 0
	begin := i + 1
	for i < len(toks) {
		if toks[i] == "(" {
			depth++
		} else if toks[i] == ")" {
			depth--
			if depth == 0 {
				break
			}
		}
		i++
	}
	end := i
	i++ // past ")"
	if i < len(toks) && toks[i] == ";" {
		i++
	}
	return toks[begin:end], i
}

// splitTop splits toks on top-level (paren-depth 0) occurrences of sep.
func splitTop(toks []string, sep string) [][]string {
	var groups [][]string
	depth := 0
	cur := []string{}
	for _, t := range toks {
		if t == "(" {
			depth++
		} else if t == ")" {
			depth--
		}
		if t == sep && depth == 0 {
			groups = append(groups, cur)
			cur = []string{}
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	return groups
}

func parseGenerics(toks []string) ([]ExternalGeneric, error) {
	var out []ExternalGeneric
	for _, decl := range splitTop(toks, ";") {
		if len(decl) == 0 {
			continue
		}
		colon := indexOf(decl, ":")
		if colon < 0 {
			continue
		}
		names := splitTop(decl[:colon], ",")
		g := ExternalGeneric{}
		if assign := indexOf(decl, ":="); assign >= 0 && assign+1 < len(decl) {
			v, err := strconv.Atoi(decl[assign+1])
			if err == nil {
				g.Default = v
			}
		}
		for _, n := range names {
			if len(n) == 0 {
				continue
			}
			gg := g
			gg.Name = n[0]
			out = append(out, gg)
		}
	}
	return out, nil
}

func parsePorts(toks []string) ([]ExternalPort, error) {
	var out []ExternalPort
	for _, decl := range splitTop(toks, ";") {
		if len(decl) == 0 {
			continue
		}
		colon := indexOf(decl, ":")
		if colon < 0 {
			continue
		}
		names := splitTop(decl[:colon], ",")
		rest := decl[colon+1:]
		if len(rest) == 0 {
			continue
		}
		var dir hir.PortDirection
		switch strings.ToLower(rest[0]) {
		case "in":
			dir = hir.PortIn
		case "out":
			dir = hir.PortOut
		default:
			dir = hir.PortUndecided
		}
		widthExpr := extractDowntoExpr(rest)
		for _, n := range names {
			if len(n) == 0 {
				continue
			}
			out = append(out, ExternalPort{Name: n[0], Dir: dir, WidthExpr: widthExpr})
		}
	}
	return out, nil
}

// extractDowntoExpr returns the token span between "(" and "downto" in a
// "std_logic_vector(<expr> downto 0)" type clause, joined back to source
// text, or "" for a plain std_logic port.
func extractDowntoExpr(toks []string) string {
	open := indexOf(toks, "(")
	down := indexOf(toks, "downto")
	if open < 0 || down < 0 || down <= open {
		return ""
	}
	return strings.Join(toks[open+1:down], "")
}

func indexOf(toks []string, s string) int {
	for i, t := range toks {
		if t == s {
			return i
		}
	}
	return -1
}

// EvalWidthExpr sandbox-evaluates a width expression over +, -, *, /,
// parentheses, integer literals, and generic-name lookups, replacing the
// original's unrestricted eval() (spec Design Notes: "generic-expression
// evaluation should be sandboxed to arithmetic, not Python's eval").
func EvalWidthExpr(expr string, generics map[string]int) (int, error) {
	toks := strings.Fields(strings.NewReplacer("(", " ( ", ")", " ) ",
		"+", " + ", "-", " - ", "*", " * ", "/", " / ").Replace(expr))
	p := &exprParser{toks: toks, generics: generics}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("emit: unexpected trailing tokens in width expression %q", expr)
	}
	return v, nil
}

type exprParser struct {
	toks     []string
	pos      int
	generics map[string]int
}

func (p *exprParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *exprParser) parseExpr() (int, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.peek() == "+" || p.peek() == "-" {
		op := p.toks[p.pos]
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v, nil
}

func (p *exprParser) parseTerm() (int, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for p.peek() == "*" || p.peek() == "/" {
		op := p.toks[p.pos]
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("emit: division by zero in width expression")
			}
			v /= rhs
		}
	}
	return v, nil
}

func (p *exprParser) parseFactor() (int, error) {
	tok := p.peek()
	if tok == "" {
		return 0, fmt.Errorf("emit: unexpected end of width expression")
	}
	if tok == "(" {
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ")" {
			return 0, fmt.Errorf("emit: unbalanced parens in width expression")
		}
		p.pos++
		return v, nil
	}
	if tok == "-" {
		p.pos++
		v, err := p.parseFactor()
		return -v, err
	}
	p.pos++
	if n, err := strconv.Atoi(tok); err == nil {
		return n, nil
	}
	if v, ok := p.generics[tok]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("emit: unknown identifier %q in width expression", tok)
}
