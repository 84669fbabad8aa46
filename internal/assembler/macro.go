package assembler

import (
	"fmt"

	"github.com/possum2kit/p2/internal/lexer"
)

// tokenItem is one captured token from a macro body or an invocation's
// argument list: enough of the Lexer's payload to replay it later
// without re-tokenizing text (String/Number report whichever of these
// was live when the token was captured).
type tokenItem struct {
	tok lexer.Token
	str string
	num int32
}

// bodyElem is one element of a macro's stored body: either a literal
// token or a reference to the invocation's Nth argument (1-based, as
// written by an ARGUMENT token in the source).
type bodyElem struct {
	isArg    bool
	argIndex int
	tok      tokenItem
}

// Macro is a `name MAC … EMC` definition: its body is captured verbatim
// (including ARGUMENT placeholders) on each pass when the definition is
// parsed (the driver clears the macro table between passes), then
// replayed — with arguments substituted — on every invocation.
type Macro struct {
	Name string
	Body []bodyElem
}

// captureBody reads tokens verbatim starting right after the MAC
// keyword's newline, until a matching EMC, recording each ARGUMENT token
// as a positional reference. It's called once per pass, while defining
// the macro.
func captureBody(src lexer.TokenSource) ([]bodyElem, error) {
	var body []bodyElem
	for {
		tok, err := src.Peek()
		if err != nil {
			return nil, err
		}
		if tok == lexer.EOF {
			return nil, fmt.Errorf("%d: unterminated macro body (missing EMC)", src.Line())
		}
		if tok == lexer.Ident && upperStr(src.String()) == "EMC" {
			src.Eat()
			end, err := src.Peek()
			if err != nil {
				return nil, err
			}
			if end == lexer.Newline {
				src.Eat()
			} else if end != lexer.EOF {
				return nil, fmt.Errorf("%d: unexpected garbage after EMC", src.Line())
			}
			body = append(body, bodyElem{tok: tokenItem{tok: lexer.EOF}})
			return body, nil
		}
		if tok == lexer.Argument {
			body = append(body, bodyElem{isArg: true, argIndex: int(src.Number())})
			src.Eat()
			continue
		}
		body = append(body, bodyElem{tok: tokenItem{tok: tok, str: src.String(), num: src.Number()}})
		src.Eat()
	}
}

// captureArguments reads a comma-separated list of argument token runs
// up to (not including) the terminating newline, at a macro invocation
// site. Each argument is itself a token run so that an argument can be a
// whole sub-expression, not just a single token.
func captureArguments(src lexer.TokenSource) ([][]tokenItem, error) {
	var args [][]tokenItem
	tok, err := src.Peek()
	if err != nil {
		return nil, err
	}
	if tok == lexer.Newline || tok == lexer.EOF {
		return args, nil
	}
	for {
		var arg []tokenItem
		for {
			tok, err := src.Peek()
			if err != nil {
				return nil, err
			}
			if tok == lexer.Newline || tok == lexer.EOF || tok == lexer.Token(',') {
				break
			}
			arg = append(arg, tokenItem{tok: tok, str: src.String(), num: src.Number()})
			src.Eat()
		}
		args = append(args, arg)
		tok, err := src.Peek()
		if err != nil {
			return nil, err
		}
		if tok != lexer.Token(',') {
			break
		}
		src.Eat()
	}
	return args, nil
}

// MacroInvocation replays a Macro's captured body, substituting each
// ARGUMENT placeholder with the corresponding argument's token run, and
// implements lexer.TokenSource so it can be pushed onto the same
// Token-Source stack as an ordinary file Lexer.
type MacroInvocation struct {
	body []bodyElem
	args [][]tokenItem
	line int

	// name is the invoked macro's name, used only to build the
	// LINE:MACRO-NAME:LINE diagnostic prefix for errors raised while
	// replaying this body.
	name string

	bodyPos int
	argRun  []tokenItem
	argPos  int

	override *string
}

func NewMacroInvocation(m *Macro, args [][]tokenItem, line int) *MacroInvocation {
	return &MacroInvocation{body: m.Body, args: args, line: line, name: m.Name}
}

// MacroName reports the invoked macro's name, or "" if src isn't a macro
// replay (an ordinary file Lexer).
func MacroName(src lexer.TokenSource) string {
	if m, ok := src.(*MacroInvocation); ok {
		return m.name
	}
	return ""
}

func (m *MacroInvocation) current() (tokenItem, bool) {
	if m.argRun != nil {
		if m.argPos < len(m.argRun) {
			return m.argRun[m.argPos], true
		}
		m.argRun = nil
	}
	for m.bodyPos < len(m.body) {
		elem := m.body[m.bodyPos]
		if !elem.isArg {
			return elem.tok, true
		}
		run := m.argOf(elem.argIndex)
		if len(run) == 0 {
			m.bodyPos++
			continue
		}
		m.argRun = run
		m.argPos = 0
		return m.argRun[0], true
	}
	return tokenItem{tok: lexer.EOF}, true
}

func (m *MacroInvocation) argOf(index int) []tokenItem {
	if index < 1 || index > len(m.args) {
		return nil
	}
	return m.args[index-1]
}

func (m *MacroInvocation) Peek() (lexer.Token, error) {
	item, _ := m.current()
	return item.tok, nil
}

func (m *MacroInvocation) Eat() {
	m.override = nil
	if m.argRun != nil {
		m.argPos++
		if m.argPos >= len(m.argRun) {
			m.argRun = nil
			m.bodyPos++
		}
		return
	}
	if m.bodyPos < len(m.body) {
		m.bodyPos++
	}
}

func (m *MacroInvocation) String() string {
	if m.override != nil {
		return *m.override
	}
	item, _ := m.current()
	return item.str
}

func (m *MacroInvocation) Number() int32 {
	item, _ := m.current()
	return item.num
}

func (m *MacroInvocation) Line() int { return m.line }

func (m *MacroInvocation) PrependString(s string) {
	cur := m.String()
	v := s + cur
	m.override = &v
}

func (m *MacroInvocation) Rewind() error {
	m.bodyPos = 0
	m.argRun = nil
	m.argPos = 0
	m.override = nil
	return nil
}

func upperStr(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
