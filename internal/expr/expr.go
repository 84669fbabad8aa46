// Package expr evaluates the assembler's integer expression grammar with
// the Shunting-Yard algorithm: an explicit operator stack and an explicit
// value stack, each built and drained with ordinary slice push/pop.
package expr

import (
	"fmt"

	"github.com/possum2kit/p2/internal/lexer"
)

// Lookup resolves an identifier (already case-folded by the caller) to
// its symbol-table value.
type Lookup func(name string) (int32, bool)

type assoc int

const (
	leftAssoc assoc = iota
	rightAssoc
)

type operator struct {
	prec   int
	assoc  assoc
	arity  int
	apply1 func(int32) int32
	apply2 func(int32, int32) int32
}

// sentinel marks an open '(' on the operator stack. Its negative
// precedence is the only field that matters; isSentinel checks that
// field rather than struct equality since operator holds func values,
// which Go does not allow comparing with ==.
var sentinel = operator{prec: -1}

func (o operator) isSentinel() bool { return o.prec < 0 }

var unaryOps = map[string]operator{
	"-":   {prec: 0, assoc: rightAssoc, arity: 1, apply1: func(v int32) int32 { return -v }},
	"+":   {prec: 0, assoc: rightAssoc, arity: 1, apply1: func(v int32) int32 { return v }},
	"<":   {prec: 0, assoc: rightAssoc, arity: 1, apply1: func(v int32) int32 { return int32(byte(uint32(v))) }},
	">":   {prec: 0, assoc: rightAssoc, arity: 1, apply1: func(v int32) int32 { return int32(byte(uint32(v) >> 8)) }},
	"NOT": {prec: 3, assoc: rightAssoc, arity: 1, apply1: func(v int32) int32 { return ^v }},
}

var binaryOps = map[string]operator{
	"*":   {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a * b }},
	"/":   {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return truncDiv(a, b) }},
	"MOD": {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return truncMod(a, b) }},
	"ASL": {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return int32(uint32(a) << uint(b)) }},
	"LSR": {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return int32(uint32(a) >> uint(b)) }},
	"ASR": {prec: 1, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a >> uint(b) }},
	"+":   {prec: 2, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a + b }},
	"-":   {prec: 2, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a - b }},
	"XOR": {prec: 2, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a ^ b }},
	"AND": {prec: 4, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a & b }},
	"OR":  {prec: 5, assoc: leftAssoc, arity: 2, apply2: func(a, b int32) int32 { return a | b }},
}

func truncDiv(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	return a / b
}

func truncMod(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	return a % b
}

// evaluator holds the two explicit stacks Shunting-Yard drives plus the
// unresolved flag, which once set stays set for the rest of the
// expression (an unresolved leaf still yields a placeholder value so the
// arithmetic around it can keep producing a pass-1 size estimate).
type evaluator struct {
	src        lexer.TokenSource
	pc         uint16
	lookup     Lookup
	values     []int32
	ops        []operator
	unresolved bool
}

// Eval parses one expression from src. It returns the computed value, a
// resolved flag (false if any leaf was an undefined symbol), and an error
// for malformed expressions. A trailing token the grammar doesn't
// recognize (comma, newline, EOF, or an unmatched ')') ends the
// expression without being consumed, since it may belong to the
// surrounding syntax.
func Eval(src lexer.TokenSource, pc uint16, lookup Lookup) (value int32, resolved bool, err error) {
	e := &evaluator{src: src, pc: pc, lookup: lookup}
	if err := e.run(); err != nil {
		return 0, false, err
	}
	if len(e.values) != 1 {
		return 0, false, e.errf("malformed expression")
	}
	return e.values[0], !e.unresolved, nil
}

func (e *evaluator) errf(format string, args ...any) error {
	return fmt.Errorf("%d: %s", e.src.Line(), fmt.Sprintf(format, args...))
}

func (e *evaluator) pushValue(v int32) { e.values = append(e.values, v) }

func (e *evaluator) popValue() int32 {
	v := e.values[len(e.values)-1]
	e.values = e.values[:len(e.values)-1]
	return v
}

func (e *evaluator) pushOp(op operator) { e.ops = append(e.ops, op) }

func (e *evaluator) topOp() (operator, bool) {
	if len(e.ops) == 0 {
		return operator{}, false
	}
	return e.ops[len(e.ops)-1], true
}

func (e *evaluator) popOp() operator {
	op := e.ops[len(e.ops)-1]
	e.ops = e.ops[:len(e.ops)-1]
	return op
}

func (e *evaluator) apply(op operator) {
	if op.arity == 1 {
		e.pushValue(op.apply1(e.popValue()))
		return
	}
	b := e.popValue()
	a := e.popValue()
	e.pushValue(op.apply2(a, b))
}

// hasOpenParen reports whether any '(' sentinel remains on the operator
// stack — used both to recognize an unmatched ')' and to detect
// unbalanced parentheses at end of expression.
func (e *evaluator) hasOpenParen() bool {
	for _, op := range e.ops {
		if op.isSentinel() {
			return true
		}
	}
	return false
}

func (e *evaluator) run() error {
	expectValue := true
	for {
		tok, err := e.src.Peek()
		if err != nil {
			return err
		}

		if expectValue {
			done, err := e.acceptValue(tok)
			if err != nil {
				return err
			}
			if done {
				expectValue = false
			}
			continue
		}

		stop, wantsValue, err := e.acceptOperator(tok)
		if err != nil {
			return err
		}
		if stop {
			break
		}
		expectValue = wantsValue
	}

	for len(e.ops) > 0 {
		op := e.popOp()
		if op.isSentinel() {
			return e.errf("unbalanced parentheses")
		}
		e.apply(op)
	}
	return nil
}

// acceptValue consumes a value-position token (a leaf, a unary operator,
// or an open paren). done reports whether a value now sits on top of the
// stack (false when a unary operator or '(' was pushed and another value
// token is still expected).
func (e *evaluator) acceptValue(tok lexer.Token) (done bool, err error) {
	switch tok {
	case lexer.Number:
		e.pushValue(e.src.Number())
		e.src.Eat()
		return true, nil

	case lexer.Ident:
		name := e.src.String()
		if op, ok := lookupUnary(name); ok {
			e.src.Eat()
			e.pushOp(op)
			return false, nil
		}
		if v, ok := e.lookup(name); ok {
			e.pushValue(v)
		} else {
			e.unresolved = true
			e.pushValue(1)
		}
		e.src.Eat()
		return true, nil

	case lexer.Token('*'):
		e.pushValue(int32(uint32(e.pc)))
		e.src.Eat()
		return true, nil

	case lexer.Token('('):
		e.src.Eat()
		e.pushOp(sentinel)
		return false, nil

	case lexer.Token('-'), lexer.Token('+'), lexer.Token('<'), lexer.Token('>'):
		op, _ := lookupUnary(string(rune(tok)))
		e.src.Eat()
		e.pushOp(op)
		return false, nil

	default:
		return false, e.errf("expected expression")
	}
}

// acceptOperator consumes an operator-position token. stop reports that
// the expression has ended (the token is left unconsumed); wantsValue
// reports whether the token just consumed leaves a value still expected
// (true after a binary operator, false after a completed ')').
func (e *evaluator) acceptOperator(tok lexer.Token) (stop, wantsValue bool, err error) {
	switch tok {
	case lexer.Newline, lexer.EOF, lexer.Token(','):
		return true, false, nil

	case lexer.Token(')'):
		if !e.hasOpenParen() {
			return true, false, nil
		}
		e.src.Eat()
		for {
			op := e.popOp()
			if op.isSentinel() {
				break
			}
			e.apply(op)
		}
		return false, false, nil

	case lexer.Ident:
		op, ok := lookupBinary(e.src.String())
		if !ok {
			return false, false, e.errf("two consecutive values where an operator is expected")
		}
		e.pushBinary(op)
		return false, true, nil

	case lexer.Token('*'), lexer.Token('/'), lexer.Token('+'), lexer.Token('-'):
		op, _ := lookupBinary(string(rune(tok)))
		e.pushBinary(op)
		return false, true, nil

	default:
		return false, false, e.errf("two consecutive values where an operator is expected")
	}
}

// pushBinary drains operators that bind at least as tightly as op — lower
// precedence numbers bind tighter per the table, so an existing operator
// is applied first whenever it numerically precedes op, or ties and op is
// left-associative — before pushing op itself.
func (e *evaluator) pushBinary(op operator) {
	for {
		top, ok := e.topOp()
		if !ok || top.isSentinel() {
			break
		}
		if top.prec > op.prec || (top.prec == op.prec && op.assoc == rightAssoc) {
			break
		}
		e.apply(e.popOp())
	}
	e.src.Eat()
	e.pushOp(op)
}

func lookupUnary(name string) (operator, bool) {
	op, ok := unaryOps[upper(name)]
	return op, ok
}

func lookupBinary(name string) (operator, bool) {
	op, ok := binaryOps[upper(name)]
	return op, ok
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
