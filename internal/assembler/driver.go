// Package assembler implements the two-pass driver that turns a token
// stream into a machine-code image: label/EQU/macro bookkeeping, the
// closed pseudo-op set, and dispatch into the operand Encoder for every
// recognised mnemonic.
package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/possum2kit/p2/internal/expr"
	"github.com/possum2kit/p2/internal/lexer"
	"github.com/charmbracelet/log"
)

// segMode selects which of the driver's two PC/end pairs is active.
// BSS mode lays out uninitialized storage: PC still advances, nothing
// is ever written to the image.
type segMode int

const (
	modeText segMode = iota
	modeBSS
)

// pcState is one program-counter register together with the one-shot
// "past the end" bit: a single advance past 0xFFFF is legal (lets a
// program legitimately end at exactly 0xFFFF) but any advance after
// that is a hard "pc overflow" error.
type pcState struct {
	pc  uint32
	end bool
}

func (p *pcState) current() uint16 { return uint16(p.pc) }

func (p *pcState) advance(n int, errf func(string, ...any) error) error {
	if p.end {
		return errf("pc overflow")
	}
	p.pc += uint32(n)
	if p.pc > 0x10000 {
		return errf("pc overflow")
	}
	if p.pc == 0x10000 {
		p.end = true
	}
	return nil
}

// ifFrame is one level of IF/ELS/FIN nesting. active reports whether
// statements at this level currently emit; forced marks a frame whose
// own condition was never evaluated because an enclosing frame was
// already suppressing output (its active is always false).
type ifFrame struct {
	forced   bool
	active   bool
	taken    bool
	seenElse bool
}

// OpenFile resolves an INF pseudo-op's path to a readable, seekable
// source — left to the caller (the CLI layer) so this package never
// touches the filesystem directly.
type OpenFile func(path string) (io.ReadSeeker, error)

// Driver runs the two-pass assembly described by the main-loop steps:
// label/macro/pseudo-op/opcode dispatch over a stack of Token Sources,
// with a persistent symbol table and a fresh macro table each pass.
type Driver struct {
	sources []lexer.TokenSource
	root    lexer.TokenSource

	sym    *SymbolTable
	macros map[string]*Macro

	text, bss pcState
	mode      segMode
	outerLabel string

	pass Pass
	dec  *Decisions

	image   *Image
	openInf OpenFile
	logger  *log.Logger

	ifStack []ifFrame
}

// New returns a Driver ready to assemble. logger may be nil (MSG then
// becomes a no-op on pass two); openInf may be nil if the source never
// uses INF.
func New(openInf OpenFile, logger *log.Logger) *Driver {
	return &Driver{
		sym:     NewSymbolTable(),
		macros:  make(map[string]*Macro),
		dec:     &Decisions{},
		image:   NewImage(),
		openInf: openInf,
		logger:  logger,
	}
}

// Symbols returns the symbol table accumulated by Assemble, for writing
// the `-s` symbol file.
func (d *Driver) Symbols() *SymbolTable { return d.sym }

// Assemble runs pass one, rewinds, clears per-pass state, then runs pass
// two, returning the assembled image.
func (d *Driver) Assemble(root io.ReadSeeker) (*Image, error) {
	d.root = lexer.New(lexer.NewReader(root))
	d.sources = []lexer.TokenSource{d.root}
	d.pass = Pass1
	if err := d.runPass(); err != nil {
		return nil, err
	}

	if err := d.root.Rewind(); err != nil {
		return nil, fmt.Errorf("pass 2: %w", err)
	}
	d.sources = []lexer.TokenSource{d.root}
	d.dec.Reset()
	d.text = pcState{}
	d.bss = pcState{}
	d.mode = modeText
	d.outerLabel = ""
	d.macros = make(map[string]*Macro)
	d.ifStack = nil
	d.pass = Pass2

	if err := d.runPass(); err != nil {
		return nil, err
	}
	return d.image, nil
}

func (d *Driver) runPass() error {
	for {
		tok, err := d.peek()
		if err != nil {
			return err
		}
		if tok == lexer.EOF {
			if len(d.sources) == 1 && len(d.ifStack) != 0 {
				return d.errf("unbalanced IF (missing FIN)")
			}
			d.sources = d.sources[:len(d.sources)-1]
			if len(d.sources) == 0 {
				return nil
			}
			continue
		}
		if tok == lexer.Newline {
			d.eat()
			continue
		}
		if err := d.statement(tok); err != nil {
			return err
		}
	}
}

func (d *Driver) topSource() lexer.TokenSource { return d.sources[len(d.sources)-1] }
func (d *Driver) peek() (lexer.Token, error)   { return d.topSource().Peek() }
func (d *Driver) eat()                         { d.topSource().Eat() }
func (d *Driver) str() string                  { return d.topSource().String() }

func (d *Driver) errf(format string, args ...any) error {
	return diagErr(d.topSource(), fmt.Sprintf(format, args...))
}

func (d *Driver) evalExpr() (int32, bool, error) {
	return expr.Eval(d.topSource(), d.currentPC(), d.sym.Lookup)
}

func (d *Driver) activePC() *pcState {
	if d.mode == modeBSS {
		return &d.bss
	}
	return &d.text
}

func (d *Driver) currentPC() uint16 { return d.activePC().current() }

func (d *Driver) setPC(v uint16) {
	p := d.activePC()
	p.pc = uint32(v)
	p.end = false
}

// skipBytes advances the active PC by n without writing to the image —
// used for BSS-mode PAD/ADJ and as the final size-accounting step after
// the Encoder has already written an opcode's bytes itself.
func (d *Driver) skipBytes(n int) error {
	return d.activePC().advance(n, d.errf)
}

// writeByte writes one byte at the current PC (pass two, text mode
// only) and advances by one — used by BYT/WRD and by PAD/ADJ's
// NOP-filling in text mode.
func (d *Driver) writeByte(b byte) error {
	if d.pass == Pass2 && d.mode == modeText {
		d.image.Set(d.currentPC(), b)
	}
	return d.activePC().advance(1, d.errf)
}

func (d *Driver) writeWord(w uint16) error {
	if err := d.writeByte(byte(w)); err != nil {
		return err
	}
	return d.writeByte(byte(w >> 8))
}

func (d *Driver) expectEOL() error {
	tok, err := d.peek()
	if err != nil {
		return err
	}
	if tok == lexer.Newline {
		d.eat()
		return nil
	}
	if tok == lexer.EOF {
		return nil
	}
	return d.errf("unexpected garbage at end of line")
}

// skipping reports whether statements should be parsed but suppressed
// (inside a false IF branch, or a branch nested under one).
func (d *Driver) skipping() bool {
	if len(d.ifStack) == 0 {
		return false
	}
	return !d.ifStack[len(d.ifStack)-1].active
}

func (d *Driver) statement(tok lexer.Token) error {
	if tok == lexer.Token('*') {
		if d.skipping() {
			return d.skipLine()
		}
		return d.handleOrg()
	}

	if tok != lexer.Ident {
		if d.skipping() {
			return d.skipLine()
		}
		return d.errf("unexpected token")
	}

	name := strings.ToUpper(d.str())
	switch name {
	case "IF":
		return d.handleIf()
	case "ELS":
		return d.handleEls()
	case "FIN":
		return d.handleFin()
	}

	if d.skipping() {
		return d.skipLine()
	}

	if m, ok := d.macros[name]; ok {
		return d.invokeMacro(m)
	}
	if isPseudoOp(name) {
		return d.handlePseudoOp(name)
	}
	if isMnemonic(name) {
		return d.handleOpcode(name)
	}
	return d.handleLabel(name)
}

// skipLine consumes tokens verbatim through the next Newline (or stops
// at EOF, leaving it for runPass to pop the source) without acting on
// any of them — the effect of a suppressed IF branch.
func (d *Driver) skipLine() error {
	for {
		tok, err := d.peek()
		if err != nil {
			return err
		}
		if tok == lexer.EOF {
			return nil
		}
		if tok == lexer.Newline {
			d.eat()
			return nil
		}
		d.eat()
	}
}

// handleOrg implements `* EQU expr`, relocating the active PC.
func (d *Driver) handleOrg() error {
	d.eat() // '*'
	tok, err := d.peek()
	if err != nil {
		return err
	}
	if tok != lexer.Ident || strings.ToUpper(d.str()) != "EQU" {
		return d.errf("expected EQU after '*'")
	}
	d.eat()
	v, resolved, err := d.evalExpr()
	if err != nil {
		return err
	}
	if d.pass == Pass2 && !resolved {
		return d.errf("unresolved expression in '* EQU'")
	}
	d.setPC(uint16(v))
	return d.expectEOL()
}

func (d *Driver) handleIf() error {
	d.eat() // "IF"
	if d.skipping() {
		d.ifStack = append(d.ifStack, ifFrame{forced: true})
		return d.skipLine()
	}
	v, resolved, err := d.evalExpr()
	if err != nil {
		return err
	}
	if !resolved {
		return d.errf("IF condition must be resolvable on both passes")
	}
	d.ifStack = append(d.ifStack, ifFrame{taken: v != 0, active: v != 0})
	return d.expectEOL()
}

func (d *Driver) handleEls() error {
	d.eat() // "ELS"
	if len(d.ifStack) == 0 {
		return d.errf("unbalanced IF (ELS with no open IF)")
	}
	top := &d.ifStack[len(d.ifStack)-1]
	if !top.forced {
		if top.seenElse {
			return d.errf("duplicate ELS")
		}
		top.seenElse = true
		top.active = !top.taken
	}
	return d.expectEOL()
}

func (d *Driver) handleFin() error {
	d.eat() // "FIN"
	if len(d.ifStack) == 0 {
		return d.errf("unbalanced IF (FIN with no open IF)")
	}
	d.ifStack = d.ifStack[:len(d.ifStack)-1]
	return d.expectEOL()
}

// handleLabel implements main-loop step 4: local-label expansion, macro
// definition, EQU, or an ordinary PC-valued label.
func (d *Driver) handleLabel(name string) error {
	isLocal := strings.HasPrefix(name, ".")
	if isLocal {
		d.topSource().PrependString(d.outerLabel)
		name = strings.ToUpper(d.str())
	}
	d.eat()
	if !isLocal {
		d.outerLabel = name
	}

	tok, err := d.peek()
	if err != nil {
		return err
	}
	if tok == lexer.Ident {
		switch strings.ToUpper(d.str()) {
		case "MAC":
			d.eat()
			return d.defineMacro(name)
		case "EQU":
			d.eat()
			v, resolved, err := d.evalExpr()
			if err != nil {
				return err
			}
			if d.pass == Pass2 && !resolved {
				return d.errf("unresolved EQU expression")
			}
			d.sym.Set(name, v)
			return d.expectEOL()
		}
	}

	pc := int32(d.currentPC())
	if d.pass == Pass2 {
		if existing, ok := d.sym.Get(name); ok && existing != pc {
			return d.errf("label %q value changed between passes", name)
		}
	}
	d.sym.Set(name, pc)
	return d.expectEOL()
}

func (d *Driver) defineMacro(name string) error {
	if err := d.expectEOL(); err != nil {
		return err
	}
	if _, exists := d.macros[name]; exists {
		return d.errf("macro %q already defined", name)
	}
	if isMnemonic(name) || isPseudoOp(name) {
		return d.errf("macro name %q collides with a mnemonic or pseudo-op", name)
	}
	body, err := captureBody(d.topSource())
	if err != nil {
		return err
	}
	d.macros[name] = &Macro{Name: name, Body: body}
	return nil
}

func (d *Driver) invokeMacro(m *Macro) error {
	d.eat() // macro-name identifier
	if tok, err := d.peek(); err == nil && tok == lexer.Ident && strings.ToUpper(d.str()) == "MAC" {
		return d.errf("macro %q already defined", m.Name)
	}
	line := d.topSource().Line()
	args, err := captureArguments(d.topSource())
	if err != nil {
		return err
	}
	if err := d.expectEOL(); err != nil {
		return err
	}
	d.sources = append(d.sources, NewMacroInvocation(m, args, line))
	return nil
}

func (d *Driver) handleOpcode(name string) error {
	if d.mode == modeBSS {
		return d.errf("opcode not allowed in BSS mode")
	}
	d.eat() // mnemonic identifier
	start := d.currentPC()
	offset := 0
	enc := &Encoder{
		Src:    d.topSource(),
		PC:     start,
		Lookup: d.sym.Lookup,
		Pass:   d.pass,
		Dec:    d.dec,
	}
	if d.pass == Pass2 {
		enc.Emit = func(b byte) {
			d.image.Set(start+uint16(offset), b)
			offset++
		}
	}
	size, err := enc.Encode(name)
	if err != nil {
		return err
	}
	if err := d.skipBytes(size); err != nil {
		return err
	}
	return d.expectEOL()
}
