package assembler

import (
	"fmt"
	"strings"

	"github.com/possum2kit/p2/internal/expr"
	"github.com/possum2kit/p2/internal/lexer"
)

// Pass distinguishes the assembler's two passes. Pass 1 sizes every
// instruction; any addressing-mode choice that hinges on an unresolved
// expression takes the widest encoding available, so pass 1 never lays
// out fewer bytes than the instruction can need once every label is known.
// Pass 2 replays exactly the choice pass 1 made (via Decisions) and
// emits bytes — it never re-derives the choice from scratch, since by
// pass 2 every symbol resolves and would otherwise pick a narrower
// encoding than pass 1 already committed layout addresses to.
type Pass int

const (
	Pass1 Pass = iota
	Pass2
)

// Decisions threads the addressing-mode/size choices pass 1 made through
// to pass 2, one entry per relative branch that has a short and a long
// form, and one per operand in the plain or X/Y-indexed direct form (even
// for a mnemonic whose only such form is absolute). Non-deciding instructions (implied,
// immediate, accumulator, the indirect forms) don't consume a slot.
type Decisions struct {
	choices []mode
	idx     int
}

// Reset rewinds the replay cursor to the start of the recorded choices,
// called once before pass 2 begins.
func (d *Decisions) Reset() { d.idx = 0 }

func (d *Decisions) record(m mode) { d.choices = append(d.choices, m) }

func (d *Decisions) next() (mode, error) {
	if d.idx >= len(d.choices) {
		return 0, fmt.Errorf("internal error: pass 2 made more sizing decisions than pass 1 recorded")
	}
	m := d.choices[d.idx]
	d.idx++
	return m, nil
}

// Encoder turns one instruction's mnemonic and operand syntax into bytes,
// consulting Lookup for symbol values and Dec to keep pass 1 and pass 2
// in lockstep on every addressing-mode choice that isn't forced by syntax
// alone.
type Encoder struct {
	Src    lexer.TokenSource
	PC     uint16
	Lookup expr.Lookup
	Pass   Pass
	Dec    *Decisions
	Emit   func(byte) // nil on pass 1; called once per output byte on pass 2
}

func (e *Encoder) errf(format string, args ...any) error {
	return diagErr(e.Src, fmt.Sprintf(format, args...))
}

func (e *Encoder) emitByte(b byte) {
	if e.Emit != nil {
		e.Emit(b)
	}
}

func (e *Encoder) emitWord(w uint16) {
	e.emitByte(byte(w))
	e.emitByte(byte(w >> 8))
}

func (e *Encoder) eval() (int32, bool, error) {
	return expr.Eval(e.Src, e.PC, e.Lookup)
}

func (e *Encoder) peekIdent() (string, bool) {
	tok, err := e.Src.Peek()
	if err != nil || tok != lexer.Ident {
		return "", false
	}
	return strings.ToUpper(e.Src.String()), true
}

func (e *Encoder) peekTok(ch byte) bool {
	tok, err := e.Src.Peek()
	return err == nil && tok == lexer.Token(ch)
}

// eatIdentExpecting consumes an identifier token after verifying it's the
// expected keyword (case-insensitive), such as the X/Y/Z/SP index names.
func (e *Encoder) eatIdentExpecting(want string) error {
	name, ok := e.peekIdent()
	if !ok || name != want {
		return e.errf("expected %q", want)
	}
	e.Src.Eat()
	return nil
}

func (e *Encoder) eatExpecting(ch byte) error {
	if !e.peekTok(ch) {
		return e.errf("expected %q", string(ch))
	}
	e.Src.Eat()
	return nil
}

// Encode emits (or, on pass 1, merely sizes) the instruction named by
// mnemonic, whose operand syntax begins at the Encoder's current source
// position. It returns the instruction's total size in bytes.
func (e *Encoder) Encode(mnemonic string) (int, error) {
	mnemonic = strings.ToUpper(mnemonic)

	switch mnemonic {
	case "RMB":
		return e.encodeBitMod(false)
	case "SMB":
		return e.encodeBitMod(true)
	case "BBR":
		return e.encodeBitBranch(false)
	case "BBS":
		return e.encodeBitBranch(true)
	}
	if mnemonic == "BSR" {
		return e.encodeBSR()
	}
	if bt, ok := branchTable[mnemonic]; ok {
		return e.encodeBranch(bt.rel, bt.wrel)
	}

	modes, ok := instrTable[mnemonic]
	if !ok {
		return 0, e.errf("unknown mnemonic %q", mnemonic)
	}

	switch mnemonic {
	case "AUG":
		e.emitByte(modes[modeImpl])
		e.emitByte(0xEA)
		e.emitByte(0xEA)
		e.emitByte(0xEA)
		return 4, nil
	case "BRK":
		e.emitByte(modes[modeImpl])
		e.emitByte(0xEA)
		return 2, nil
	case "RTN":
		v, _, err := e.eval()
		if err != nil {
			return 0, err
		}
		e.emitByte(modes[modeImpl])
		e.emitByte(byte(v))
		return 2, nil
	}

	tok, err := e.Src.Peek()
	if err != nil {
		return 0, err
	}

	if tok == lexer.Newline || tok == lexer.EOF {
		if op, ok := modes[modeImpl]; ok {
			e.emitByte(op)
			return 1, nil
		}
		return 0, e.errf("%s requires an operand", mnemonic)
	}

	if tok == lexer.Ident && !e.identIsIndexName() {
		name, _ := e.peekIdent()
		if name == "A" {
			if op, ok := modes[modeAccum]; ok {
				e.Src.Eat()
				e.emitByte(op)
				return 1, nil
			}
		}
	}

	if tok == lexer.Token('#') {
		e.Src.Eat()
		v, _, err := e.eval()
		if err != nil {
			return 0, err
		}
		if mnemonic == "PHW" {
			op, ok := modes[modeImm]
			if !ok {
				return 0, e.errf("PHW has no immediate form")
			}
			e.emitByte(op)
			e.emitWord(uint16(v))
			return 3, nil
		}
		op, ok := modes[modeImm]
		if !ok {
			return 0, e.errf("%s has no immediate form", mnemonic)
		}
		e.emitByte(op)
		e.emitByte(byte(v))
		return 2, nil
	}

	if tok == lexer.Token('(') {
		_, indAbs := modes[modeIndAbs]
		_, indAbsX := modes[modeIndAbsX]
		if indAbs || indAbsX {
			return e.encodeIndirectAbs(modes)
		}
		return e.encodeIndirectBP(modes)
	}

	return e.encodeIndexedDirect(mnemonic, modes)
}

// identIsIndexName reports whether the current identifier token is one
// of the index-register keywords, so the bare "A" accumulator check
// doesn't misfire on "X"/"Y"/"Z" used as a label.
func (e *Encoder) identIsIndexName() bool {
	name, ok := e.peekIdent()
	return ok && (name == "X" || name == "Y" || name == "Z" || name == "SP")
}

// bitOperand parses the leading "bit," operand shared by RMB/SMB/BBR/BBS:
// a constant 0..7 selecting which opcode of the eight-wide family to
// use. It must resolve on pass two (it picks the opcode byte, not just
// the size, so there's no safe placeholder the way there is for a plain
// address expression).
func (e *Encoder) bitOperand() (int, error) {
	v, resolved, err := e.eval()
	if err != nil {
		return 0, err
	}
	if e.Pass == Pass2 && !resolved {
		return 0, e.errf("bit operand must be a resolvable constant")
	}
	if v < 0 || v > 7 {
		return 0, e.errf("bit operand must be 0..7")
	}
	return int(v), nil
}

func (e *Encoder) encodeBitMod(set bool) (int, error) {
	bit, err := e.bitOperand()
	if err != nil {
		return 0, err
	}
	if err := e.eatExpecting(','); err != nil {
		return 0, err
	}
	v, _, err := e.eval()
	if err != nil {
		return 0, err
	}
	op := bitModTable[bit].rmb
	if set {
		op = bitModTable[bit].smb
	}
	e.emitByte(op)
	e.emitByte(byte(v))
	return 2, nil
}

func (e *Encoder) encodeBitBranch(set bool) (int, error) {
	bit, err := e.bitOperand()
	if err != nil {
		return 0, err
	}
	if err := e.eatExpecting(','); err != nil {
		return 0, err
	}
	v, _, err := e.eval()
	if err != nil {
		return 0, err
	}
	if err := e.eatExpecting(','); err != nil {
		return 0, err
	}
	target, resolved, err := e.eval()
	if err != nil {
		return 0, err
	}
	disp, err := e.relDisp(target, resolved, e.PC+3)
	if err != nil {
		return 0, err
	}
	op := bitBranchTable[bit].bbr
	if set {
		op = bitBranchTable[bit].bbs
	}
	e.emitByte(op)
	e.emitByte(byte(v))
	e.emitByte(byte(disp))
	return 3, nil
}

// relDisp computes a signed 8-bit displacement from nextPC (the address
// just past the instruction) to target, erroring if it's out of range once the
// target is known to be resolved (an unresolved target on pass 1 can't
// be checked yet and is assumed to fit, matching the pass-1 size
// policy's optimism for this family — bit-branches have no long form to
// fall back to).
func (e *Encoder) relDisp(target int32, resolved bool, nextPC uint16) (int8, error) {
	if !resolved {
		return 0, nil
	}
	d := target - int32(nextPC)
	if d < -128 || d > 127 {
		return 0, e.errf("branch target out of range")
	}
	return int8(d), nil
}

func (e *Encoder) encodeBSR() (int, error) {
	target, resolved, err := e.eval()
	if err != nil {
		return 0, err
	}
	_ = resolved
	d := int32(target) - int32(e.PC+3)
	e.emitByte(bsrOpcode)
	e.emitWord(uint16(int16(d)))
	return 3, nil
}

// encodeBranch chooses between the short (relative, 2-byte) and long
// (word-relative, 3-byte) forms. Pass 1 records its choice so pass 2
// replays the identical size: an unresolved forward reference takes the
// long form (the safe upper bound), and a resolved target that doesn't
// fit an 8-bit displacement is forced long even though it was available
// on pass 1 for a backward reference.
func (e *Encoder) encodeBranch(relOp, wrelOp byte) (int, error) {
	if e.Pass == Pass1 {
		target, resolved, err := e.eval()
		if err != nil {
			return 0, err
		}
		m := modeWRel
		if resolved {
			d := int32(target) - int32(e.PC+2)
			if d >= -128 && d <= 127 {
				m = modeRel
			}
		}
		e.Dec.record(m)
		if m == modeRel {
			return 2, nil
		}
		return 3, nil
	}

	m, err := e.Dec.next()
	if err != nil {
		return 0, err
	}
	target, _, err := e.eval()
	if err != nil {
		return 0, err
	}
	if m == modeRel {
		d := int32(target) - int32(e.PC+2)
		if d < -128 || d > 127 {
			return 0, e.errf("branch target out of range for short form")
		}
		e.emitByte(relOp)
		e.emitByte(byte(int8(d)))
		return 2, nil
	}
	d := int32(target) - int32(e.PC+3)
	e.emitByte(wrelOp)
	e.emitWord(uint16(int16(d)))
	return 3, nil
}

// encodeIndirectAbs handles the "(ABS)" and "(ABS,X)" forms used by JMP,
// JSR, and PHW's indirect-word-fetch form.
func (e *Encoder) encodeIndirectAbs(modes map[mode]byte) (int, error) {
	e.Src.Eat() // '('
	v, _, err := e.eval()
	if err != nil {
		return 0, err
	}
	if e.peekTok(',') {
		e.Src.Eat()
		if err := e.eatIdentExpecting("X"); err != nil {
			return 0, err
		}
		if err := e.eatExpecting(')'); err != nil {
			return 0, err
		}
		op, ok := modes[modeIndAbsX]
		if !ok {
			return 0, e.errf("no (ABS,X) form for this instruction")
		}
		e.emitByte(op)
		e.emitWord(uint16(v))
		return 3, nil
	}
	if err := e.eatExpecting(')'); err != nil {
		return 0, err
	}
	op, ok := modes[modeIndAbs]
	if !ok {
		return 0, e.errf("no (ABS) form for this instruction")
	}
	e.emitByte(op)
	e.emitWord(uint16(v))
	return 3, nil
}

// encodeIndirectBP handles the zero-page-indirect family:
// "(BP,X)", "(BP),Y", "(BP),Z", and "(d,SP),Y".
func (e *Encoder) encodeIndirectBP(modes map[mode]byte) (int, error) {
	e.Src.Eat() // '('
	v, _, err := e.eval()
	if err != nil {
		return 0, err
	}

	if e.peekTok(',') {
		e.Src.Eat()
		if name, ok := e.peekIdent(); ok && name == "SP" {
			e.Src.Eat()
			if err := e.eatExpecting(')'); err != nil {
				return 0, err
			}
			if err := e.eatExpecting(','); err != nil {
				return 0, err
			}
			if err := e.eatIdentExpecting("Y"); err != nil {
				return 0, err
			}
			op, ok := modes[modeIndSP]
			if !ok {
				return 0, e.errf("no (d,SP),Y form for this instruction")
			}
			e.emitByte(op)
			e.emitByte(byte(v))
			return 2, nil
		}
		if err := e.eatIdentExpecting("X"); err != nil {
			return 0, err
		}
		if err := e.eatExpecting(')'); err != nil {
			return 0, err
		}
		op, ok := modes[modeIndX]
		if !ok {
			return 0, e.errf("no (BP,X) form for this instruction")
		}
		e.emitByte(op)
		e.emitByte(byte(v))
		return 2, nil
	}

	if err := e.eatExpecting(')'); err != nil {
		return 0, err
	}
	if err := e.eatExpecting(','); err != nil {
		return 0, err
	}
	name, ok := e.peekIdent()
	if !ok {
		return 0, e.errf("expected Y or Z after (BP)")
	}
	e.Src.Eat()
	switch name {
	case "Y":
		op, ok := modes[modeIndY]
		if !ok {
			return 0, e.errf("no (BP),Y form for this instruction")
		}
		e.emitByte(op)
		e.emitByte(byte(v))
		return 2, nil
	case "Z":
		op, ok := modes[modeIndZ]
		if !ok {
			return 0, e.errf("no (BP),Z form for this instruction")
		}
		e.emitByte(op)
		e.emitByte(byte(v))
		return 2, nil
	default:
		return 0, e.errf("expected Y or Z after (BP)")
	}
}

// encodeIndexedDirect handles the common case: an optional '|' forces
// the absolute (wide) encoding, then an expression, then an optional
// ",X"/",Y" index. Without '|', the zero-page form is used whenever the
// value is known to fit a byte; an unresolved value on pass 1 takes the
// absolute form (the widest size the operand can need), and pass 2
// replays whichever form pass 1 decided.
func (e *Encoder) encodeIndexedDirect(mnemonic string, modes map[mode]byte) (int, error) {
	forceAbs := false
	if e.peekTok('|') {
		e.Src.Eat()
		forceAbs = true
	}

	v, resolved, err := e.eval()
	if err != nil {
		return 0, err
	}

	index := "" // "", "X", or "Y"
	if e.peekTok(',') {
		e.Src.Eat()
		name, ok := e.peekIdent()
		if !ok || (name != "X" && name != "Y") {
			return 0, e.errf("expected X or Y after ','")
		}
		e.Src.Eat()
		index = name
	}

	bpMode, absMode := modeForIndex(index)
	_, haveBP := modes[bpMode]
	_, haveAbs := modes[absMode]
	if !haveAbs {
		return 0, e.errf("%s has no form for this operand", mnemonic)
	}

	var chosen mode
	if e.Pass == Pass1 {
		chosen = absMode
		if haveBP && !forceAbs && resolved && v >= 0 && v <= 0xFF {
			chosen = bpMode
		}
		e.Dec.record(chosen)
	} else {
		chosen, err = e.Dec.next()
		if err != nil {
			return 0, err
		}
	}

	op := modes[chosen]
	e.emitByte(op)
	if chosen == bpMode {
		e.emitByte(byte(v))
		return 2, nil
	}
	e.emitWord(uint16(v))
	return 3, nil
}

func modeForIndex(index string) (bp, abs mode) {
	switch index {
	case "X":
		return modeBPX, modeAbsX
	case "Y":
		return modeBPY, modeAbsY
	default:
		return modeBP, modeAbs
	}
}
