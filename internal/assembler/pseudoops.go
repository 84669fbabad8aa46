package assembler

import (
	"strconv"
	"strings"

	"github.com/possum2kit/p2/internal/lexer"
)

var pseudoOps = map[string]bool{
	"BYT": true, "WRD": true, "PAD": true, "ADJ": true,
	"BSS": true, "TXT": true, "INF": true, "MSG": true,
}

// bssAllowed is the closed set of pseudo-ops honoured while in BSS mode;
// any other pseudo-op (and every opcode) is an error there.
var bssAllowed = map[string]bool{"PAD": true, "ADJ": true, "TXT": true, "INF": true}

func isPseudoOp(name string) bool { return pseudoOps[name] }

func (d *Driver) handlePseudoOp(name string) error {
	if d.mode == modeBSS && !bssAllowed[name] {
		return d.errf("%s is not allowed in BSS mode", name)
	}
	switch name {
	case "BYT":
		return d.doBYT()
	case "WRD":
		return d.doWRD()
	case "PAD":
		return d.doPAD()
	case "ADJ":
		return d.doADJ()
	case "BSS":
		d.eat()
		d.mode = modeBSS
		return d.expectEOL()
	case "TXT":
		d.eat()
		d.mode = modeText
		return d.expectEOL()
	case "INF":
		return d.doINF()
	case "MSG":
		return d.doMSG()
	}
	return d.errf("unhandled pseudo-op %s", name)
}

func (d *Driver) doBYT() error {
	d.eat() // "BYT"
	for {
		tok, err := d.peek()
		if err != nil {
			return err
		}
		if tok == lexer.String {
			s := d.str()
			d.eat()
			for i := 0; i < len(s); i++ {
				if err := d.writeByte(s[i]); err != nil {
					return err
				}
			}
		} else {
			v, resolved, err := d.evalExpr()
			if err != nil {
				return err
			}
			if d.pass == Pass2 && !resolved {
				return d.errf("unresolved BYT expression")
			}
			if err := d.writeByte(byte(v)); err != nil {
				return err
			}
		}
		tok, err = d.peek()
		if err != nil {
			return err
		}
		if tok != lexer.Token(',') {
			break
		}
		d.eat()
	}
	return d.expectEOL()
}

func (d *Driver) doWRD() error {
	d.eat() // "WRD"
	for {
		v, resolved, err := d.evalExpr()
		if err != nil {
			return err
		}
		if d.pass == Pass2 && !resolved {
			return d.errf("unresolved WRD expression")
		}
		if err := d.writeWord(uint16(v)); err != nil {
			return err
		}
		tok, err := d.peek()
		if err != nil {
			return err
		}
		if tok != lexer.Token(',') {
			break
		}
		d.eat()
	}
	return d.expectEOL()
}

func (d *Driver) doPAD() error {
	d.eat() // "PAD"
	v, resolved, err := d.evalExpr()
	if err != nil {
		return err
	}
	if d.pass == Pass2 && !resolved {
		return d.errf("unresolved PAD expression")
	}
	n := int(v)
	if n < 0 {
		return d.errf("PAD count must not be negative")
	}
	for i := 0; i < n; i++ {
		if err := d.padOneByte(); err != nil {
			return err
		}
	}
	return d.expectEOL()
}

func (d *Driver) padOneByte() error {
	if d.mode == modeText {
		return d.writeByte(0xEA)
	}
	return d.skipBytes(1)
}

func (d *Driver) doADJ() error {
	d.eat() // "ADJ"
	v, resolved, err := d.evalExpr()
	if err != nil {
		return err
	}
	if d.pass == Pass2 && !resolved {
		return d.errf("unresolved ADJ expression")
	}
	n := int(v)
	if n <= 0 {
		return d.errf("ADJ modulus must be positive")
	}
	rem := int(d.currentPC()) % n
	pad := 0
	if rem != 0 {
		pad = n - rem
	}
	for i := 0; i < pad; i++ {
		if err := d.padOneByte(); err != nil {
			return err
		}
	}
	return d.expectEOL()
}

func (d *Driver) doINF() error {
	d.eat() // "INF"
	tok, err := d.peek()
	if err != nil {
		return err
	}
	if tok != lexer.String {
		return d.errf("expected a quoted path after INF")
	}
	path := d.str()
	d.eat()
	if d.openInf == nil {
		return d.errf("INF %q: no file source configured", path)
	}
	rs, err := d.openInf(path)
	if err != nil {
		return d.errf("cannot open %q: %v", path, err)
	}
	d.sources = append(d.sources, lexer.New(lexer.NewReader(rs)))
	return d.expectEOL()
}

func (d *Driver) doMSG() error {
	d.eat() // "MSG"
	line := d.topSource().Line()
	var sb strings.Builder
	for {
		tok, err := d.peek()
		if err != nil {
			return err
		}
		if tok == lexer.String {
			sb.WriteString(d.str())
			d.eat()
		} else {
			v, resolved, err := d.evalExpr()
			if err != nil {
				return err
			}
			if d.pass == Pass2 {
				if !resolved {
					return d.errf("unresolved MSG expression")
				}
				sb.WriteString(strconv.Itoa(int(v)))
			}
		}
		tok, err = d.peek()
		if err != nil {
			return err
		}
		if tok != lexer.Token(',') {
			break
		}
		d.eat()
	}
	if d.pass == Pass2 && d.logger != nil {
		d.logger.Infof("%d: %s", line, sb.String())
	}
	return d.expectEOL()
}
