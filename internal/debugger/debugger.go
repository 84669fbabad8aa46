// Package debugger implements the emulator's command-line debugger: a
// line-oriented command set operating between CPU ticks over whatever
// reads a line, be that the UART0 backing stream or an interactive
// peterh/liner prompt.
package debugger

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/possum2kit/p2/internal/assembler"
	"github.com/possum2kit/p2/internal/cpu65ce02"
	"github.com/possum2kit/p2/internal/system"
)

// Debugger holds the state a command line needs beyond the System itself:
// breakpoints and an optional name->address symbol table for resolving
// address arguments.
type Debugger struct {
	Sys         *system.System
	Symbols     map[string]uint16 // uppercased name -> address; nil if no -s file was given
	breakpoints map[uint16]bool

	// Quit is set once a "q"/"quit" command has been executed; the
	// caller's run loop checks it after Execute returns.
	Quit bool
}

// New builds a Debugger over sys, with an optional symbol table (nil is
// fine — address arguments then accept only hex).
func New(sys *system.System, symbols map[string]uint16) *Debugger {
	return &Debugger{Sys: sys, Symbols: symbols, breakpoints: make(map[uint16]bool)}
}

// AtBreakpoint reports whether the CPU's current PC has a breakpoint, so
// the emulator's tick loop knows to stop and prompt.
func (d *Debugger) AtBreakpoint() bool {
	return d.breakpoints[d.Sys.CPU.PC]
}

// Execute runs one command line, writing its response to w, and reports
// whether the caller's tick loop should resume running (true) or stop and
// prompt again (false). Parse failures are reported inline and are never
// fatal, per the emulator's "user" error kind.
func (d *Debugger) Execute(line string, w io.Writer) (resume bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "c":
		return true
	case "q", "quit":
		d.Quit = true
		return false
	case "s", "n":
		d.Sys.Tick()
		d.printRegisters(w, 16)
		return false
	case "r":
		d.printRegisters(w, 16)
		return false
	case "R":
		d.printRegisters(w, 10)
		return false
	case "RR":
		d.printRegistersSigned(w)
		return false
	case "b":
		d.addBreakpoint(w, args)
		return false
	case "B":
		d.removeBreakpoint(w, args)
		return false
	case "x":
		d.examine(w, args, 16)
		return false
	case "X":
		d.examine(w, args, 10)
		return false
	case "XX":
		d.examineSigned(w, args)
		return false
	case "d":
		d.disassemble(w, args)
		return false
	case "w":
		d.writeByte(w, args)
		return false
	case "?", "h", "help":
		d.help(w)
		return false
	default:
		fmt.Fprintf(w, "unknown command %q (? for help)\n", cmd)
		return false
	}
}

// resolveAddr accepts either a "$"-optional hex literal or a symbol name
// (case-insensitive), per the spec's "hex or a symbol name" contract.
func (d *Debugger) resolveAddr(s string) (uint16, error) {
	if s == "" {
		return 0, fmt.Errorf("missing address")
	}
	hexPart := strings.TrimPrefix(s, "$")
	if v, err := strconv.ParseUint(hexPart, 16, 16); err == nil {
		return uint16(v), nil
	}
	if d.Symbols != nil {
		if v, ok := d.Symbols[strings.ToUpper(s)]; ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unresolved address %q", s)
}

// addrArg resolves args[0] if present, else falls back to the CPU's
// current PC — the debugger's own default target for b/B/x/X/XX/d.
func (d *Debugger) addrArg(w io.Writer, args []string) (uint16, bool) {
	if len(args) == 0 {
		return d.Sys.CPU.PC, true
	}
	addr, err := d.resolveAddr(args[0])
	if err != nil {
		fmt.Fprintln(w, err)
		return 0, false
	}
	return addr, true
}

func (d *Debugger) addBreakpoint(w io.Writer, args []string) {
	addr, ok := d.addrArg(w, args)
	if !ok {
		return
	}
	d.breakpoints[addr] = true
	fmt.Fprintf(w, "breakpoint set at $%04X\n", addr)
}

func (d *Debugger) removeBreakpoint(w io.Writer, args []string) {
	addr, ok := d.addrArg(w, args)
	if !ok {
		return
	}
	delete(d.breakpoints, addr)
	fmt.Fprintf(w, "breakpoint cleared at $%04X\n", addr)
}

func (d *Debugger) writeByte(w io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(w, "usage: w <addr> <byte>")
		return
	}
	addr, err := d.resolveAddr(args[0])
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "$"), 16, 8)
	if err != nil {
		fmt.Fprintf(w, "bad byte value %q\n", args[1])
		return
	}
	d.Sys.Write(addr, byte(v))
	fmt.Fprintf(w, "$%04X <- $%02X\n", addr, v)
}

func (d *Debugger) examine(w io.Writer, args []string, base int) {
	addr, ok := d.addrArg(w, args)
	if !ok {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%04X:", addr)
	for i := 0; i < 16; i++ {
		v := d.Sys.Read(addr + uint16(i))
		if base == 16 {
			fmt.Fprintf(&sb, " %02X", v)
		} else {
			fmt.Fprintf(&sb, " %3d", v)
		}
	}
	fmt.Fprintln(w, sb.String())
}

func (d *Debugger) examineSigned(w io.Writer, args []string) {
	addr, ok := d.addrArg(w, args)
	if !ok {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "$%04X:", addr)
	for i := 0; i < 16; i++ {
		v := int8(d.Sys.Read(addr + uint16(i)))
		fmt.Fprintf(&sb, " %4d", v)
	}
	fmt.Fprintln(w, sb.String())
}

// disassemble prints eight consecutive instructions starting at addr.
func (d *Debugger) disassemble(w io.Writer, args []string) {
	addr, ok := d.addrArg(w, args)
	if !ok {
		return
	}
	for i := 0; i < 8; i++ {
		text, size := assembler.Disassemble(d.Sys.Read, addr)
		fmt.Fprintf(w, "$%04X: %s\n", addr, text)
		addr += uint16(size)
	}
}

func (d *Debugger) printRegisters(w io.Writer, base int) {
	c := &d.Sys.CPU
	if base == 16 {
		fmt.Fprintf(w, "A=%02X B=%02X X=%02X Y=%02X Z=%02X SP=%04X PC=%04X P=%02X [%s]\n",
			c.A, c.B, c.X, c.Y, c.Z, c.SP, c.PC, byte(c.P), flagString(c.P))
		return
	}
	fmt.Fprintf(w, "A=%d B=%d X=%d Y=%d Z=%d SP=%d PC=%d P=%d [%s]\n",
		c.A, c.B, c.X, c.Y, c.Z, c.SP, c.PC, byte(c.P), flagString(c.P))
}

func (d *Debugger) printRegistersSigned(w io.Writer) {
	c := &d.Sys.CPU
	fmt.Fprintf(w, "A=%d B=%d X=%d Y=%d Z=%d SP=%d PC=%d P=%d [%s]\n",
		int8(c.A), int8(c.B), int8(c.X), int8(c.Y), int8(c.Z), int16(c.SP), int16(c.PC), int8(c.P), flagString(c.P))
}

func flagString(p cpu65ce02.Flags) string {
	names := []struct {
		bit  cpu65ce02.Flags
		name byte
	}{
		{1 << 7, 'N'}, {1 << 6, 'V'}, {1 << 5, 'E'}, {1 << 4, 'B'},
		{1 << 3, 'D'}, {1 << 2, 'I'}, {1 << 1, 'Z'}, {1 << 0, 'C'},
	}
	var sb strings.Builder
	for _, n := range names {
		if p&n.bit != 0 {
			sb.WriteByte(n.name)
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func (d *Debugger) help(w io.Writer) {
	lines := []string{
		"c            continue",
		"q, quit      quit",
		"s, n         single step",
		"r            print registers (hex)",
		"R            print registers (decimal)",
		"RR           print registers (signed decimal)",
		"b [addr]     add breakpoint (default: current PC)",
		"B [addr]     remove breakpoint",
		"x [addr]     examine 16 bytes (hex)",
		"X [addr]     examine 16 bytes (decimal)",
		"XX [addr]    examine 16 bytes (signed decimal)",
		"d [addr]     disassemble 8 instructions",
		"w <addr> <byte>  write one byte directly to the bus",
		"?, h, help   this help",
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// Breakpoints returns the sorted list of currently set breakpoint
// addresses, for the "b"/"B" commands' own bookkeeping and tests.
func (d *Debugger) Breakpoints() []uint16 {
	out := make([]uint16, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
