package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// romReader serves bytes as if loaded at 0x1000, the address every test
// here disassembles from; any other address reads as 0.
func romReader(bytes ...byte) func(uint16) byte {
	return func(addr uint16) byte {
		if i := int(addr) - 0x1000; i >= 0 && i < len(bytes) {
			return bytes[i]
		}
		return 0
	}
}

func TestDisassembleImplied(t *testing.T) {
	text, size := Disassemble(romReader(0xEA), 0x1000)
	assert.Equal(t, "NOP", text)
	assert.Equal(t, 1, size)
}

func TestDisassembleImmediate(t *testing.T) {
	text, size := Disassemble(romReader(0xA9, 0x12), 0x1000)
	assert.Equal(t, "LDA #$12", text)
	assert.Equal(t, 2, size)
}

func TestDisassembleAbsolute(t *testing.T) {
	text, size := Disassemble(romReader(0xAD, 0x34, 0x12), 0x1000)
	assert.Equal(t, "LDA $1234", text)
	assert.Equal(t, 3, size)
}

func TestDisassembleShortBranch(t *testing.T) {
	// BEQ +2 from 0x1000: opcode+operand occupy 0x1000-0x1001, next PC is
	// 0x1002, target = 0x1002+2 = 0x1004.
	text, size := Disassemble(romReader(0xF0, 0x02), 0x1000)
	assert.Equal(t, "BEQ $1004", text)
	assert.Equal(t, 2, size)
}

func TestDisassembleBitModifier(t *testing.T) {
	text, size := Disassemble(romReader(bitModTable[3].rmb, 0x30), 0x1000)
	assert.Equal(t, "RMB 3,$30", text)
	assert.Equal(t, 2, size)
}

func TestDisassembleBitBranch(t *testing.T) {
	// BBS bit 2, addr $30, disp -1: target = pc+3+(-1) = pc+2.
	text, size := Disassemble(romReader(bitBranchTable[2].bbs, 0x30, 0xFF), 0x1000)
	assert.Equal(t, "BBS 2,$30,$1002", text)
	assert.Equal(t, 3, size)
}

func TestDisassembleRoundTripsEncodedForm(t *testing.T) {
	out := encodeAll(t, "$1234\n", 0x1000, noSym, "LDA")
	text, size := Disassemble(romReader(out...), 0x1000)
	assert.Equal(t, "LDA $1234", text)
	assert.Equal(t, len(out), size)
}
