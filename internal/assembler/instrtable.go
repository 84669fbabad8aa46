package assembler

// mode identifies one addressing-mode slot a mnemonic may support.
type mode int

const (
	modeImpl mode = iota
	modeImm
	modeAccum
	modeBP
	modeBPX
	modeBPY
	modeAbs
	modeAbsX
	modeAbsY
	modeIndX    // (BP,X)
	modeIndY    // (BP),Y
	modeIndZ    // (BP),Z
	modeIndSP   // (d,SP),Y
	modeIndAbs  // (ABS), used by JMP/JSR/PHW
	modeIndAbsX // (ABS,X), used by JMP/JSR
	modeRel     // short branch, 2 bytes
	modeWRel    // long (word) branch, 3 bytes
)

// instrTable maps a mnemonic to the opcode byte for each addressing mode
// it supports. Mnemonics with implied-only trailing-byte quirks (AUG,
// BRK, RTN), the branch family, the bit-branch/bit-modifier families, and
// PHW's immediate-is-two-bytes exception are special-cased in encoder.go
// rather than folded into this table's uniform one-byte-per-mode shape.
var instrTable = map[string]map[mode]byte{
	"ADC": {modeImm: 0x69, modeAbs: 0x6D, modeBP: 0x65, modeIndX: 0x61, modeIndY: 0x71, modeIndZ: 0x72, modeBPX: 0x75, modeAbsX: 0x7D, modeAbsY: 0x79},
	"AND": {modeImm: 0x29, modeAbs: 0x2D, modeBP: 0x25, modeIndX: 0x21, modeIndY: 0x31, modeIndZ: 0x32, modeBPX: 0x35, modeAbsX: 0x3D, modeAbsY: 0x39},
	"EOR": {modeImm: 0x49, modeAbs: 0x4D, modeBP: 0x45, modeIndX: 0x41, modeIndY: 0x51, modeIndZ: 0x52, modeBPX: 0x55, modeAbsX: 0x5D, modeAbsY: 0x59},
	"SBC": {modeImm: 0xE9, modeAbs: 0xED, modeBP: 0xE5, modeIndX: 0xE1, modeIndY: 0xF1, modeIndZ: 0xF2, modeBPX: 0xF5, modeAbsX: 0xFD, modeAbsY: 0xF9},
	"CMP": {modeImm: 0xC9, modeAbs: 0xCD, modeBP: 0xC5, modeIndX: 0xC1, modeIndY: 0xD1, modeIndZ: 0xD2, modeBPX: 0xD5, modeAbsX: 0xDD, modeAbsY: 0xD9},
	"CPX": {modeImm: 0xE0, modeAbs: 0xEC, modeBP: 0xE4},
	"CPY": {modeImm: 0xC0, modeAbs: 0xCC, modeBP: 0xC4},
	"CPZ": {modeImm: 0xC2, modeAbs: 0xDC, modeBP: 0xD4},
	"ORA": {modeImm: 0x09, modeAbs: 0x0D, modeBP: 0x05, modeIndX: 0x01, modeIndY: 0x11, modeIndZ: 0x12, modeBPX: 0x15, modeAbsX: 0x1D, modeAbsY: 0x19},

	"LDA": {modeImm: 0xA9, modeAbs: 0xAD, modeBP: 0xA5, modeIndX: 0xA1, modeIndY: 0xB1, modeIndZ: 0xB2, modeBPX: 0xB5, modeAbsX: 0xBD, modeAbsY: 0xB9, modeIndSP: 0xE2},
	"LDX": {modeImm: 0xA2, modeAbs: 0xAE, modeBP: 0xA6, modeBPY: 0xB6, modeAbsY: 0xBE},
	"LDY": {modeImm: 0xA0, modeAbs: 0xAC, modeBP: 0xA4, modeBPX: 0xB4, modeAbsX: 0xBC},
	"LDZ": {modeImm: 0xA3, modeAbs: 0xAB, modeAbsX: 0xBB},

	"STA": {modeAbs: 0x8D, modeBP: 0x85, modeIndX: 0x81, modeIndY: 0x91, modeIndZ: 0x92, modeBPX: 0x95, modeAbsX: 0x9D, modeAbsY: 0x99, modeIndSP: 0x82},
	"STX": {modeAbs: 0x8E, modeBP: 0x86, modeBPY: 0x96},
	"STY": {modeAbs: 0x8C, modeBP: 0x84, modeBPX: 0x94, modeAbsX: 0x8B},
	"STZ": {modeAbs: 0x9C, modeBP: 0x64, modeBPX: 0x74, modeAbsX: 0x9E},

	"ASL": {modeAccum: 0x0A, modeAbs: 0x0E, modeBP: 0x06, modeBPX: 0x16, modeAbsX: 0x1E},
	"ROL": {modeAccum: 0x2A, modeAbs: 0x2E, modeBP: 0x26, modeBPX: 0x36, modeAbsX: 0x3E},
	"LSR": {modeAccum: 0x4A, modeAbs: 0x4E, modeBP: 0x46, modeBPX: 0x56, modeAbsX: 0x5E},
	"ROR": {modeAccum: 0x6A, modeAbs: 0x6E, modeBP: 0x66, modeBPX: 0x76, modeAbsX: 0x7E},
	"ASR": {modeAccum: 0x43, modeBP: 0x44, modeBPX: 0x54},

	"INC": {modeAccum: 0x1A, modeAbs: 0xEE, modeBP: 0xE6, modeBPX: 0xF6, modeAbsX: 0xFE},
	"DEC": {modeAccum: 0x3A, modeAbs: 0xCE, modeBP: 0xC6, modeBPX: 0xD6, modeAbsX: 0xDE},

	"TSB": {modeBP: 0x04, modeAbs: 0x0C},
	"TRB": {modeBP: 0x14, modeAbs: 0x1C},
	"BIT": {modeImm: 0x89, modeBP: 0x24, modeAbs: 0x2C, modeBPX: 0x34, modeAbsX: 0x3C},

	"INW": {modeBP: 0xE3},
	"DEW": {modeBP: 0xC3},
	"ROW": {modeBP: 0xEB},
	"ASW": {modeBP: 0xCB},

	"PHW": {modeImm: 0xF4, modeIndAbs: 0xFC},

	"JMP": {modeAbs: 0x4C, modeIndAbs: 0x6C, modeIndAbsX: 0x7C},
	"JSR": {modeAbs: 0x20, modeIndAbs: 0x22, modeIndAbsX: 0x23},

	"INX": {modeImpl: 0xE8}, "INY": {modeImpl: 0xC8}, "INZ": {modeImpl: 0x1B},
	"DEX": {modeImpl: 0xCA}, "DEY": {modeImpl: 0x88}, "DEZ": {modeImpl: 0x3B},
	"TAX": {modeImpl: 0xAA}, "TXA": {modeImpl: 0x8A},
	"TAY": {modeImpl: 0xA8}, "TYA": {modeImpl: 0x98},
	"TAZ": {modeImpl: 0x4B}, "TZA": {modeImpl: 0x6B},
	"TAB": {modeImpl: 0x5B}, "TBA": {modeImpl: 0x7B},
	"TXS": {modeImpl: 0x9A}, "TSX": {modeImpl: 0xBA},
	"TYS": {modeImpl: 0x2B}, "TSY": {modeImpl: 0x0B},
	"PHA": {modeImpl: 0x48}, "PLA": {modeImpl: 0x68},
	"PHX": {modeImpl: 0xDA}, "PLX": {modeImpl: 0xFA},
	"PHY": {modeImpl: 0x5A}, "PLY": {modeImpl: 0x7A},
	"PHZ": {modeImpl: 0xDB}, "PLZ": {modeImpl: 0xFB},
	"PHP": {modeImpl: 0x08}, "PLP": {modeImpl: 0x28},
	"CLC": {modeImpl: 0x18}, "SEC": {modeImpl: 0x38},
	"CLI": {modeImpl: 0x58}, "SEI": {modeImpl: 0x78},
	"CLV": {modeImpl: 0xB8}, "CLD": {modeImpl: 0xD8}, "SED": {modeImpl: 0xF8},
	"CLE": {modeImpl: 0x02}, "SEE": {modeImpl: 0x03},
	"NEG": {modeImpl: 0x42},
	"NOP": {modeImpl: 0xEA},
	"RTS": {modeImpl: 0x60}, "RTI": {modeImpl: 0x40},

	// AUG, BRK, RTN are implied-shaped but emit extra bytes the uniform
	// table can't express; encoder.go special-cases them by mnemonic.
	"AUG": {modeImpl: 0x5C},
	"BRK": {modeImpl: 0x00},
	"RTN": {modeImpl: 0x62},
}

// branchTable holds the short/long opcode pair for every two-way branch
// mnemonic. BSR is handled separately in encoder.go since it has no
// short form at all.
var branchTable = map[string]struct{ rel, wrel byte }{
	"BPL": {0x10, 0x13},
	"BMI": {0x30, 0x33},
	"BVC": {0x50, 0x53},
	"BVS": {0x70, 0x73},
	"BRU": {0x80, 0x83},
	"BCC": {0x90, 0x93},
	"BCS": {0xB0, 0xB3},
	"BNE": {0xD0, 0xD3},
	"BEQ": {0xF0, 0xF3},
}

const bsrOpcode = 0x63

// bitMnemonics are the four bit-in-base-page families. Unlike the NMOS
// 65C02's eight suffixed mnemonics per family, this dialect takes the
// bit number as an ordinary leading expression operand (0..7), so the
// mnemonic itself is always exactly one of these four names.
var bitMnemonics = map[string]bool{"RMB": true, "SMB": true, "BBR": true, "BBS": true}

// isMnemonic reports whether name (already upper-cased) names a CPU
// instruction the Encoder knows how to assemble: an ordinary table
// entry, a branch, BSR, or one of the bit-in-base-page families.
func isMnemonic(name string) bool {
	if _, ok := instrTable[name]; ok {
		return true
	}
	if _, ok := branchTable[name]; ok {
		return true
	}
	if name == "BSR" {
		return true
	}
	return bitMnemonics[name]
}

// bitBranchTable[bit] holds {BBR, BBS} opcodes for that bit number.
var bitBranchTable = [8]struct{ bbr, bbs byte }{
	{0x0F, 0x8F}, {0x1F, 0x9F}, {0x2F, 0xAF}, {0x3F, 0xBF},
	{0x4F, 0xCF}, {0x5F, 0xDF}, {0x6F, 0xEF}, {0x7F, 0xFF},
}

// bitModTable[bit] holds {RMB, SMB} opcodes for that bit number.
var bitModTable = [8]struct{ rmb, smb byte }{
	{0x07, 0x87}, {0x17, 0x97}, {0x27, 0xA7}, {0x37, 0xB7},
	{0x47, 0xC7}, {0x57, 0xD7}, {0x67, 0xE7}, {0x77, 0xF7},
}
