package membus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPreloadsROM(t *testing.T) {
	rom := make([]byte, 3840)
	rom[0] = 0xAA
	rom[1] = 0xBB
	m := New(rom)

	assert.EqualValues(t, 0xAA, m.Read(0xF100))
	assert.EqualValues(t, 0xBB, m.Read(0xF101))
}

func TestWriteIgnoredInROMWindow(t *testing.T) {
	rom := make([]byte, 3840)
	rom[0] = 0x42
	m := New(rom)

	m.Write(0xF100, 0x99)
	assert.EqualValues(t, 0x42, m.Read(0xF100), "ROM window must ignore writes")
}

func TestRAMReadWriteRoundTrips(t *testing.T) {
	m := New(nil)
	m.Write(0x1234, 0x55)
	assert.EqualValues(t, 0x55, m.Read(0x1234))
}

func TestBankSelectChangesEffectiveAddress(t *testing.T) {
	m := New(nil)
	m.Write(0x2000, 0x11) // bank 0 of chapter 2
	m.SetBankSelect(2, 1)
	m.Write(0x2000, 0x22) // bank 1 of chapter 2, same logical address

	m.SetBankSelect(2, 0)
	assert.EqualValues(t, 0x11, m.Read(0x2000))
	m.SetBankSelect(2, 1)
	assert.EqualValues(t, 0x22, m.Read(0x2000))
}

func TestSetBankSelectMasksToTwoBits(t *testing.T) {
	m := New(nil)
	m.SetBankSelect(5, 0xFF)
	assert.EqualValues(t, 0b11, m.BankSelect(5))
}
