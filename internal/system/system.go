// Package system composes the CPU, memory controller, two UARTs, and two
// FDCs into the Possum2 machine: it owns the interrupt-latch priority
// encoder and drives one tick of the whole machine at a time.
package system

import (
	"github.com/possum2kit/p2/internal/cpu65ce02"
	"github.com/possum2kit/p2/internal/fdc"
	"github.com/possum2kit/p2/internal/membus"
	"github.com/possum2kit/p2/internal/uart"
)

// I/O register windows within chapter 0xF, relative to its base 0xF000.
const (
	ioBase        = 0xF000
	bankSelectEnd = 0xF00E
	ser0Base      = 0xF010
	ser1Base      = 0xF014
	fdc0Base      = 0xF030
	fdc1Base      = 0xF034
	irqLatchAddr  = 0xF0FF
)

// System is the full machine: one CPU, one banked-memory controller, two
// serial ports, and two floppy controllers, wired together through the
// Bus interface the CPU drives.
type System struct {
	CPU  cpu65ce02.CPU
	Mem  *membus.Mem
	Ser0 *uart.UART
	Ser1 *uart.UART
	FDC0 *fdc.FDC
	FDC1 *fdc.FDC

	irqLatch byte
}

// New constructs a System with the given ROM image preloaded and the given
// backing streams for each peripheral.
func New(rom []byte, ser0, ser1 uart.Stream, fdc0, fdc1 fdc.Handle) *System {
	return &System{
		Mem:  membus.New(rom),
		Ser0: uart.New(ser0),
		Ser1: uart.New(ser1),
		FDC0: fdc.New(fdc0),
		FDC1: fdc.New(fdc1),
	}
}

// Reset resets every component and clears the interrupt latch.
func (s *System) Reset() {
	s.CPU.Reset(s)
	s.Ser0.Reset()
	s.Ser1.Reset()
	s.FDC0.Reset()
	s.FDC1.Reset()
	s.irqLatch = 0
}

// Tick runs one CPU tick, then one tick for each peripheral, then
// recomputes the interrupt latch as the highest-priority pending request
// (FDC0-DRQ, FDC1-DRQ, FDC0-IRQ, FDC1-IRQ, SER0-IRQ, SER1-IRQ, in that
// order) shifted left by one, and raises the CPU's IRQ line if anything is
// pending. The CPU therefore observes the latch state computed by the
// *previous* tick: the engine's one-cycle interrupt-delivery latency.
func (s *System) Tick() {
	s.CPU.Tick(s)
	s.Ser0.Tick()
	s.Ser1.Tick()
	s.FDC0.Tick()
	s.FDC1.Tick()

	switch {
	case s.FDC0.DRQ():
		s.irqLatch = 1 << 1
	case s.FDC1.DRQ():
		s.irqLatch = 2 << 1
	case s.FDC0.IRQ():
		s.irqLatch = 3 << 1
	case s.FDC1.IRQ():
		s.irqLatch = 4 << 1
	case s.Ser0.IRQ():
		s.irqLatch = 5 << 1
	case s.Ser1.IRQ():
		s.irqLatch = 6 << 1
	}

	if s.Ser0.IRQ() || s.Ser1.IRQ() || s.FDC0.IRQ() || s.FDC0.DRQ() || s.FDC1.IRQ() || s.FDC1.DRQ() {
		s.CPU.IRQ()
	}
}

// Read implements cpu65ce02.Bus, dispatching the I/O window to the
// appropriate peripheral and everything else to the banked memory
// controller.
func (s *System) Read(addr uint16) byte {
	switch {
	case addr >= ioBase && addr <= bankSelectEnd:
		return s.Mem.BankSelect(byte(addr - ioBase))
	case addr >= ser0Base && addr <= ser0Base+3:
		return s.Ser0.Read(addr - ser0Base)
	case addr >= ser1Base && addr <= ser1Base+3:
		return s.Ser1.Read(addr - ser1Base)
	case addr >= fdc0Base && addr <= fdc0Base+3:
		return s.FDC0.Read(addr - fdc0Base)
	case addr >= fdc1Base && addr <= fdc1Base+3:
		return s.FDC1.Read(addr - fdc1Base)
	case addr == irqLatchAddr:
		latch := s.irqLatch
		s.irqLatch = 0
		return latch
	case addr > bankSelectEnd && addr < ser0Base, addr > ser1Base+3 && addr < fdc0Base,
		addr > fdc1Base+3 && addr < irqLatchAddr:
		return 0
	default:
		return s.Mem.Read(addr)
	}
}

// Write implements cpu65ce02.Bus, mirroring Read's address decode.
func (s *System) Write(addr uint16, data byte) {
	switch {
	case addr >= ioBase && addr <= bankSelectEnd:
		s.Mem.SetBankSelect(byte(addr-ioBase), data)
	case addr >= ser0Base && addr <= ser0Base+3:
		s.Ser0.Write(addr-ser0Base, data)
	case addr >= ser1Base && addr <= ser1Base+3:
		s.Ser1.Write(addr-ser1Base, data)
	case addr >= fdc0Base && addr <= fdc0Base+3:
		s.FDC0.Write(addr-fdc0Base, data)
	case addr >= fdc1Base && addr <= fdc1Base+3:
		s.FDC1.Write(addr-fdc1Base, data)
	case addr == irqLatchAddr:
		// read-only port
	case addr > bankSelectEnd && addr < ser0Base, addr > ser1Base+3 && addr < fdc0Base,
		addr > fdc1Base+3 && addr < irqLatchAddr:
		// reserved I/O range (PPU, parallel port): no core semantics
	default:
		s.Mem.Write(addr, data)
	}
}
