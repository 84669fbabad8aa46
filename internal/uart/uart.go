// Package uart implements a 6551-style asynchronous communications
// interface: four registers (Data, Status, Command, Control), a
// DTR-gated per-tick transmit/receive pump, and an IRQ line the System
// polls into its interrupt latch.
package uart

import "io"

// Status bits.
const (
	StatusParityError byte = 1 << iota
	StatusFramingError
	StatusOverrun
	StatusRXFull
	StatusTXEmpty
	StatusDataCarrierDetect
	StatusDataSetReady
	StatusInterrupt
)

// Command bits of interest.
const (
	CommandDTR byte = 1 << iota
	CommandRXInterruptDisable
)

// Stream is the backing transport a UART reads from and writes to — a
// terminal, a pipe, or any other byte stream.
type Stream interface {
	io.Reader
	io.Writer
}

// UART holds the 6551's register state and a pending TX/RX byte.
type UART struct {
	handle Stream

	status  byte
	command byte
	control byte

	tx     byte
	txFull bool
	rx     byte
	rxFull bool
}

func New(handle Stream) *UART {
	return &UART{handle: handle}
}

func (u *UART) Reset() {
	u.status = StatusTXEmpty
	u.command = 0
	u.control = 0
	u.txFull = false
	u.rxFull = false
}

// Tick pumps one pending TX byte out and one RX byte in, provided
// DATA-TERMINAL-READY is set; otherwise the device is idle.
func (u *UART) Tick() {
	if u.command&CommandDTR == 0 {
		return
	}

	if u.txFull {
		n, err := u.handle.Write([]byte{u.tx})
		if err == nil && n > 0 {
			u.txFull = false
			u.status |= StatusTXEmpty
			u.raiseInterrupt()
		}
	}

	if !u.rxFull {
		var buf [1]byte
		n, err := u.handle.Read(buf[:])
		if err == nil && n > 0 {
			u.rx = buf[0]
			u.rxFull = true
			u.status |= StatusRXFull
			if u.command&CommandRXInterruptDisable == 0 {
				u.raiseInterrupt()
			}
		}
	}
}

func (u *UART) raiseInterrupt() {
	u.status |= StatusInterrupt
}

// IRQ reports whether the device currently has an unacknowledged interrupt
// condition latched in its status register.
func (u *UART) IRQ() bool {
	return u.status&StatusInterrupt != 0
}

// Read dispatches register reads by the device-relative address (0-3), as
// wired by the memory map.
func (u *UART) Read(reg uint16) byte {
	switch reg {
	case 0:
		u.status &^= StatusRXFull
		u.rxFull = false
		return u.rx
	case 1:
		status := u.status
		u.status &^= StatusInterrupt
		return status
	case 2:
		return u.command
	case 3:
		return u.control
	default:
		return 0
	}
}

// Write dispatches register writes by the device-relative address (0-3).
func (u *UART) Write(reg uint16, data byte) {
	switch reg {
	case 0:
		u.status &^= StatusTXEmpty
		u.tx = data
		u.txFull = true
	case 1: // status register write is a soft reset
		u.txFull = false
		u.rxFull = false
		u.command = CommandRXInterruptDisable
		u.status = StatusTXEmpty
	case 2:
		u.command = data
	case 3:
		u.control = data
	}
}
