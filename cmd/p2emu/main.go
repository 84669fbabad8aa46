// Command p2emu is the Possum2 cycle-oriented system emulator with an
// integrated command-line debugger.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"github.com/possum2kit/p2/internal/debugger"
	"github.com/possum2kit/p2/internal/fdc"
	"github.com/possum2kit/p2/internal/ppcfg"
	"github.com/possum2kit/p2/internal/system"
	"github.com/spf13/cobra"
)

const (
	romSize    = 0x0F00 // 3840 bytes
	disk640KiB = 655360
	disk720KiB = 737280
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	var cfg ppcfg.Common
	var fd0Path, fd1Path string
	var debugStart bool

	cmd := &cobra.Command{
		Use:           "p2emu <rom>",
		Short:         "Run a Possum2 ROM image under the cycle-oriented emulator",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, posArgs []string) error {
			return runEmulator(posArgs[0], fd0Path, fd1Path, cfg.SymbolFile, cfg.LogLevel, debugStart, stdin, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	cfg.RegisterPersistent(cmd)
	cmd.Flags().StringVar(&fd0Path, "fd0", "", "floppy disk image for drive 0 (required)")
	cmd.Flags().StringVar(&fd1Path, "fd1", "", "floppy disk image for drive 1 (optional)")
	cmd.Flags().BoolVarP(&debugStart, "debug", "d", false, "start with the debugger active")
	cmd.MarkFlagRequired("fd0")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func runEmulator(romPath, fd0Path, fd1Path, symPath, logLevel string, debugStart bool, stdin io.Reader, stdout, stderr io.Writer) error {
	logger, err := ppcfg.NewEmulatorLogger(stderr, logLevel)
	if err != nil {
		return err
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}
	if len(rom) != romSize {
		return fmt.Errorf("rom file is %d bytes, must be exactly %d", len(rom), romSize)
	}

	fd0, err := openDisk(fd0Path)
	if err != nil {
		return err
	}
	defer fd0.Close()

	fd1, closeFd1, err := openOptionalDisk(fd1Path)
	if err != nil {
		return err
	}
	defer closeFd1()

	ser := &rwPair{r: stdin, w: stdout}
	sys := system.New(rom, ser, ser, fd0, fd1)
	sys.Reset()

	symbols, err := loadSymbols(symPath)
	if err != nil {
		return err
	}

	dbg := debugger.New(sys, symbols)

	var debugMode atomic.Bool
	debugMode.Store(debugStart)
	notifyDebugToggle(&debugMode)

	prompt := newPrompter(stdin, logger)
	defer prompt.Close()

	for {
		if debugMode.Load() || dbg.AtBreakpoint() {
			for {
				line, err := prompt.ReadLine()
				if err != nil {
					return nil // stdin closed: nothing left to debug or run
				}
				resume := dbg.Execute(line, stderr)
				if dbg.Quit {
					return nil
				}
				if resume {
					break
				}
			}
		}
		sys.Tick()
	}
}

func openDisk(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() != disk640KiB && info.Size() != disk720KiB {
		f.Close()
		return nil, fmt.Errorf("disk image %s is %d bytes, must be %d or %d", path, info.Size(), disk640KiB, disk720KiB)
	}
	return f, nil
}

// openOptionalDisk binds fd1 when given, or a zero-length handle when
// absent (reads return zero bytes, writes are discarded) — "no disk in
// drive 1".
func openOptionalDisk(path string) (fdc.Handle, func(), error) {
	if path == "" {
		return emptyDisk{}, func() {}, nil
	}
	f, err := openDisk(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

type emptyDisk struct{}

func (emptyDisk) Read([]byte) (int, error)       { return 0, io.EOF }
func (emptyDisk) Write(p []byte) (int, error)    { return len(p), nil }
func (emptyDisk) Seek(int64, int) (int64, error) { return 0, nil }

// rwPair composes separate read and write streams into the single
// io.Reader+io.Writer uart.Stream wants; p2emu reassigns stdin/stdout to
// UART0 exactly as the spec requires, rather than opening a pty.
type rwPair struct {
	r io.Reader
	w io.Writer
}

func (p *rwPair) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *rwPair) Write(b []byte) (int, error) { return p.w.Write(b) }

func notifyDebugToggle(flag *atomic.Bool) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	go func() {
		for range ch {
			flag.Store(!flag.Load())
		}
	}()
}

func loadSymbols(path string) (map[string]uint16, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	symbols := make(map[string]uint16)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		v, err := strconv.ParseUint(parts[1], 16, 16)
		if err != nil {
			continue
		}
		symbols[strings.ToUpper(parts[0])] = uint16(v)
	}
	return symbols, nil
}

// prompter reads one debugger command line at a time: through
// peterh/liner when stdin is a terminal (history/editing), or a plain
// bufio.Reader over the same stream the UART itself reads from
// otherwise — the spec's literal "reads one newline-terminated line
// from the UART stream" contract for headless/scripted sessions.
type prompter struct {
	line   *liner.State
	reader *bufio.Reader
}

func newPrompter(stdin io.Reader, logger *log.Logger) *prompter {
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		st := liner.NewLiner()
		return &prompter{line: st}
	}
	return &prompter{reader: bufio.NewReader(stdin)}
}

func (p *prompter) ReadLine() (string, error) {
	if p.line != nil {
		return p.line.Prompt("p2> ")
	}
	line, err := p.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (p *prompter) Close() {
	if p.line != nil {
		p.line.Close()
	}
}
