// Package ppcfg holds the flag-parsing and logger-construction
// conventions shared by both p2asm and p2emu: symbol-file path, log
// level, and the charmbracelet/log setup each binary tailors slightly
// differently.
package ppcfg

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Common holds the flag values every Possum2 CLI accepts.
type Common struct {
	SymbolFile string
	LogLevel   string
}

// RegisterPersistent wires Common's flags onto cmd as persistent flags, so
// any subcommand (there are none today, but the shape matches wazero's
// convention) inherits them.
func (c *Common) RegisterPersistent(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&c.SymbolFile, "sym", "s", "", "symbol file path")
	cmd.PersistentFlags().StringVarP(&c.LogLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
}

// NewAssemblerLogger builds the diagnostic logger for p2asm: no
// timestamp, no level badge — its output must be exactly the spec's
// "LINE: MESSAGE" diagnostic line, not a decorated structured-log line.
func NewAssemblerLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Level:           level,
	})
	return logger
}

// NewEmulatorLogger builds the trace logger for p2emu: timestamped,
// level-tagged, suitable for a long-running process's stderr trace
// output rather than a single terse diagnostic line.
func NewEmulatorLogger(w io.Writer, levelName string) (*log.Logger, error) {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return logger, nil
}
