package assembler

import (
	"fmt"

	"github.com/possum2kit/p2/internal/lexer"
)

// DiagError is any assembler error carrying enough source-position context
// to format itself as the CLI's `LINE: MESSAGE` diagnostic line. Raised
// from inside a macro replay it formats as `LINE:MACRO-NAME:LINE: MESSAGE`
// with the invocation line in both positions: replayed body tokens carry
// no source line of their own, so the line within the macro body is not
// reported. This mirrors wazero's practice of small typed error values callers
// can distinguish rather than ad hoc fmt.Errorf strings everywhere.
type DiagError struct {
	Line      int
	MacroName string
	Msg       string
}

func (e *DiagError) Error() string {
	if e.MacroName != "" {
		return fmt.Sprintf("%d:%s:%d: %s", e.Line, e.MacroName, e.Line, e.Msg)
	}
	return fmt.Sprintf("%d: %s", e.Line, e.Msg)
}

func diagErr(src lexer.TokenSource, msg string) error {
	return &DiagError{Line: src.Line(), MacroName: MacroName(src), Msg: msg}
}
