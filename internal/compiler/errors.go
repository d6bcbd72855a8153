package compiler

import (
	goerrors "errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports one defect in a CUE project definition: a
// missing or mistyped field, an unparseable value, a duplicate ID or a
// dangling reference. Position information is carried when CUE
// provides it.
type CompileError struct {
	Path    string // CUE path of the offending value, e.g. "event.dig"
	Field   string // field within that value, empty for whole-value defects
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	where := e.Path
	if e.Field != "" {
		where = where + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	if where != "" {
		return fmt.Sprintf("%s: %s", where, e.Message)
	}
	return e.Message
}

// IsCompileError reports whether err is a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return goerrors.As(err, &ce)
}

// formatCUEError converts a CUE SDK error into a CompileError with
// position information when available.
func formatCUEError(path string, err error) *CompileError {
	ce := &CompileError{Path: path, Message: err.Error()}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
