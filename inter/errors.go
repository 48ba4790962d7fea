package inter

import (
	"errors"
	"fmt"

	"rui/bytecode"
)

var (
	// ErrInvalidTarget is returned when a Spawn, SpawnMulti or Jump names a
	// line that does not exist (line 0, or past the last line).
	ErrInvalidTarget = errors.New("invalid target line")
	// ErrInputExhausted is returned when Read runs with no input left.
	ErrInputExhausted = errors.New("input exhausted")
	// ErrOutputEncoding is returned when Write in unicode mode meets a
	// register that is not a Unicode scalar value.
	ErrOutputEncoding = errors.New("value is not a unicode scalar value")
	// ErrTickLimit is returned when Options.MaxTicks is exceeded.
	ErrTickLimit = errors.New("tick limit reached")
	// ErrTooManyThreads is returned when a spawn would take the thread
	// count past Options.MaxThreads.
	ErrTooManyThreads = errors.New("too many threads")
	// ErrBadValue is returned for input values that are not non-negative
	// decimal integers.
	ErrBadValue = errors.New("not a non-negative integer")
)

// RuntimeError locates a fatal error raised while executing an instruction.
type RuntimeError struct {
	Err         error
	Tick        uint64
	Line        int // 0-based
	Offset      int
	Instruction bytecode.Instruction
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("line %d, instruction %d (%s), tick %d: %v", e.Line+1, e.Offset+1, e.Instruction, e.Tick, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
