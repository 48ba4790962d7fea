package bytecode

import (
	"fmt"
	"math/big"
	"strings"
)

// Op selects the variant of an Instruction.
type Op byte

const (
	Set Op = iota
	Spawn
	SpawnMulti
	Kill
	Jump
	Read
	Write
	Halt
	Sleep
	GlobalAdd
	GlobalSubtract
)

var opNames = [...]string{
	Set:            "set",
	Spawn:          "spawn",
	SpawnMulti:     "spawn_multi",
	Kill:           "kill",
	Jump:           "jump",
	Read:           "read",
	Write:          "write",
	Halt:           "halt",
	Sleep:          "sleep",
	GlobalAdd:      "global_add",
	GlobalSubtract: "global_subtract",
}

// opChars is the source character of every op: the sigil for value-bearing
// ops and the whole token for the others.
var opChars = [...]byte{
	Set:            '=',
	Spawn:          '+',
	SpawnMulti:     '*',
	Kill:           '-',
	Jump:           ':',
	Read:           'r',
	Write:          'w',
	Halt:           '!',
	Sleep:          '.',
	GlobalAdd:      '$',
	GlobalSubtract: '~',
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", byte(o))
}

// HasValue reports whether instructions of this op carry a numeric payload.
func (o Op) HasValue() bool {
	return o <= Jump
}

// Char returns the source character of the op.
func (o Op) Char() byte {
	return opChars[o]
}

type Instruction struct {
	Op    Op
	Value *big.Int // nil unless Op.HasValue()
}

// Instr builds a value-bearing instruction.
func Instr(op Op, value int64) Instruction {
	return Instruction{Op: op, Value: big.NewInt(value)}
}

// Simple builds an instruction without payload.
func Simple(op Op) Instruction {
	return Instruction{Op: op}
}

// String returns the canonical source form, e.g. "=5" or "w".
func (i Instruction) String() string {
	if !i.Op.HasValue() {
		return string(i.Op.Char())
	}
	if i.Value == nil {
		return string(i.Op.Char()) + "?"
	}
	return string(i.Op.Char()) + i.Value.String()
}

func (i Instruction) Equal(other Instruction) bool {
	if i.Op != other.Op {
		return false
	}
	if !i.Op.HasValue() {
		return true
	}
	if i.Value == nil || other.Value == nil {
		return i.Value == other.Value
	}
	return i.Value.Cmp(other.Value) == 0
}

// Program is the parsed form of a source text: one instruction list per
// source line. Lines without instructions keep their slot so that line
// numbers stay aligned with the text.
type Program struct {
	Lines [][]Instruction
}

func (p Program) Len() int {
	return len(p.Lines)
}

// At returns the instruction at a 0-based line and offset.
func (p Program) At(line, offset int) (Instruction, bool) {
	if line < 0 || line >= len(p.Lines) || offset < 0 || offset >= len(p.Lines[line]) {
		return Instruction{}, false
	}
	return p.Lines[line][offset], true
}

// String formats the program in canonical form. Comments are not preserved,
// but parsing the result gives back an equal program.
func (p Program) String() string {
	var b strings.Builder
	for n, line := range p.Lines {
		if n > 0 {
			b.WriteByte('\n')
		}
		for k, ins := range line {
			if k > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(ins.String())
		}
	}
	return b.String()
}

// Listing returns a numbered listing with 1-based line numbers.
func (p Program) Listing() string {
	var b strings.Builder
	width := len(fmt.Sprint(len(p.Lines)))
	for n, line := range p.Lines {
		fmt.Fprintf(&b, "%*d |", width, n+1)
		for _, ins := range line {
			b.WriteByte(' ')
			b.WriteString(ins.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (p Program) Equal(other Program) bool {
	if len(p.Lines) != len(other.Lines) {
		return false
	}
	for n := range p.Lines {
		if len(p.Lines[n]) != len(other.Lines[n]) {
			return false
		}
		for k := range p.Lines[n] {
			if !p.Lines[n][k].Equal(other.Lines[n][k]) {
				return false
			}
		}
	}
	return true
}
