package bytecode

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"unicode/utf8"
)

var (
	ErrSyntax            = errors.New("syntax error")
	ErrSourceUnavailable = errors.New("source unavailable")
)

// SyntaxError reports the first malformed token of a program.
type SyntaxError struct {
	Line   int    // 1-based
	Column int    // 1-based, counted after spaces are removed
	Found  string // offending character, empty at end of line
	Reason string
}

func (e *SyntaxError) Error() string {
	found := "end of line"
	if e.Found != "" {
		found = fmt.Sprintf("%q", e.Found)
	}
	return fmt.Sprintf("syntax error: line %d, column %d: %s, found %s", e.Line, e.Column, e.Reason, found)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

var singleOps = map[byte]Op{
	'r': Read,
	'w': Write,
	'!': Halt,
	'.': Sleep,
	'$': GlobalAdd,
	'~': GlobalSubtract,
}

var valueOps = map[byte]Op{
	'=': Set,
	'+': Spawn,
	'*': SpawnMulti,
	'-': Kill,
	':': Jump,
}

// Parse converts program text into a Program. Spaces are insignificant
// everywhere. The first malformed token aborts the whole parse.
func Parse(source string) (Program, error) {
	source = strings.ReplaceAll(source, " ", "")
	raw := strings.Split(source, "\n")
	program := Program{Lines: make([][]Instruction, 0, len(raw))}
	for n, text := range raw {
		code, err := parseLine(text, n+1)
		if err != nil {
			return Program{}, err
		}
		program.Lines = append(program.Lines, code)
	}
	return program, nil
}

// ParseLine parses a single line of source. n is the 1-based line number
// used in error reports.
func ParseLine(text string, n int) ([]Instruction, error) {
	text = strings.ReplaceAll(text, " ", "")
	return parseLine(text, n)
}

func parseLine(text string, n int) ([]Instruction, error) {
	var code []Instruction
	pos := 0
	for pos < len(text) {
		c := text[pos]
		if op, ok := singleOps[c]; ok {
			code = append(code, Instruction{Op: op})
			pos++
			continue
		}
		if op, ok := valueOps[c]; ok {
			end := pos + 1
			for end < len(text) && isDigit(text[end]) {
				end++
			}
			if end == pos+1 {
				return nil, &SyntaxError{
					Line:   n,
					Column: end + 1,
					Found:  charAt(text, end),
					Reason: fmt.Sprintf("expected digits after %q", c),
				}
			}
			v, ok := new(big.Int).SetString(text[pos+1:end], 10)
			if !ok {
				return nil, &SyntaxError{Line: n, Column: pos + 2, Found: charAt(text, pos+1), Reason: "malformed number"}
			}
			code = append(code, Instruction{Op: op, Value: v})
			pos = end
			continue
		}
		if c == '#' {
			break
		}
		return nil, &SyntaxError{Line: n, Column: pos + 1, Found: charAt(text, pos), Reason: "unrecognized token"}
	}
	return code, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func charAt(text string, pos int) string {
	if pos >= len(text) {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return string(r)
}

// LoadFile reads and parses the program stored at path. CRLF line endings
// in the file are read as LF.
func LoadFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return Parse(strings.ReplaceAll(string(data), "\r\n", "\n"))
}
