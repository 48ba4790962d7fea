package bytecode

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireProgram(t *testing.T, want [][]Instruction, got Program) {
	t.Helper()
	require.Equal(t, len(want), got.Len(), "line count of %q", got.String())
	for n := range want {
		require.Equal(t, len(want[n]), len(got.Lines[n]), "instructions on line %d", n+1)
		for k := range want[n] {
			assert.Truef(t, want[n][k].Equal(got.Lines[n][k]), "line %d, instruction %d: want %s, got %s", n+1, k, want[n][k], got.Lines[n][k])
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   [][]Instruction
	}{
		{
			name:   "set write halt",
			source: "=5\nw\n!",
			want: [][]Instruction{
				{Instr(Set, 5)},
				{Simple(Write)},
				{Simple(Halt)},
			},
		},
		{
			name:   "several instructions per line",
			source: "+3!\n=7w!",
			want: [][]Instruction{
				{Instr(Spawn, 3), Simple(Halt)},
				{Instr(Set, 7), Simple(Write), Simple(Halt)},
			},
		},
		{
			name:   "spaces are ignored everywhere",
			source: " = 1 2 \n r w ",
			want: [][]Instruction{
				{Instr(Set, 12)},
				{Simple(Read), Simple(Write)},
			},
		},
		{
			name:   "comments and blank lines keep their slot",
			source: "# header\n\n.#trailing $\n:1",
			want: [][]Instruction{
				nil,
				nil,
				{Simple(Sleep)},
				{Instr(Jump, 1)},
			},
		},
		{
			name:   "every op",
			source: "=1+2*3-4:5rw!.$~",
			want: [][]Instruction{{
				Instr(Set, 1), Instr(Spawn, 2), Instr(SpawnMulti, 3), Instr(Kill, 4), Instr(Jump, 5),
				Simple(Read), Simple(Write), Simple(Halt), Simple(Sleep), Simple(GlobalAdd), Simple(GlobalSubtract),
			}},
		},
		{
			name:   "longest digit run",
			source: "=0012w",
			want:   [][]Instruction{{Instr(Set, 12), Simple(Write)}},
		},
		{
			name:   "empty source",
			source: "",
			want:   [][]Instruction{nil},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.source)
			require.NoError(t, err)
			requireProgram(t, tc.want, got)
		})
	}
}

func TestParseBigLiteral(t *testing.T) {
	literal := "123456789012345678901234567890123456789"
	p, err := Parse("=" + literal)
	require.NoError(t, err)
	require.Len(t, p.Lines[0], 1)
	assert.Equal(t, literal, p.Lines[0][0].Value.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
		column int
		found  string
	}{
		{name: "sigil without digits", source: "+", line: 1, column: 2, found: ""},
		{name: "sigil followed by op", source: "=5\n:w", line: 2, column: 2, found: "w"},
		{name: "unrecognized token", source: "=1\nw\n=2x", line: 3, column: 3, found: "x"},
		{name: "tab is not a space", source: "\tw", line: 1, column: 1, found: "\t"},
		{name: "unicode token", source: "wλ", line: 1, column: 2, found: "λ"},
		{name: "sign inside value", source: "=-1", line: 1, column: 2, found: "-"},
		{name: "carriage return", source: "=1\r\nw", line: 1, column: 3, found: "\r"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, tc.line, syntaxErr.Line)
			assert.Equal(t, tc.column, syntaxErr.Column)
			assert.Equal(t, tc.found, syntaxErr.Found)
		})
	}
}

func TestParseErrorAbortsWholeProgram(t *testing.T) {
	p, err := Parse("=1\nw\n?\n!")
	require.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, 0, p.Len())
}

func TestFormatParseInverse(t *testing.T) {
	huge, _ := new(big.Int).SetString("98765432109876543210", 10)
	instructions := []Instruction{
		Instr(Set, 0),
		Instr(Set, 42),
		{Op: Set, Value: huge},
		Instr(Spawn, 1),
		Instr(SpawnMulti, 17),
		Instr(Kill, 9),
		Instr(Jump, 300),
		Simple(Read),
		Simple(Write),
		Simple(Halt),
		Simple(Sleep),
		Simple(GlobalAdd),
		Simple(GlobalSubtract),
	}
	for _, ins := range instructions {
		t.Run(ins.String(), func(t *testing.T) {
			code, err := ParseLine(ins.String(), 1)
			require.NoError(t, err)
			require.Len(t, code, 1)
			assert.True(t, ins.Equal(code[0]), "want %s, got %s", ins, code[0])
		})
	}
}

func TestProgramStringRoundTrip(t *testing.T) {
	source := "+3 +3 =1 . -9 w ! # spawn two\n\n=9 ... w !\n"
	p, err := Parse(source)
	require.NoError(t, err)

	assert.Equal(t, "+3 +3 =1 . -9 w !\n\n=9 . . . w !\n", p.String())

	again, err := Parse(p.String())
	require.NoError(t, err)
	assert.True(t, p.Equal(again))
}

func TestProgramListing(t *testing.T) {
	p, err := Parse("=5\n#\nw!")
	require.NoError(t, err)
	assert.Equal(t, "1 | =5\n2 |\n3 | w !\n", p.Listing())

	ins, ok := p.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, Halt, ins.Op)
	_, ok = p.At(1, 0)
	assert.False(t, ok)
}

func TestOps(t *testing.T) {
	assert.True(t, Kill.HasValue())
	assert.False(t, Read.HasValue())
	assert.Equal(t, "global_subtract", GlobalSubtract.String())
	assert.Equal(t, byte('~'), GlobalSubtract.Char())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.rui")
	require.NoError(t, os.WriteFile(path, []byte("=5\nw\n!"), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	crlf := filepath.Join(dir, "crlf.rui")
	require.NoError(t, os.WriteFile(crlf, []byte("=1\r\nw\r\n"), 0o644))
	p, err = LoadFile(crlf)
	require.NoError(t, err)
	requireProgram(t, [][]Instruction{{Instr(Set, 1)}, {Simple(Write)}, nil}, p)

	_, err = LoadFile(filepath.Join(dir, "missing.rui"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
